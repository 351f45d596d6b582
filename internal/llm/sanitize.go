package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/joseph-ayodele/fuel-tracker/constants"
)

// SanitizeReply decodes a normalized reply into a JSON object and applies the
// lenient fixes:
//   - null or missing numeric fields become 0
//   - null, missing, empty or blank fuel_type becomes UNKNOWN
//   - fuel_type and date are trimmed
//   - keys outside the schema are removed
//
// A missing date and wrong types are left for schema validation to reject.
// Returns the re-encoded document and the list of adjustments made.
func SanitizeReply(normalized string, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dec := json.NewDecoder(strings.NewReader(normalized))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}
	if m == nil {
		return nil, nil, fmt.Errorf("sanitize: reply is not a JSON object")
	}
	if dec.More() {
		return nil, nil, fmt.Errorf("sanitize: trailing data after JSON object")
	}

	adjusted := make([]string, 0, 4)

	for _, k := range []string{"liters", "price_per_liter", "vat", "total_price"} {
		v, ok := m[k]
		switch {
		case !ok:
			m[k] = json.Number("0")
			adjusted = append(adjusted, k+"(missing)")
		case v == nil:
			m[k] = json.Number("0")
			adjusted = append(adjusted, k+"(null)")
		}
	}

	if v, ok := m["fuel_type"]; !ok {
		m["fuel_type"] = string(constants.FuelUnknown)
		adjusted = append(adjusted, "fuel_type(missing)")
	} else {
		switch t := v.(type) {
		case nil:
			m["fuel_type"] = string(constants.FuelUnknown)
			adjusted = append(adjusted, "fuel_type(null)")
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				s = string(constants.FuelUnknown)
				adjusted = append(adjusted, "fuel_type(empty)")
			}
			m["fuel_type"] = s
		}
	}

	if v, ok := m["date"].(string); ok {
		m["date"] = strings.TrimSpace(v)
	}

	allowed := make(map[string]struct{}, len(receiptKeys))
	for _, k := range receiptKeys {
		allowed[k] = struct{}{}
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			adjusted = append(adjusted, k+"(unknown)")
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, adjusted, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(adjusted) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "adjusted", adjusted)
	}
	return bytes.TrimSpace(buf.Bytes()), adjusted, nil
}
