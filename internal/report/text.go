package report

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

// MaxMessageLen is the largest chunk sent as one chat message, in UTF-16 code
// units.
const MaxMessageLen = 4000

// NoRecordsMessage is the whole summary when the store is empty.
const NoRecordsMessage = "📭 No receipts recorded yet."

const (
	displayDate = "02/01/2006"
	rule        = "=============================="
)

// FormatSummary renders the monthly totals followed by the overall totals.
func FormatSummary(rep Report) string {
	if rep.Empty() {
		if rep.Year != nil {
			return fmt.Sprintf("📭 No receipts recorded for %d.", *rep.Year)
		}
		return NoRecordsMessage
	}

	var b strings.Builder
	b.WriteString("📊 MONTHLY TOTALS")
	if rep.Year != nil {
		fmt.Fprintf(&b, " %d", *rep.Year)
	}
	b.WriteString("\n" + rule + "\n\n")

	for _, m := range rep.Months {
		fmt.Fprintf(&b, "📅 %s\n", m.Label)
		fmt.Fprintf(&b, "   Receipts: %d\n", m.Count)
		fmt.Fprintf(&b, "   Liters: %s L\n", m.Liters.StringFixed(2))
		fmt.Fprintf(&b, "   VAT: %s €\n", m.VAT.StringFixed(2))
		fmt.Fprintf(&b, "   Total: %s €\n\n", m.TotalPrice.StringFixed(2))
	}

	t := rep.Totals
	b.WriteString(rule + "\n")
	b.WriteString("💰 OVERALL TOTAL\n")
	fmt.Fprintf(&b, "   Receipts: %d\n", t.Count)
	fmt.Fprintf(&b, "   Liters: %s L\n", t.Liters.StringFixed(2))
	fmt.Fprintf(&b, "   Average price: %s €/L\n", t.AvgPricePerLiter.StringFixed(3))
	fmt.Fprintf(&b, "   VAT: %s €\n", t.VAT.StringFixed(2))
	fmt.Fprintf(&b, "   Total: %s €", t.TotalPrice.StringFixed(2))
	return b.String()
}

// FormatList renders every record, most recent first.
func FormatList(records []*entity.Receipt) string {
	if len(records) == 0 {
		return NoRecordsMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 ALL RECEIPTS (%d)\n\n", len(records))
	for i, r := range SortByDateDesc(records) {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "#%d - %s\n", r.ID, r.Date.Format(displayDate))
		fmt.Fprintf(&b, "   ⛽ %s - %.2f L\n", r.FuelType, r.Liters)
		fmt.Fprintf(&b, "   💶 %.3f €/L - total %.2f € (VAT %.2f €)", r.PricePerLiter, r.TotalPrice, r.VAT)
	}
	return b.String()
}

// FormatReceipt renders the confirmation for a newly stored record.
func FormatReceipt(r *entity.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Receipt saved (#%d)\n\n", r.ID)
	fmt.Fprintf(&b, "📅 Date: %s\n", r.Date.Format(displayDate))
	fmt.Fprintf(&b, "⛽ Fuel: %s\n", r.FuelType)
	fmt.Fprintf(&b, "🛢 Liters: %.2f L\n", r.Liters)
	fmt.Fprintf(&b, "💶 Price/L: %.3f €\n", r.PricePerLiter)
	fmt.Fprintf(&b, "🧾 VAT: %.2f €\n", r.VAT)
	fmt.Fprintf(&b, "💰 Total: %.2f €", r.TotalPrice)
	return b.String()
}

// Chunk splits text into pieces of at most limit UTF-16 code units without
// splitting a rune. It prefers to cut right after a newline. Concatenating the
// pieces gives back text exactly.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}
	if text == "" {
		return nil
	}

	var (
		chunks []string
		start  int
		units  int
		lastNL = -1
	)
	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		for units+n > limit && i > start {
			cut := i
			if lastNL > start {
				cut = lastNL
			}
			chunks = append(chunks, text[start:cut])
			start = cut
			units = utf16Len(text[start:i])
			lastNL = -1
		}
		units += n
		if r == '\n' {
			lastNL = i + 1
		}
	}
	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	return chunks
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
