package llm

// Reply keys, in the order the instruction lists them.
var receiptKeys = []string{"date", "liters", "price_per_liter", "vat", "total_price", "fuel_type"}

// BuildReceiptJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Every key is required; SanitizeReply fills defaults before validation.
func BuildReceiptJSONSchema() map[string]any {
	props := map[string]any{
		"date":            map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"liters":          amountProp(),
		"price_per_liter": amountProp(),
		"vat":             amountProp(),
		"total_price":     amountProp(),
		"fuel_type":       map[string]any{"type": "string", "minLength": 1},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             receiptKeys,
	}
}

func amountProp() map[string]any {
	return map[string]any{
		"type":    "number",
		"minimum": 0,
	}
}
