package llm

import (
	"strings"

	"github.com/joseph-ayodele/fuel-tracker/constants"
)

// ReceiptInstruction is the fixed instruction sent with every receipt image.
var ReceiptInstruction = BuildReceiptInstruction(constants.AsStringSlice())

// BuildReceiptInstruction composes the extraction instruction. fuelTypes lists
// labels the model should prefer when one matches the receipt.
func BuildReceiptInstruction(fuelTypes []string) string {
	unknown := string(constants.FuelUnknown)

	parts := []string{
		"Analyze this fuel receipt and extract the following information as a single JSON object with exactly these keys:",
		`"date" (purchase date, format YYYY-MM-DD),`,
		`"liters" (number of liters, number),`,
		`"price_per_liter" (unit price per liter, number with 3 decimals),`,
		`"vat" (VAT amount, number),`,
		`"total_price" (total paid, number),`,
		`"fuel_type" (fuel type as printed, text).`,
		"If a numeric value is not legible use 0.",
		"If the fuel type is not legible use \"" + unknown + "\".",
	}
	if len(fuelTypes) > 0 {
		parts = append(parts, "Common fuel types: "+strings.Join(fuelTypes, ", ")+".")
	}
	parts = append(parts,
		"Use a dot as the decimal separator and do not include currency symbols or units.",
		"Respond ONLY with the JSON object, no text before or after it.",
	)
	return strings.Join(parts, " ")
}
