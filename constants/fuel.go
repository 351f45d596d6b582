package constants

import (
	"strings"
)

type FuelType string

// FuelUnknown is stored when the fuel type is not legible on the receipt.
const FuelUnknown FuelType = "UNKNOWN"

const (
	Diesel  FuelType = "DIESEL"
	SP95    FuelType = "SP95"
	SP95E10 FuelType = "SP95-E10"
	SP98    FuelType = "SP98"
	E85     FuelType = "E85"
	LPG     FuelType = "LPG"
	AdBlue  FuelType = "ADBLUE"
)

var allFuelTypes = []FuelType{
	Diesel,
	SP95,
	SP95E10,
	SP98,
	E85,
	LPG,
	AdBlue,
}

func AsStringSlice() []string {
	result := make([]string, len(allFuelTypes))
	for i, ft := range allFuelTypes {
		result[i] = string(ft)
	}
	return result
}

// Canonicalize maps a label read off a receipt to a known fuel type.
// The bool is false when the label is not recognised.
func Canonicalize(input string) (FuelType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return FuelUnknown, false
	}

	synonyms := map[string]FuelType{
		"gazole":          Diesel,
		"gasoil":          Diesel,
		"gas oil":         Diesel,
		"b7":              Diesel,
		"sans plomb 95":   SP95,
		"sp 95":           SP95,
		"e5":              SP95,
		"e10":             SP95E10,
		"sp95 e10":        SP95E10,
		"sans plomb 98":   SP98,
		"sp 98":           SP98,
		"superethanol":    E85,
		"superéthanol":    E85,
		"gpl":             LPG,
		"gpl-c":           LPG,
		"ad blue":         AdBlue,
		"inconnu":         FuelUnknown,
		"unknown":         FuelUnknown,
	}

	if ft, ok := synonyms[normalized]; ok {
		return ft, ft != FuelUnknown
	}

	for _, ft := range allFuelTypes {
		if normalized == strings.ToLower(string(ft)) {
			return ft, true
		}
	}

	return FuelUnknown, false
}
