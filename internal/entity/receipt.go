package entity

import (
	"time"
)

// ReceiptFields holds the values read off a fuel receipt.
type ReceiptFields struct {
	Date          Date    `json:"date"`
	Liters        float64 `json:"liters"`
	PricePerLiter float64 `json:"price_per_liter"`
	VAT           float64 `json:"vat"`
	TotalPrice    float64 `json:"total_price"`
	FuelType      string  `json:"fuel_type"`
}

// Receipt is a persisted fuel purchase. This is also the on-disk layout of the
// JSON store, so field tags must stay stable.
type Receipt struct {
	ID            int       `json:"id"`
	Date          Date      `json:"date"`
	Liters        float64   `json:"liters"`
	PricePerLiter float64   `json:"price_per_liter"`
	VAT           float64   `json:"vat"`
	TotalPrice    float64   `json:"total_price"`
	FuelType      string    `json:"fuel_type"`
	Timestamp     Timestamp `json:"timestamp"`
}

// NewReceipt stamps extracted fields with an id and creation instant.
func NewReceipt(id int, fields ReceiptFields, ts time.Time) *Receipt {
	return &Receipt{
		ID:            id,
		Date:          fields.Date,
		Liters:        fields.Liters,
		PricePerLiter: fields.PricePerLiter,
		VAT:           fields.VAT,
		TotalPrice:    fields.TotalPrice,
		FuelType:      fields.FuelType,
		Timestamp:     Timestamp{ts},
	}
}

