package report

import (
	"fmt"
	"time"
)

// DocumentRenderer produces a downloadable document for a report.
type DocumentRenderer interface {
	Render(rep Report) ([]byte, error)
	// Filename is the attachment name for a report over the given year.
	Filename(year *int) string
}

// Clock returns the current instant; swapped in tests.
type Clock func() time.Time

// Title is the document title for an optional year.
func Title(year *int) string {
	if year == nil {
		return "Fuel report"
	}
	return fmt.Sprintf("Fuel report %d", *year)
}

// BaseFilename is the attachment name without extension.
func BaseFilename(year *int) string {
	if year == nil {
		return "fuel_report"
	}
	return fmt.Sprintf("fuel_report_%d", *year)
}
