package report

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) Label() string {
	return fmt.Sprintf("%s %d", k.Month.String(), k.Year)
}

func (k MonthKey) compare(o MonthKey) int {
	if c := cmp.Compare(k.Year, o.Year); c != 0 {
		return c
	}
	return cmp.Compare(k.Month, o.Month)
}

// MonthlyAggregate groups the records of one month with their sums.
type MonthlyAggregate struct {
	Key        MonthKey
	Label      string
	Count      int
	Liters     decimal.Decimal
	VAT        decimal.Decimal
	TotalPrice decimal.Decimal
	// Records sorted by date ascending, then id.
	Records []*entity.Receipt
}

// Totals are the sums across every month in scope.
type Totals struct {
	Count            int
	Liters           decimal.Decimal
	VAT              decimal.Decimal
	TotalPrice       decimal.Decimal
	AvgPricePerLiter decimal.Decimal
}

// Report is the aggregated view of the store for an optional year.
type Report struct {
	Year *int
	// Months sorted most recent first.
	Months []MonthlyAggregate
	Totals Totals
}

func (r Report) Empty() bool {
	return r.Totals.Count == 0
}

// Aggregate groups records by calendar month. When year is set, only records
// dated in that year are considered. Sums are exact, so the result does not
// depend on input order.
func Aggregate(records []*entity.Receipt, year *int) Report {
	groups := make(map[MonthKey]*MonthlyAggregate)
	totals := Totals{
		Liters:     decimal.Zero,
		VAT:        decimal.Zero,
		TotalPrice: decimal.Zero,
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		if year != nil && rec.Date.Year() != *year {
			continue
		}

		key := MonthKey{Year: rec.Date.Year(), Month: rec.Date.Month()}
		g, ok := groups[key]
		if !ok {
			g = &MonthlyAggregate{
				Key:        key,
				Label:      key.Label(),
				Liters:     decimal.Zero,
				VAT:        decimal.Zero,
				TotalPrice: decimal.Zero,
			}
			groups[key] = g
		}

		liters := decimal.NewFromFloat(rec.Liters)
		vat := decimal.NewFromFloat(rec.VAT)
		total := decimal.NewFromFloat(rec.TotalPrice)

		g.Count++
		g.Liters = g.Liters.Add(liters)
		g.VAT = g.VAT.Add(vat)
		g.TotalPrice = g.TotalPrice.Add(total)
		g.Records = append(g.Records, rec)

		totals.Count++
		totals.Liters = totals.Liters.Add(liters)
		totals.VAT = totals.VAT.Add(vat)
		totals.TotalPrice = totals.TotalPrice.Add(total)
	}

	months := make([]MonthlyAggregate, 0, len(groups))
	for _, g := range groups {
		slices.SortFunc(g.Records, compareByDateThenID)
		months = append(months, *g)
	}
	slices.SortFunc(months, func(a, b MonthlyAggregate) int {
		return b.Key.compare(a.Key)
	})

	totals.AvgPricePerLiter = AveragePrice(totals.TotalPrice, totals.Liters)

	return Report{Year: year, Months: months, Totals: totals}
}

// AveragePrice returns total/liters rounded to 3 decimals, or zero when no
// liters were recorded.
func AveragePrice(total, liters decimal.Decimal) decimal.Decimal {
	if liters.IsZero() {
		return decimal.Zero
	}
	return total.Div(liters).Round(3)
}

// SortByDateDesc returns a copy of records, most recent date first, ties by
// higher id first.
func SortByDateDesc(records []*entity.Receipt) []*entity.Receipt {
	out := slices.Clone(records)
	slices.SortFunc(out, func(a, b *entity.Receipt) int {
		return compareByDateThenID(b, a)
	})
	return out
}

func compareByDateThenID(a, b *entity.Receipt) int {
	if c := a.Date.Compare(b.Date.Time); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
