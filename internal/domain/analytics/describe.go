package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/billing"
)

// AmountStats is the descriptive summary of the amount column. HasData
// distinguishes an empty table from a table that legitimately sums to zero.
type AmountStats struct {
	HasData bool            `json:"has_data"`
	Count   int             `json:"count"`
	Mean    decimal.Decimal `json:"mean"`
	Std     decimal.Decimal `json:"std"`
	Min     decimal.Decimal `json:"min"`
	P25     decimal.Decimal `json:"p25"`
	Median  decimal.Decimal `json:"median"`
	P75     decimal.Decimal `json:"p75"`
	Max     decimal.Decimal `json:"max"`
}

// Describe computes count, mean, sample standard deviation and the quartile
// spread of the amount column. Mean and std are rounded to two decimal
// places; std is zero for fewer than two rows.
func Describe(t *billing.Table) AmountStats {
	if t.IsEmpty() {
		return AmountStats{}
	}

	n := len(t.Rows)
	sum := decimal.Zero
	values := make([]float64, 0, n)
	for _, row := range t.Rows {
		sum = sum.Add(row.Amount)
		values = append(values, row.Amount.InexactFloat64())
	}
	sort.Float64s(values)

	mean := sum.Div(decimal.NewFromInt(int64(n)))

	std := 0.0
	if n > 1 {
		m := mean.InexactFloat64()
		var ss float64
		for _, v := range values {
			d := v - m
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
	}

	return AmountStats{
		HasData: true,
		Count:   n,
		Mean:    mean.Round(2),
		Std:     decimal.NewFromFloat(std).Round(2),
		Min:     decimal.NewFromFloat(values[0]).Round(2),
		P25:     percentile(values, 0.25),
		Median:  percentile(values, 0.50),
		P75:     percentile(values, 0.75),
		Max:     decimal.NewFromFloat(values[n-1]).Round(2),
	}
}

// percentile linearly interpolates at rank (n-1)*p over sorted values.
func percentile(sorted []float64, p float64) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}
	rank := float64(len(sorted)-1) * p
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	v := sorted[lo]
	if hi > lo {
		v += (rank - float64(lo)) * (sorted[hi] - sorted[lo])
	}
	return decimal.NewFromFloat(v).Round(2)
}
