package rollup

import "github.com/shopspring/decimal"

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// churnShare returns the category's share of total line churn in percent,
// rounded to two decimals. The max(1, total) guard turns a zero-churn user
// into 0% instead of a division error.
func churnShare(categoryAdds, categoryDeletes, totalAdds, totalDeletes int64) float64 {
	total := totalAdds + totalDeletes
	if total < 1 {
		total = 1
	}
	return round2(float64(categoryAdds+categoryDeletes) / float64(total) * 100)
}

// perCount divides lines by a count with the same max(1, count) guard.
func perCount(lines, count int64) float64 {
	if count < 1 {
		count = 1
	}
	return round2(float64(lines) / float64(count))
}
