package services

import (
	"slices"

	"customer-dashboard/internal/models"
)

// RegionShares sums revenue per region and each region's share of the grand
// total, ordered by region name. No rows are returned when the grand total is
// zero, so shares are never NaN.
func RegionShares(records []models.OrderRecord) []models.RegionShare {
	totals := make(map[string]float64)
	var grand float64
	for _, rec := range records {
		totals[rec.Region] += rec.Total
		grand += rec.Total
	}

	result := []models.RegionShare{}
	if grand == 0 {
		return result
	}

	for region, total := range totals {
		share := total / grand
		result = append(result, models.RegionShare{
			Region:     region,
			Total:      total,
			Percentage: share,
			Label:      formatPercent(share),
		})
	}
	slices.SortFunc(result, func(a, b models.RegionShare) int {
		return compareStrings(a.Region, b.Region)
	})
	return result
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
