package services

import (
	"time"

	"customer-dashboard/internal/models"
)

// Mean Gregorian year.
const yearDuration = time.Duration(365.2425 * 24 * float64(time.Hour))

// TenureScatter returns one point per record: customer tenure in years as of
// the latest order date in records, with discount and revenue. Values are
// rounded to two decimals.
func TenureScatter(records []models.OrderRecord) []models.TenurePoint {
	points := []models.TenurePoint{}
	if len(records) == 0 {
		return points
	}

	reference := records[0].OrderDate
	for _, rec := range records[1:] {
		if rec.OrderDate.After(reference) {
			reference = rec.OrderDate
		}
	}

	for _, rec := range records {
		tenure := float64(reference.Sub(rec.CustomerSince)) / float64(yearDuration)
		points = append(points, models.TenurePoint{
			TenureYears:     round2(tenure),
			DiscountPercent: round2(rec.DiscountPercent),
			Revenue:         round2(rec.Total),
		})
	}
	return points
}
