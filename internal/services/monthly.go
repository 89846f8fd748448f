package services

import (
	"time"

	"customer-dashboard/internal/models"
)

// MonthlyRevenue sums revenue into twelve calendar slots, January first.
// Months without orders are reported with zero revenue.
func MonthlyRevenue(records []models.OrderRecord) []models.MonthlyRevenue {
	var slots [12]float64
	for _, rec := range records {
		m := rec.Month
		if m < time.January || m > time.December {
			m = rec.OrderDate.Month()
		}
		slots[m-1] += rec.Total
	}

	result := make([]models.MonthlyRevenue, 12)
	for i, revenue := range slots {
		m := time.Month(i + 1)
		result[i] = models.MonthlyRevenue{
			Month:   m.String()[:3],
			Number:  int(m),
			Revenue: revenue,
			Label:   formatRevenue(revenue),
		}
	}
	return result
}
