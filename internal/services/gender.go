package services

import (
	"slices"
	"strings"

	"customer-dashboard/internal/models"
)

const (
	GenderFemale = "F"
	GenderMale   = "M"
)

// CategoryGender sums revenue per category and gender for the butterfly
// chart. Female and Male carry one entry per category, zero when that side
// has no orders. Rows with any other gender label land in Other, and the
// distinct labels are returned sorted so the caller can warn about them.
func CategoryGender(records []models.OrderRecord) (models.GenderSeries, []string) {
	female := make(map[string]float64)
	male := make(map[string]float64)
	other := make(map[string]float64)
	categories := make(map[string]struct{})
	unknown := make(map[string]struct{})

	for _, rec := range records {
		categories[rec.Category] = struct{}{}
		switch normalizeGender(rec.Gender) {
		case GenderFemale:
			female[rec.Category] += rec.Total
		case GenderMale:
			male[rec.Category] += rec.Total
		default:
			other[rec.Category] += rec.Total
			unknown[rec.Gender] = struct{}{}
		}
	}

	series := models.GenderSeries{
		Categories: sortedKeys(categories),
		Female:     []models.CategoryTotal{},
		Male:       []models.CategoryTotal{},
		Other:      []models.CategoryTotal{},
	}
	for _, cat := range series.Categories {
		series.Female = append(series.Female, categoryTotal(cat, female[cat]))
		series.Male = append(series.Male, categoryTotal(cat, male[cat]))
		if v, ok := other[cat]; ok {
			series.Other = append(series.Other, categoryTotal(cat, v))
		}
	}

	return series, sortedKeys(unknown)
}

func normalizeGender(g string) string {
	return strings.ToUpper(strings.TrimSpace(g))
}

func categoryTotal(category string, revenue float64) models.CategoryTotal {
	return models.CategoryTotal{
		Category: category,
		Revenue:  revenue,
		Label:    formatRevenue(revenue),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
