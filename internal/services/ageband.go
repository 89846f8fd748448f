package services

import (
	"customer-dashboard/internal/models"
)

type ageBand struct {
	label        string
	lower, upper int // upper is exclusive; zero means unbounded
}

var ageBands = []ageBand{
	{"0-20", 0, 20},
	{"20-30", 20, 30},
	{"30-40", 30, 40},
	{"40-50", 40, 50},
	{"50-60", 50, 60},
	{"60-70", 60, 70},
	{"70>", 70, 0},
}

// AgeBands sums revenue into the seven fixed age bands in ascending order.
// Every band is present; records without an age, or with a negative one,
// are not counted.
func AgeBands(records []models.OrderRecord) []models.AgeBandRevenue {
	totals := make([]float64, len(ageBands))
	for _, rec := range records {
		if i := bandIndex(rec); i >= 0 {
			totals[i] += rec.Total
		}
	}

	result := make([]models.AgeBandRevenue, len(ageBands))
	for i, band := range ageBands {
		result[i] = models.AgeBandRevenue{
			Band:    band.label,
			Lower:   band.lower,
			Upper:   band.upper,
			Revenue: totals[i],
			Label:   formatRevenue(totals[i]),
		}
	}
	return result
}

func bandIndex(rec models.OrderRecord) int {
	if !rec.HasAge || rec.Age < 0 {
		return -1
	}
	for i, band := range ageBands {
		if band.upper == 0 || rec.Age < band.upper {
			return i
		}
	}
	return -1
}
