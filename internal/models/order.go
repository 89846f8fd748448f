package models

import "time"

// OrderRecord is one order line of the sales dataset. Records are created
// once at load time and never mutated afterwards.
type OrderRecord struct {
	OrderID         string
	OrderDate       time.Time
	CustomerSince   time.Time
	State           string
	Region          string
	Category        string
	Gender          string
	Age             int
	HasAge          bool
	DiscountPercent float64
	Total           float64
	Month           time.Month
}

// DateRange is a closed calendar interval; both ends are inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on or between the range's end dates.
// Comparison is done at day granularity.
func (r DateRange) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(truncateDay(r.Start)) && !d.After(truncateDay(r.End))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
