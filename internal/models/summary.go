package models

import "time"

type RegionShare struct {
	Region     string  `json:"region"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
	Label      string  `json:"label"`
}

type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Number  int     `json:"number"`
	Revenue float64 `json:"revenue"`
	Label   string  `json:"label"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Label    string  `json:"label"`
}

// GenderSeries holds the two sides of the butterfly chart plus a bucket for
// gender labels outside {F, M}. Female, Male and Categories share one
// category order; Other only lists categories that actually had such rows.
type GenderSeries struct {
	Categories []string        `json:"categories"`
	Female     []CategoryTotal `json:"female"`
	Male       []CategoryTotal `json:"male"`
	Other      []CategoryTotal `json:"other"`
}

type TenurePoint struct {
	TenureYears     float64 `json:"tenure_years"`
	DiscountPercent float64 `json:"discount_percent"`
	Revenue         float64 `json:"revenue"`
}

type AgeBandRevenue struct {
	Band    string  `json:"band"`
	Lower   int     `json:"lower"`
	Upper   int     `json:"upper,omitempty"`
	Revenue float64 `json:"revenue"`
	Label   string  `json:"label"`
}

// Dashboard bundles every summary computed from one filtered subset.
type Dashboard struct {
	Start          time.Time        `json:"start"`
	End            time.Time        `json:"end"`
	States         []string         `json:"states"`
	Rows           int              `json:"rows"`
	RegionShares   []RegionShare    `json:"region_shares"`
	MonthlyRevenue []MonthlyRevenue `json:"monthly_revenue"`
	CategoryGender GenderSeries     `json:"category_gender"`
	TenureScatter  []TenurePoint    `json:"tenure_scatter"`
	AgeBands       []AgeBandRevenue `json:"age_bands"`
	Warnings       []string         `json:"warnings,omitempty"`
}
