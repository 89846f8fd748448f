package handlers

import (
	"log/slog"
	"os"
	"time"

	"customer-dashboard/internal/models"
	"customer-dashboard/internal/services"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var testDefaults = models.DateRange{Start: day(2020, 10, 1), End: day(2021, 10, 1)}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestAnalytics() *services.Analytics {
	a := services.NewAnalytics(nil, services.WithLogger(testLogger()))
	a.SetData([]models.OrderRecord{
		{
			OrderID:         "000101",
			OrderDate:       day(2021, 1, 5),
			CustomerSince:   day(2019, 1, 5),
			State:           "CA",
			Region:          "West",
			Category:        "Beauty",
			Gender:          "F",
			Age:             25,
			HasAge:          true,
			DiscountPercent: 10,
			Total:           100,
			Month:           time.January,
		},
		{
			OrderID:         "000102",
			OrderDate:       day(2021, 1, 20),
			CustomerSince:   day(2020, 1, 20),
			State:           "CA",
			Region:          "West",
			Category:        "Appliances",
			Gender:          "M",
			Age:             45,
			HasAge:          true,
			DiscountPercent: 0,
			Total:           300,
			Month:           time.January,
		},
		{
			OrderID:         "000103",
			OrderDate:       day(2021, 2, 10),
			CustomerSince:   day(2021, 2, 10),
			State:           "NY",
			Region:          "East",
			Category:        "Beauty",
			Gender:          "M",
			Age:             72,
			HasAge:          true,
			DiscountPercent: 5,
			Total:           600,
			Month:           time.February,
		},
	})
	return a
}

func newTestAPIHandlers() *APIHandlers {
	return NewAPIHandlers(createTestAnalytics(), NewFilterParser(testDefaults), testLogger())
}
