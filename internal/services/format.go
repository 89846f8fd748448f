package services

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

var printer = message.NewPrinter(language.English)

// formatRevenue renders a tooltip amount such as "$1,234.56".
func formatRevenue(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// formatPercent renders a share in [0, 1] as "40.00%".
func formatPercent(share float64) string {
	return printer.Sprintf("%.2f%%", share*100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
