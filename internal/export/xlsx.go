package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"customer-dashboard/internal/models"
)

const (
	SheetSummary  = "Summary"
	SheetRegions  = "Region Share"
	SheetMonthly  = "Monthly Revenue"
	SheetGender   = "Category Gender"
	SheetTenure   = "Customer Tenure"
	SheetAgeBands = "Age Bands"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteXLSX writes d as a workbook with one sheet per summary.
func WriteXLSX(w io.Writer, d models.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	summary := [][]any{
		{"From", d.Start.Format("2006-01-02")},
		{"To", d.End.Format("2006-01-02")},
		{"States", strings.Join(d.States, ", ")},
		{"Orders", d.Rows},
	}
	for _, warning := range d.Warnings {
		summary = append(summary, []any{"Warning", warning})
	}

	regions := make([][]any, 0, len(d.RegionShares))
	for _, r := range d.RegionShares {
		regions = append(regions, []any{r.Region, r.Total, r.Percentage})
	}

	months := make([][]any, 0, len(d.MonthlyRevenue))
	for _, m := range d.MonthlyRevenue {
		months = append(months, []any{m.Month, m.Revenue})
	}

	gender := make([][]any, 0, len(d.CategoryGender.Categories))
	other := make(map[string]float64, len(d.CategoryGender.Other))
	for _, o := range d.CategoryGender.Other {
		other[o.Category] = o.Revenue
	}
	for i, cat := range d.CategoryGender.Categories {
		gender = append(gender, []any{cat, d.CategoryGender.Female[i].Revenue, d.CategoryGender.Male[i].Revenue, other[cat]})
	}

	tenure := make([][]any, 0, len(d.TenureScatter))
	for _, p := range d.TenureScatter {
		tenure = append(tenure, []any{p.TenureYears, p.DiscountPercent, p.Revenue})
	}

	bands := make([][]any, 0, len(d.AgeBands))
	for _, b := range d.AgeBands {
		bands = append(bands, []any{b.Band, b.Revenue})
	}

	sheets := []struct {
		name    string
		headers []any
		rows    [][]any
	}{
		{SheetSummary, []any{"Filter", "Value"}, summary},
		{SheetRegions, []any{"Region", "Revenue", "Share"}, regions},
		{SheetMonthly, []any{"Month", "Revenue"}, months},
		{SheetGender, []any{"Category", "Female", "Male", "Other"}, gender},
		{SheetTenure, []any{"Tenure (years)", "Discount %", "Revenue"}, tenure},
		{SheetAgeBands, []any{"Age Band", "Revenue"}, bands},
	}

	for _, s := range sheets {
		if s.name != SheetSummary {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("create sheet %q: %w", s.name, err)
			}
		}
		if err := writeTable(f, s.name, s.headers, s.rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headers []any, rows [][]any) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
