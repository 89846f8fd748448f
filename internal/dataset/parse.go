package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"customer-dashboard/internal/models"
)

// Column names as they appear in the sales export.
const (
	ColOrderID       = "order_id"
	ColOrderDate     = "order_date"
	ColCustomerSince = "Customer Since"
	ColState         = "State"
	ColRegion        = "Region"
	ColCategory      = "category"
	ColGender        = "Gender"
	ColAge           = "age"
	ColDiscount      = "Discount_Percent"
	ColTotal         = "total"
	ColMonth         = "month"
)

var requiredColumns = []string{
	ColOrderID, ColOrderDate, ColCustomerSince, ColState, ColRegion,
	ColCategory, ColGender, ColAge, ColDiscount, ColTotal, ColMonth,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"2006/01/02",
	"02-01-2006",
	time.RFC3339,
}

var (
	errNoHeader      = errors.New("missing header row")
	errNegativeTotal = errors.New("total must not be negative")
	errNotFinite     = errors.New("value must be a finite number")
	errAgeRange      = fmt.Errorf("age must be a whole number between 0 and %d", maxAge)
)

const maxAge = 150

// Parse reads a CSV order export. Header names are matched case-insensitively,
// treating spaces and underscores alike; any extra columns are ignored.
// source only labels errors.
func Parse(r io.Reader, source string) ([]models.OrderRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &DataLoadError{Source: source, Err: errNoHeader}
	}
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: fmt.Errorf("read header: %w", err)}
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}

	var records []models.OrderRecord
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataLoadError{Source: source, Row: row, Err: err}
		}
		if isBlank(fields) {
			continue
		}

		rec, col, err := parseRecord(fields, index)
		if err != nil {
			return nil, &DataLoadError{Source: source, Row: row, Column: col, Err: err}
		}
		records = append(records, rec)
	}

	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	byKey := make(map[string]int, len(header))
	for i, h := range header {
		// Excel exports prefix the first header with a BOM.
		h = strings.TrimPrefix(h, "\ufeff")
		byKey[normalizeHeader(h)] = i
	}

	index := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		i, ok := byKey[normalizeHeader(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRecord(fields []string, index map[string]int) (models.OrderRecord, string, error) {
	get := func(col string) string {
		i := index[col]
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	orderDate, err := ParseDate(get(ColOrderDate))
	if err != nil {
		return models.OrderRecord{}, ColOrderDate, err
	}
	since, err := ParseDate(get(ColCustomerSince))
	if err != nil {
		return models.OrderRecord{}, ColCustomerSince, err
	}

	total, err := parseFinite(get(ColTotal))
	if err != nil {
		return models.OrderRecord{}, ColTotal, err
	}
	if total < 0 {
		return models.OrderRecord{}, ColTotal, errNegativeTotal
	}

	var discount float64
	if v := get(ColDiscount); v != "" {
		discount, err = parseFinite(v)
		if err != nil {
			return models.OrderRecord{}, ColDiscount, err
		}
	}

	rec := models.OrderRecord{
		OrderID:         get(ColOrderID),
		OrderDate:       orderDate,
		CustomerSince:   since,
		State:           get(ColState),
		Region:          get(ColRegion),
		Category:        get(ColCategory),
		Gender:          get(ColGender),
		DiscountPercent: discount,
		Total:           total,
		Month:           orderDate.Month(),
	}

	if v := get(ColAge); v != "" {
		age, err := parseAge(v)
		if err != nil {
			return models.OrderRecord{}, ColAge, err
		}
		rec.Age = age
		rec.HasAge = true
	}

	if m, ok := ParseMonth(get(ColMonth)); ok {
		rec.Month = m
	}

	return rec, "", nil
}

// parseFinite rejects NaN and infinities, which ParseFloat accepts.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// parseAge accepts "43" and the "43.0" form spreadsheet exports write.
func parseAge(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > maxAge {
			return 0, errAgeRange
		}
		return n, nil
	}
	v, err := parseFinite(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v < 0 || v > maxAge {
		return 0, errAgeRange
	}
	return int(v), nil
}

// ParseDate accepts the calendar date layouts seen in sales exports.
// The result is normalised to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// ParseMonth reads a month column value: 1-12, an English month name or its
// three letter abbreviation, optionally followed by "-YYYY".
func ParseMonth(s string) (time.Month, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	if i := strings.IndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	s = strings.ToLower(s)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || s == name[:3] {
			return m, true
		}
	}
	return 0, false
}
