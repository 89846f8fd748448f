package services

import (
	"errors"
	"fmt"

	"customer-dashboard/internal/models"
)

// ErrInvalidRange is returned when a date range starts after it ends.
var ErrInvalidRange = errors.New("invalid date range")

// ValidateRange checks that r.Start is not after r.End.
func ValidateRange(r models.DateRange) error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			r.Start.Format(dateLayout), r.End.Format(dateLayout))
	}
	return nil
}

// Filter returns the records whose order date lies in r and whose state is in
// states, preserving input order. An empty state set selects nothing. The
// input slice is not modified.
func Filter(records []models.OrderRecord, r models.DateRange, states []string) ([]models.OrderRecord, error) {
	if err := ValidateRange(r); err != nil {
		return nil, err
	}

	out := []models.OrderRecord{}
	if len(states) == 0 {
		return out, nil
	}

	allowed := make(map[string]struct{}, len(states))
	for _, s := range states {
		allowed[s] = struct{}{}
	}

	for _, rec := range records {
		if _, ok := allowed[rec.State]; !ok {
			continue
		}
		if !r.Contains(rec.OrderDate) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
