package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"customer-dashboard/internal/models"
)

// Recompute filters records once and runs every aggregator over the shared
// subset. Aggregators only read the subset, so they run concurrently.
// unknownGenders lists gender labels routed to the Other bucket.
func Recompute(ctx context.Context, records []models.OrderRecord, r models.DateRange, states []string) (models.Dashboard, []string, error) {
	subset, err := Filter(records, r, states)
	if err != nil {
		return models.Dashboard{}, nil, err
	}

	d := models.Dashboard{
		Start:  r.Start,
		End:    r.End,
		States: states,
		Rows:   len(subset),
	}
	var unknownGenders []string

	g, ctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() { d.RegionShares = RegionShares(subset) })
	run(func() { d.MonthlyRevenue = MonthlyRevenue(subset) })
	run(func() { d.CategoryGender, unknownGenders = CategoryGender(subset) })
	run(func() { d.TenureScatter = TenureScatter(subset) })
	run(func() { d.AgeBands = AgeBands(subset) })

	if err := g.Wait(); err != nil {
		return models.Dashboard{}, nil, err
	}
	return d, unknownGenders, nil
}
