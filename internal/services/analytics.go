package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"customer-dashboard/internal/dataset"
	"customer-dashboard/internal/models"
	"customer-dashboard/internal/observability"
)

// RecomputeRecorder receives recomputation outcomes. metrics.Collectors
// implements it.
type RecomputeRecorder interface {
	RecomputeCompleted(rows int, duration time.Duration, err error)
	UnknownGender(label string)
}

type nopRecorder struct{}

func (nopRecorder) RecomputeCompleted(int, time.Duration, error) {}
func (nopRecorder) UnknownGender(string)                         {}

// FilterParams is the filter selection coming from the presentation layer.
// AllStates stands for the "select all" toggle and overrides States.
type FilterParams struct {
	Range     models.DateRange
	States    []string
	AllStates bool
}

// Analytics owns the loaded order table and recomputes dashboard summaries
// for each filter selection.
type Analytics struct {
	mu       sync.RWMutex
	loader   *dataset.Loader
	source   string
	table    *dataset.Table
	states   []string
	logger   *slog.Logger
	recorder RecomputeRecorder

	warnMu sync.Mutex
	warned map[string]struct{}
}

type Option func(*Analytics)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) { a.logger = logger }
}

func WithRecorder(r RecomputeRecorder) Option {
	return func(a *Analytics) { a.recorder = r }
}

func NewAnalytics(loader *dataset.Loader, opts ...Option) *Analytics {
	a := &Analytics{
		loader:   loader,
		table:    &dataset.Table{},
		logger:   slog.Default(),
		recorder: nopRecorder{},
		warned:   make(map[string]struct{}),
	}
	if a.loader == nil {
		a.loader = dataset.NewLoader()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetData installs records directly, bypassing the loader.
func (a *Analytics) SetData(records []models.OrderRecord) {
	a.install(&dataset.Table{Records: records, LoadedAt: time.Now()})
}

// Load reads source through the loader cache and makes it the active table.
func (a *Analytics) Load(ctx context.Context, source string) error {
	table, err := a.loader.Load(ctx, source)
	if err != nil {
		return err
	}
	a.install(table)
	return nil
}

// Reload drops the cached copy of the active source and reads it again.
func (a *Analytics) Reload(ctx context.Context) error {
	a.mu.RLock()
	source := a.source
	a.mu.RUnlock()

	if source == "" {
		return fmt.Errorf("reload: no source loaded")
	}
	a.loader.Invalidate(source)
	return a.Load(ctx, source)
}

func (a *Analytics) install(table *dataset.Table) {
	seen := make(map[string]struct{})
	states := make([]string, 0)
	for _, rec := range table.Records {
		if _, ok := seen[rec.State]; ok {
			continue
		}
		seen[rec.State] = struct{}{}
		states = append(states, rec.State)
	}

	a.mu.Lock()
	a.table = table
	a.source = table.Source
	a.states = states
	a.mu.Unlock()
}

// States lists the distinct state labels in first-seen order.
func (a *Analytics) States() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.states...)
}

func (a *Analytics) records() []models.OrderRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.table.Records
}

func (a *Analytics) resolveStates(p FilterParams) []string {
	if p.AllStates {
		return a.States()
	}
	return p.States
}

// Subset applies the filter stage to the active table.
func (a *Analytics) Subset(p FilterParams) ([]models.OrderRecord, error) {
	return Filter(a.records(), p.Range, a.resolveStates(p))
}

// Dashboard recomputes every summary for p. Warnings carries a message for
// each unrecognized gender label the first time it is seen.
func (a *Analytics) Dashboard(ctx context.Context, p FilterParams) (models.Dashboard, error) {
	ctx, span := observability.StartSpan(ctx, "analytics.recompute")
	defer span.Finish()

	start := time.Now()
	states := a.resolveStates(p)
	d, unknown, err := Recompute(ctx, a.records(), p.Range, states)
	a.recorder.RecomputeCompleted(d.Rows, time.Since(start), err)
	if err != nil {
		span.SetError(err)
		return models.Dashboard{}, err
	}
	span.SetTag("rows", fmt.Sprint(d.Rows))

	d.Warnings = a.warnUnknownGenders(unknown)
	return d, nil
}

func (a *Analytics) RegionShares(p FilterParams) ([]models.RegionShare, error) {
	subset, err := a.Subset(p)
	if err != nil {
		return nil, err
	}
	return RegionShares(subset), nil
}

func (a *Analytics) MonthlyRevenue(p FilterParams) ([]models.MonthlyRevenue, error) {
	subset, err := a.Subset(p)
	if err != nil {
		return nil, err
	}
	return MonthlyRevenue(subset), nil
}

func (a *Analytics) CategoryGender(p FilterParams) (models.GenderSeries, []string, error) {
	subset, err := a.Subset(p)
	if err != nil {
		return models.GenderSeries{}, nil, err
	}
	series, unknown := CategoryGender(subset)
	return series, a.warnUnknownGenders(unknown), nil
}

func (a *Analytics) TenureScatter(p FilterParams) ([]models.TenurePoint, error) {
	subset, err := a.Subset(p)
	if err != nil {
		return nil, err
	}
	return TenureScatter(subset), nil
}

func (a *Analytics) AgeBands(p FilterParams) ([]models.AgeBandRevenue, error) {
	subset, err := a.Subset(p)
	if err != nil {
		return nil, err
	}
	return AgeBands(subset), nil
}

// warnUnknownGenders logs and returns a warning for labels not reported before.
func (a *Analytics) warnUnknownGenders(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}

	a.warnMu.Lock()
	defer a.warnMu.Unlock()

	var warnings []string
	for _, label := range labels {
		if _, ok := a.warned[label]; ok {
			continue
		}
		a.warned[label] = struct{}{}
		a.recorder.UnknownGender(label)
		a.logger.Warn("unrecognized gender label routed to other bucket", "gender", label)
		warnings = append(warnings, fmt.Sprintf("unrecognized gender %q counted under other", label))
	}
	return warnings
}

// Stats summarises the active table for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"source":        a.source,
		"record_count":  a.table.Len(),
		"loaded_at":     a.table.LoadedAt,
		"states":        len(a.states),
		"cached_tables": a.loader.Cache().Size(),
	}
}
