package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"customer-dashboard/internal/models"
	"customer-dashboard/internal/services"
	"customer-dashboard/internal/ui"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	analytics *services.Analytics
	defaults  models.DateRange
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, defaults models.DateRange, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{analytics: analytics, defaults: defaults, logger: logger}
}

func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	page := ui.Dashboard(ui.DashboardProps{
		States:   h.analytics.States(),
		Defaults: h.defaults,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := page.Render(ctx, w); err != nil {
		h.logger.Error("render dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}
