package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apperrors "customer-dashboard/internal/errors"
	"customer-dashboard/internal/export"
	"customer-dashboard/internal/models"
	"customer-dashboard/internal/observability"
	"customer-dashboard/internal/services"
)

const (
	reloadTimeout = 60 * time.Second
	noStore       = "no-store"
)

type APIHandlers struct {
	analytics *services.Analytics
	parser    *FilterParser
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, parser *FilterParser, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		parser:    parser,
		logger:    logger,
	}
}

// serveSummary parses the filter, computes one summary and writes it.
func (h *APIHandlers) serveSummary(w http.ResponseWriter, r *http.Request, compute func(services.FilterParams) (any, error)) {
	requestID := observability.GetRequestID(r.Context())

	params, err := h.parser.FromRequest(r)
	if err != nil {
		apperrors.WriteError(w, h.logger, toAppError(err), requestID)
		return
	}

	data, err := compute(params)
	if err != nil {
		apperrors.WriteError(w, h.logger, toAppError(err), requestID)
		return
	}

	apperrors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleRegionShare(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, func(p services.FilterParams) (any, error) {
		return h.analytics.RegionShares(p)
	})
}

func (h *APIHandlers) HandleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, func(p services.FilterParams) (any, error) {
		return h.analytics.MonthlyRevenue(p)
	})
}

type categoryGenderResponse struct {
	Series   models.GenderSeries `json:"series"`
	Warnings []string            `json:"warnings,omitempty"`
}

func (h *APIHandlers) HandleCategoryGender(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, func(p services.FilterParams) (any, error) {
		series, warnings, err := h.analytics.CategoryGender(p)
		if err != nil {
			return nil, err
		}
		return categoryGenderResponse{Series: series, Warnings: warnings}, nil
	})
}

func (h *APIHandlers) HandleTenureScatter(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, func(p services.FilterParams) (any, error) {
		return h.analytics.TenureScatter(p)
	})
}

func (h *APIHandlers) HandleAgeBands(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, func(p services.FilterParams) (any, error) {
		return h.analytics.AgeBands(p)
	})
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, func(p services.FilterParams) (any, error) {
		return h.analytics.Dashboard(r.Context(), p)
	})
}

func (h *APIHandlers) HandleStates(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, h.analytics.States())
}

// HandleExport writes the recomputed dashboard as an XLSX download.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	params, err := h.parser.FromRequest(r)
	if err != nil {
		apperrors.WriteError(w, h.logger, toAppError(err), requestID)
		return
	}

	d, err := h.analytics.Dashboard(r.Context(), params)
	if err != nil {
		apperrors.WriteError(w, h.logger, toAppError(err), requestID)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, d); err != nil {
		apperrors.WriteError(w, h.logger, err, requestID)
		return
	}

	filename := fmt.Sprintf("customer-analysis_%s_%s.xlsx", d.Start.Format(dateLayout), d.End.Format(dateLayout))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", noStore)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("write export", "error", err, "request_id", requestID)
	}
}

// HandleReload drops the cached dataset and reads the source again.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), reloadTimeout)
	defer cancel()

	if err := h.analytics.Reload(ctx); err != nil {
		apperrors.WriteError(w, h.logger, toAppError(err), requestID)
		return
	}

	h.logger.Info("dataset reloaded", "request_id", requestID)
	apperrors.WriteSuccess(w, h.analytics.Stats())
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	apperrors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, h.analytics.Stats())
}
