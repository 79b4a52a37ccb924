package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"autosales-dashboard/internal/errors"
	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/observability"
	"autosales-dashboard/internal/services"
)

const cacheMaxAge = "public, max-age=300"

type APIHandlers struct {
	analytics *services.Analytics
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, metrics *observability.Metrics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		metrics:   metrics,
		logger:    logger,
	}
}

// selection parses and validates the type and year query parameters.
func (h *APIHandlers) selection(r *http.Request) (models.Selection, error) {
	q := r.URL.Query()
	in, err := selectionFromQuery(q.Get("type"), q.Get("year"))
	if err != nil {
		return models.Selection{}, errors.BadRequestWrap(err, "Invalid year parameter")
	}
	if err := in.validate(); err != nil {
		return models.Selection{}, errors.ValidationWrap(err, "Invalid report selection")
	}
	return in.selection(), nil
}

func (h *APIHandlers) writeBuildError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := observability.GetRequestID(r.Context())
	if stderrors.Is(err, services.ErrDatasetNotLoaded) {
		errors.WriteError(w, h.logger, errors.ServiceUnavailable("Dataset is not loaded"), requestID)
		return
	}
	errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not build report"), requestID)
}

// HandleReport returns the chart set for a selection as JSON.
func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	start := time.Now()
	set, err := h.analytics.BuildChartSet(sel)
	if err != nil {
		h.writeBuildError(w, r, err)
		return
	}
	h.metrics.ObserveReport(string(set.Selection.ReportType), len(set.Charts), time.Since(start))

	errors.WriteSuccessWithHeaders(w, set, map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

// HandleChartSVG renders a single chart of a report as an SVG image. Charts
// are numbered from 1 in display order.
func (h *APIHandlers) HandleChartSVG(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	name := r.PathValue("name")
	index, err := strconv.Atoi(strings.TrimSuffix(name, ".svg"))
	if err != nil || !strings.HasSuffix(name, ".svg") {
		errors.WriteError(w, h.logger, errors.NotFound("Chart not found"), requestID)
		return
	}

	sel, err := h.selection(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	set, figures, err := buildReport(r.Context(), h.analytics, h.metrics, sel)
	if err != nil {
		h.writeBuildError(w, r, err)
		return
	}
	if index < 1 || index > len(set.Charts) {
		errors.WriteError(w, h.logger, errors.NotFound("Chart not found").
			WithDetails("report has "+strconv.Itoa(len(set.Charts))+" charts"), requestID)
		return
	}

	f := figures[index-1]
	if f.Err != nil {
		errors.WriteError(w, h.logger, errors.NotFound("Chart has no data").WithDetails(f.Err.Error()), requestID)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", cacheMaxAge)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(f.SVG)); err != nil {
		h.logger.Warn("write chart svg", "error", err, "request_id", requestID)
	}
}

func (h *APIHandlers) HandleYears(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, models.SelectableYears(), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleReportTypes(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, models.ReportTypes(), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.analytics.Ready() {
		errors.WriteError(w, h.logger, errors.ServiceUnavailable("Dataset is not loaded"),
			observability.GetRequestID(r.Context()))
		return
	}

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
