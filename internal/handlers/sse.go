package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"autosales-dashboard/internal/charts"
	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/observability"
	"autosales-dashboard/internal/services"
	"autosales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, metrics *observability.Metrics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		metrics:   metrics,
		logger:    logger,
	}
}

// readSelection decodes the dropdown signals. Invalid parts of the
// selection are dropped so the page still gets a consistent answer.
func (h *SSEHandlers) readSelection(r *http.Request) models.Selection {
	requestID := observability.GetRequestID(r.Context())

	var in selectionInput
	if err := datastar.ReadSignals(r, &in); err != nil {
		h.logger.Warn("read report signals", "error", err, "request_id", requestID)
		return models.Selection{}
	}
	if err := in.validate(); err != nil {
		h.logger.Warn("invalid report selection", "error", err, "request_id", requestID)
		return in.sanitized()
	}
	return in.selection()
}

func (h *SSEHandlers) renderGrid(r *http.Request, figures []charts.Figure) (string, error) {
	var buf strings.Builder
	if err := templates.ChartGrid(figures).Render(r.Context(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HandleReport answers a dropdown change: it patches the yearDisabled signal
// and replaces the output container with the selected report's charts.
func (h *SSEHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	sel := h.readSelection(r)

	sse := datastar.NewSSE(w, r)

	signals, err := json.Marshal(map[string]any{
		"yearDisabled": services.YearSelectorDisabled(sel.ReportType),
	})
	if err != nil {
		h.logger.Error("marshal report signals", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch report signals", "error", err, "request_id", requestID)
		return
	}

	_, figures, err := buildReport(r.Context(), h.analytics, h.metrics, sel)
	if err != nil {
		h.logger.Error("build report",
			"error", err,
			"report_type", sel.ReportType,
			"year", sel.Year,
			"request_id", requestID,
		)
		figures = nil
	}

	html, err := h.renderGrid(r, figures)
	if err != nil {
		h.logger.Error("render chart grid", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch chart grid", "error", err, "request_id", requestID)
		return
	}

	h.logger.Debug("report sent",
		"report_type", sel.ReportType,
		"year", sel.Year,
		"charts", len(figures),
		"request_id", requestID,
	)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
