package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"autosales-dashboard/internal/charts"
	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/observability"
	"autosales-dashboard/internal/services"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// yearValue accepts a year as a JSON number, a numeric string, an empty
// string or null. Dropdown signals arrive as strings. Anything else decodes
// to no year so one bad field does not discard the rest of the signals.
type yearValue int

func (y *yearValue) UnmarshalJSON(data []byte) error {
	*y = 0
	data = bytes.TrimSpace(data)

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if y.parse(s) != nil {
			*y = 0
		}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*y = yearValue(n)
	}
	return nil
}

func (y *yearValue) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("year %q is not a number", s)
	}
	*y = yearValue(n)
	return nil
}

// selectionInput is the dropdown state as sent by the page signals or the
// JSON API query string.
type selectionInput struct {
	ReportType string    `json:"reportType" validate:"omitempty,oneof='Yearly Statistics' 'Recession Period Statistics'"`
	Year       yearValue `json:"year" validate:"omitempty,min=1980,max=2023"`
}

func (in selectionInput) validate() error {
	return validate.Struct(in)
}

func (in selectionInput) selection() models.Selection {
	return models.Selection{
		ReportType: models.ReportType(in.ReportType),
		Year:       int(in.Year),
	}
}

// sanitized keeps whichever parts of the input are valid.
func (in selectionInput) sanitized() models.Selection {
	sel := in.selection()
	if !sel.ReportType.Valid() {
		sel.ReportType = models.ReportNone
	}
	if sel.Year < models.FirstYear || sel.Year > models.LastYear {
		sel.Year = 0
	}
	return sel
}

func selectionFromQuery(typ, year string) (selectionInput, error) {
	in := selectionInput{ReportType: strings.TrimSpace(typ)}
	if err := in.Year.parse(year); err != nil {
		return in, err
	}
	return in, nil
}

// buildReport aggregates and renders the chart set for a selection and
// records the build in metrics and the request span.
func buildReport(ctx context.Context, analytics *services.Analytics, metrics *observability.Metrics, sel models.Selection) (models.ChartSet, []charts.Figure, error) {
	ctx, span := observability.StartSpan(ctx, "build report")
	defer span.Finish()
	span.SetTag("report_type", string(sel.ReportType))
	span.SetTag("year", strconv.Itoa(sel.Year))

	start := time.Now()

	set, err := analytics.BuildChartSet(sel)
	if err != nil {
		span.SetError(err)
		return set, nil, err
	}

	figures, err := charts.RenderAll(ctx, set.Charts)
	if err != nil {
		span.SetError(err)
		return set, nil, err
	}

	for _, f := range figures {
		if f.Err != nil && !errors.Is(f.Err, charts.ErrNoData) {
			metrics.ChartRenderFailed()
		}
	}

	metrics.ObserveReport(string(set.Selection.ReportType), len(set.Charts), time.Since(start))
	return set, figures, nil
}
