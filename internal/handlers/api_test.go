package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/observability"
	"autosales-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestAnalytics(t *testing.T) *services.Analytics {
	t.Helper()
	a := services.NewAnalytics()
	records := []models.SalesRecord{
		{Year: 1980, Month: "Jan", Recession: true, Sales: 100, VehicleType: "Executivecar", Advertising: 10, Unemployment: 5},
		{Year: 1980, Month: "Feb", Recession: true, Sales: 200, VehicleType: "Sports", Advertising: 20, Unemployment: 5},
		{Year: 1981, Month: "Jan", Recession: false, Sales: 300, VehicleType: "Executivecar", Advertising: 30, Unemployment: 4},
		{Year: 1981, Month: "Mar", Recession: false, Sales: 500, VehicleType: "Sports", Advertising: 50, Unemployment: 4},
		{Year: 1982, Month: "Jan", Recession: true, Sales: 50, VehicleType: "Executivecar", Advertising: 5, Unemployment: 6.5},
		{Year: 1982, Month: "Feb", Recession: true, Sales: 150, VehicleType: "Sports", Advertising: 15, Unemployment: 6.5},
	}
	if err := a.SetData(records); err != nil {
		t.Fatalf("SetData() failed: %v", err)
	}
	return a
}

func newTestAPIHandlers(t *testing.T) *APIHandlers {
	return NewAPIHandlers(createTestAnalytics(t), observability.NewMetrics(), testLogger())
}

type reportResponse struct {
	Success bool            `json:"success"`
	Data    models.ChartSet `json:"data"`
}

func reportURL(path, typ, year string) string {
	q := url.Values{}
	if typ != "" {
		q.Set("type", typ)
	}
	if year != "" {
		q.Set("year", year)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func TestNewAPIHandlers(t *testing.T) {
	analytics := createTestAnalytics(t)
	handlers := NewAPIHandlers(analytics, nil, testLogger())

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewAPIHandlers() should set analytics field")
	}
}

func TestAPIHandlers_HandleReport(t *testing.T) {
	handlers := newTestAPIHandlers(t)

	tests := []struct {
		name         string
		typ          string
		year         string
		wantCharts   int
		yearDisabled bool
		titleYear    string
	}{
		{"no selection", "", "", 0, true, ""},
		{"recession", string(models.ReportRecession), "", 4, true, ""},
		{"recession ignores year", string(models.ReportRecession), "1981", 4, true, ""},
		{"yearly without year", string(models.ReportYearly), "", 0, false, ""},
		{"yearly with year", string(models.ReportYearly), "1981", 4, false, "1981"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, reportURL("/api/report", tt.typ, tt.year), nil)
			w := httptest.NewRecorder()

			handlers.HandleReport(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected content-type 'application/json', got %q", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
				t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
			}

			var resp reportResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			if !resp.Success {
				t.Error("expected success=true in response")
			}
			if len(resp.Data.Charts) != tt.wantCharts {
				t.Errorf("expected %d charts, got %d", tt.wantCharts, len(resp.Data.Charts))
			}
			if resp.Data.YearDisabled != tt.yearDisabled {
				t.Errorf("expected year_disabled=%v, got %v", tt.yearDisabled, resp.Data.YearDisabled)
			}
			if tt.titleYear != "" {
				for _, c := range resp.Data.Charts {
					if !strings.Contains(c.Title, tt.titleYear) {
						t.Errorf("title %q should mention %s", c.Title, tt.titleYear)
					}
				}
			}
		})
	}
}

func TestAPIHandlers_HandleReport_InvalidSelection(t *testing.T) {
	handlers := newTestAPIHandlers(t)

	tests := []struct {
		name string
		typ  string
		year string
	}{
		{"unknown report type", "Monthly Statistics", ""},
		{"year before range", string(models.ReportYearly), "1979"},
		{"year after range", string(models.ReportYearly), "2024"},
		{"year not a number", string(models.ReportYearly), "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, reportURL("/api/report", tt.typ, tt.year), nil)
			w := httptest.NewRecorder()

			handlers.HandleReport(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}

			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			if success, _ := response["success"].(bool); success {
				t.Error("expected success=false in response")
			}
		})
	}
}

func TestAPIHandlers_HandleReport_NotLoaded(t *testing.T) {
	handlers := NewAPIHandlers(services.NewAnalytics(), nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, reportURL("/api/report", string(models.ReportRecession), ""), nil)
	w := httptest.NewRecorder()

	handlers.HandleReport(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestAPIHandlers_HandleChartSVG(t *testing.T) {
	handlers := newTestAPIHandlers(t)

	tests := []struct {
		name       string
		chart      string
		typ        string
		year       string
		wantStatus int
	}{
		{"first recession chart", "1.svg", string(models.ReportRecession), "", http.StatusOK},
		{"last recession chart", "4.svg", string(models.ReportRecession), "", http.StatusOK},
		{"yearly chart", "2.svg", string(models.ReportYearly), "1981", http.StatusOK},
		{"index out of range", "5.svg", string(models.ReportRecession), "", http.StatusNotFound},
		{"index zero", "0.svg", string(models.ReportRecession), "", http.StatusNotFound},
		{"not a number", "first.svg", string(models.ReportRecession), "", http.StatusNotFound},
		{"wrong extension", "1.png", string(models.ReportRecession), "", http.StatusNotFound},
		{"empty report", "1.svg", string(models.ReportYearly), "", http.StatusNotFound},
		{"invalid year", "1.svg", string(models.ReportYearly), "1900", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, reportURL("/charts/"+tt.chart, tt.typ, tt.year), nil)
			req.SetPathValue("name", tt.chart)
			w := httptest.NewRecorder()

			handlers.HandleChartSVG(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
				t.Errorf("expected content-type 'image/svg+xml', got %q", ct)
			}
			if !strings.Contains(w.Body.String(), "<svg") {
				t.Error("expected an SVG document")
			}
		})
	}
}

func TestAPIHandlers_HandleYears(t *testing.T) {
	handlers := newTestAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/years", nil)
	w := httptest.NewRecorder()

	handlers.HandleYears(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Data []int `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if len(response.Data) != 44 {
		t.Errorf("expected 44 years, got %d", len(response.Data))
	}
	if response.Data[0] != 1980 || response.Data[len(response.Data)-1] != 2023 {
		t.Errorf("unexpected year range %d-%d", response.Data[0], response.Data[len(response.Data)-1])
	}
}

func TestAPIHandlers_HandleReportTypes(t *testing.T) {
	handlers := newTestAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/report-types", nil)
	w := httptest.NewRecorder()

	handlers.HandleReportTypes(w, req)

	var response struct {
		Data []string `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	expected := []string{"Yearly Statistics", "Recession Period Statistics"}
	if len(response.Data) != len(expected) {
		t.Fatalf("expected %d report types, got %d", len(expected), len(response.Data))
	}
	for i, want := range expected {
		if response.Data[i] != want {
			t.Errorf("report type %d = %q, want %q", i, response.Data[i], want)
		}
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := newTestAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected data field in response")
	}
	if data["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", data["status"])
	}
	if _, ok := data["timestamp"]; !ok {
		t.Error("expected timestamp field")
	}
}

func TestAPIHandlers_HandleHealth_NotLoaded(t *testing.T) {
	handlers := NewAPIHandlers(services.NewAnalytics(), nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := newTestAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected data field in response")
	}
	if count, _ := data["record_count"].(float64); count != 6 {
		t.Errorf("expected record_count 6, got %v", data["record_count"])
	}
}
