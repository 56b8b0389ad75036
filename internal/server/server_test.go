package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carscout/carscout/internal/model"
	"github.com/carscout/carscout/internal/recommend"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.ReferenceYear = 2025

	pipeline, err := recommend.NewPipeline(cfg)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	vehicles := []model.VehicleRecord{
		{ID: "camry", Make: "TOYOTA", Model: "CAMRY", Year: 2021, Price: 24000,
			SafetyRating: 4.8, ReliabilityScore: 0.9, Mileage: 30000},
		{ID: "focus", Make: "FORD", Model: "FOCUS", Year: 2014, Price: 7500,
			SafetyRating: 3.8, ReliabilityScore: 0.62, Mileage: 130000},
	}

	return New(pipeline, vehicles, cfg.Server)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("unexpected status: %v", body["status"])
	}
	if body["vehicles"].(float64) != 2 {
		t.Errorf("unexpected vehicle count: %v", body["vehicles"])
	}
}

func TestHandleRecommend(t *testing.T) {
	srv := newTestServer(t)

	payload, _ := json.Marshal(model.Query{MaxPrice: 30000, TopN: 5})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type: %s", ct)
	}

	var report model.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if report.RunID == "" {
		t.Error("report missing run ID")
	}
	if report.TotalVehicles != 2 || len(report.Recommendations) != 2 {
		t.Errorf("unexpected report: total=%d recs=%d",
			report.TotalVehicles, len(report.Recommendations))
	}
}

func TestHandleRecommend_InvalidConstraint(t *testing.T) {
	srv := newTestServer(t)

	payload, _ := json.Marshal(model.Query{MaxPrice: -10})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("error body missing message")
	}
}

func TestHandleRecommend_MalformedBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
