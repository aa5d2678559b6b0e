package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"clariasense/internal/models"
	"clariasense/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	logs := &mockLogs{
		errorLogs: []models.ThresholdViolation{
			{ID: "v2", PH: 9, ErrorParameters: []models.SensorID{models.SensorPH}, Timestamp: "2025-03-01 10:00:00"},
			{ID: "v1", Temp: 35, ErrorParameters: []models.SensorID{models.SensorTemp}, Timestamp: "2025-03-01 09:00:00"},
		},
		hourlyLogs: []models.HourlyLogView{models.HourlyLog{ID: "h1", PH: []float64{7, 7.4}}.View()},
	}
	r := newTestRouter(&service.Service{Logs: logs})

	// invalid 'from' → 400
	w := perform(r, http.MethodGet, "/api/logs/errors?from=notatime", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// invalid limit → 400
	w = perform(r, http.MethodGet, "/api/logs/hourly?limit=-3", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid limit, got %d", w.Code)
	}

	// valid range and limit
	q := "/api/logs/errors?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&limit=5"
	w = perform(r, http.MethodGet, q, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count int                         `json:"count"`
		Logs  []models.ThresholdViolation `json:"logs"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || out.Logs[0].ID != "v2" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if !logs.lastFilter.From.Equal(now) || logs.lastFilter.Limit != 5 {
		t.Fatalf("filter not forwarded: %+v", logs.lastFilter)
	}

	// date-only 'to' is end of day
	w = perform(r, http.MethodGet, "/api/logs/hourly?to=2025-03-01", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("hourly status=%d, body=%s", w.Code, w.Body.String())
	}
	wantTo := time.Date(2025, 3, 1, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastFilter.To.Equal(wantTo) {
		t.Fatalf("to: got %v, want %v", logs.lastFilter.To, wantTo)
	}
	var hourly struct {
		Logs []models.HourlyLogView `json:"logs"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &hourly)
	if len(hourly.Logs) != 1 || hourly.Logs[0].PHRange == nil || hourly.Logs[0].PHRange.Max != 7.4 || hourly.Logs[0].TDSRange != nil {
		t.Fatalf("unexpected hourly response: %s", w.Body.String())
	}

	// inverted range reported by the service → 400
	logs.listErr = service.ErrInvalidTimeRange
	w = perform(r, http.MethodGet, "/api/logs/errors?from=2025-03-02&to=2025-03-01", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 inverted range, got %d", w.Code)
	}

	logs.listErr = errors.New("db locked")
	w = perform(r, http.MethodGet, "/api/logs/errors", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestLogsHandler_Create(t *testing.T) {
	auth := &mockAuth{parseDevice: "tank-1"}
	logs := &mockLogs{}
	r := newTestRouter(&service.Service{DeviceAuth: auth, Logs: logs})

	body := `{"id":"ignored","ph":9.2,"tds":300,"temp":27,"errorParameters":["ph"],"timestamp":"2025-03-01 10:00:00"}`
	w := perform(r, http.MethodPost, "/api/v1/error-logs", body, authHeader("valid"))
	if w.Code != http.StatusCreated {
		t.Fatalf("error-log status=%d, body=%s", w.Code, w.Body.String())
	}
	if logs.lastCreated.ID != "" || logs.lastCreated.PH != 9.2 || len(logs.lastCreated.ErrorParameters) != 1 {
		t.Fatalf("unexpected record forwarded: %+v", logs.lastCreated)
	}

	// non-array errorParameters decode as absent
	w = perform(r, http.MethodPost, "/api/v1/error-logs", `{"ph":9.2,"errorParameters":"ph"}`, authHeader("valid"))
	if w.Code != http.StatusCreated || logs.lastCreated.ErrorParameters != nil {
		t.Fatalf("status=%d params=%v", w.Code, logs.lastCreated.ErrorParameters)
	}

	logs.createErr = service.ErrInvalidErrorParameters
	w = perform(r, http.MethodPost, "/api/v1/error-logs", `{"errorParameters":["orp"]}`, authHeader("valid"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown parameter, got %d", w.Code)
	}

	logs.createErr = nil
	w = perform(r, http.MethodPost, "/api/v1/hourly-logs", `{"ph":[7,7.1],"tds":[],"temp":[26]}`, authHeader("valid"))
	if w.Code != http.StatusCreated {
		t.Fatalf("hourly-log status=%d, body=%s", w.Code, w.Body.String())
	}
	if len(logs.lastHourly.PH) != 2 {
		t.Fatalf("unexpected hourly forwarded: %+v", logs.lastHourly)
	}
}
