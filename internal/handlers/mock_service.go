package handlers

import (
	"clariasense/internal/models"
	"clariasense/internal/service"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	genTokenToken string
	genTokenErr   error
	parseDevice   string
	parseErr      error

	lastGenDevice  string
	lastGenSecret  string
	lastParseToken string
}

func (m *mockAuth) Provision(context.Context, string, string) error { return nil }
func (m *mockAuth) GenerateToken(_ context.Context, device, secret string) (string, error) {
	m.lastGenDevice = device
	m.lastGenSecret = secret
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseDevice, m.parseErr
}

type mockSubscriptions struct {
	created  bool
	subErr   error
	unsubErr error

	lastSubscribe   string
	lastUnsubscribe string
}

func (m *mockSubscriptions) Subscribe(_ context.Context, email string) (models.Subscriber, bool, error) {
	m.lastSubscribe = email
	if m.subErr != nil {
		return models.Subscriber{}, false, m.subErr
	}
	return models.Subscriber{ID: "s1", Email: models.NormalizeEmail(email)}, m.created, nil
}
func (m *mockSubscriptions) Unsubscribe(_ context.Context, email string) error {
	m.lastUnsubscribe = email
	return m.unsubErr
}

type mockReadings struct {
	current    []models.LabeledReading
	currentErr error
	ingestRes  service.IngestResult
	ingestErr  error
	distErr    error

	lastSource   string
	lastValues   map[models.SensorID]float64
	lastDistance float64
}

func (m *mockReadings) Ingest(_ context.Context, source string, values map[models.SensorID]float64) (service.IngestResult, error) {
	m.lastSource = source
	m.lastValues = values
	return m.ingestRes, m.ingestErr
}
func (m *mockReadings) WriteDistance(_ context.Context, source string, d float64) error {
	m.lastSource = source
	m.lastDistance = d
	return m.distErr
}
func (m *mockReadings) Current(context.Context) ([]models.LabeledReading, error) {
	return m.current, m.currentErr
}

type mockLogs struct {
	errorLogs  []models.ThresholdViolation
	hourlyLogs []models.HourlyLogView
	listErr    error
	createErr  error

	lastFilter  service.LogFilter
	lastCreated models.ThresholdViolation
	lastHourly  models.HourlyLog
}

func (m *mockLogs) ListErrorLogs(_ context.Context, f service.LogFilter) ([]models.ThresholdViolation, error) {
	m.lastFilter = f
	return m.errorLogs, m.listErr
}
func (m *mockLogs) ListHourlyLogs(_ context.Context, f service.LogFilter) ([]models.HourlyLogView, error) {
	m.lastFilter = f
	return m.hourlyLogs, m.listErr
}
func (m *mockLogs) CreateErrorLog(_ context.Context, v models.ThresholdViolation) (models.ThresholdViolation, error) {
	m.lastCreated = v
	if m.createErr != nil {
		return models.ThresholdViolation{}, m.createErr
	}
	v.ID = "v1"
	return v, nil
}
func (m *mockLogs) CreateHourlyLog(_ context.Context, l models.HourlyLog) (models.HourlyLog, error) {
	m.lastHourly = l
	if m.createErr != nil {
		return models.HourlyLog{}, m.createErr
	}
	l.ID = "h1"
	return l, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, Options{})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
