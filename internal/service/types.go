package service

import (
	"clariasense/internal/models"
	"time"
)

// LogFilter supports history filtering by creation time range and a row limit.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Limit int       // 0 means defaultLogLimit
}

// Range is the accepted [Min, Max] interval of one sensor.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// IngestResult reports what a reading write produced.
type IngestResult struct {
	Readings  []models.SensorReading     `json:"readings"`
	Violation *models.ThresholdViolation `json:"violation,omitempty"`
}

// FanOutReport summarizes one alert batch.
type FanOutReport struct {
	Recipients int `json:"recipients"`
	Written    int `json:"written"`
	Failed     int `json:"failed"`
}

// RefillOutcome says why a distance write did or did not alert.
type RefillOutcome string

const (
	RefillBelowThreshold RefillOutcome = "below_threshold"
	RefillCoolingDown    RefillOutcome = "cooling_down"
	RefillRaceLost       RefillOutcome = "race_lost"
	RefillNoRecipients   RefillOutcome = "no_recipients"
	RefillAlerted        RefillOutcome = "alerted"
)

type RefillResult struct {
	Outcome RefillOutcome `json:"outcome"`
	Report  FanOutReport  `json:"report"`
}

// timestampLayout is how violation and hourly records stamp their time.
const timestampLayout = "2006-01-02 15:04:05"
