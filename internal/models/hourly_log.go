package models

import "time"

// HourlyLog is one document of the hourly_logs collection: every sample
// seen during the period, per sensor.
type HourlyLog struct {
	ID        string    `json:"id"`
	PH        []float64 `json:"ph"`
	TDS       []float64 `json:"tds"`
	Temp      []float64 `json:"temp"`
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
}

// Range is the min/max of a series.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SeriesRange returns nil for an empty series.
func SeriesRange(vals []float64) *Range {
	if len(vals) == 0 {
		return nil
	}
	r := Range{Min: vals[0], Max: vals[0]}
	for _, v := range vals[1:] {
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
	}
	return &r
}

// HourlyLogView adds derived ranges for display.
type HourlyLogView struct {
	HourlyLog
	PHRange   *Range `json:"phRange"`
	TDSRange  *Range `json:"tdsRange"`
	TempRange *Range `json:"tempRange"`
}

// View derives the min/max ranges of l.
func (l HourlyLog) View() HourlyLogView {
	return HourlyLogView{
		HourlyLog: l,
		PHRange:   SeriesRange(l.PH),
		TDSRange:  SeriesRange(l.TDS),
		TempRange: SeriesRange(l.Temp),
	}
}
