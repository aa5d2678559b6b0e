package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ThresholdViolation is one document of the error_logs collection.
// Created once per violation, never updated.
type ThresholdViolation struct {
	ID              string     `json:"id"`
	PH              float64    `json:"ph"`
	TDS             float64    `json:"tds"`
	Temp            float64    `json:"temp"`
	ErrorParameters []SensorID `json:"errorParameters"` // nil when absent
	Timestamp       string     `json:"timestamp"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// UnmarshalJSON accepts any shape for errorParameters; anything other than
// an array of strings decodes as absent.
func (v *ThresholdViolation) UnmarshalJSON(b []byte) error {
	type alias ThresholdViolation
	aux := struct {
		*alias
		ErrorParameters json.RawMessage `json:"errorParameters"`
	}{alias: (*alias)(v)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	v.ErrorParameters = DecodeErrorParameters(aux.ErrorParameters)
	return nil
}

// DecodeErrorParameters parses a raw errorParameters value. Absent, null or
// non-array input yields nil.
func DecodeErrorParameters(raw []byte) []SensorID {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var ss []string
	if err := json.Unmarshal(raw, &ss); err != nil {
		return nil
	}
	out := make([]SensorID, 0, len(ss))
	for _, s := range ss {
		out = append(out, SensorID(s))
	}
	return out
}

// ParametersText joins the parameters with sep, or returns "N/A" when absent.
func (v ThresholdViolation) ParametersText(sep string) string {
	if v.ErrorParameters == nil {
		return "N/A"
	}
	parts := make([]string, len(v.ErrorParameters))
	for i, p := range v.ErrorParameters {
		parts[i] = string(p)
	}
	return strings.Join(parts, sep)
}

// UnknownParameters returns the parameters not drawn from KnownSensors.
func (v ThresholdViolation) UnknownParameters() []SensorID {
	var bad []SensorID
	for _, p := range v.ErrorParameters {
		if !p.Known() {
			bad = append(bad, p)
		}
	}
	return bad
}
