package models

import "sort"

// SensorID names a water-quality probe.
type SensorID string

const (
	SensorPH   SensorID = "ph"
	SensorTDS  SensorID = "tds"
	SensorTemp SensorID = "temp"
)

// KnownSensors is the canonical display and evaluation order.
var KnownSensors = []SensorID{SensorPH, SensorTDS, SensorTemp}

var sensorLabels = map[SensorID]string{
	SensorPH:   "pH Level",
	SensorTDS:  "TDS",
	SensorTemp: "Temperature",
}

var sensorUnits = map[SensorID]string{
	SensorPH:   "pH",
	SensorTDS:  "ppm",
	SensorTemp: "°C",
}

// Known reports whether id is one of ph, tds, temp.
func (id SensorID) Known() bool {
	_, ok := sensorLabels[id]
	return ok
}

// Label returns the display label, falling back to the raw id.
func (id SensorID) Label() string {
	if l, ok := sensorLabels[id]; ok {
		return l
	}
	return string(id)
}

// Unit returns the display unit, empty for unknown ids.
func (id SensorID) Unit() string {
	return sensorUnits[id]
}

// SensorReading is the current value of one probe. Overwritten continuously.
type SensorReading struct {
	SensorID SensorID `json:"sensorId"`
	Value    float64  `json:"value"`
}

// LabeledReading is a SensorReading decorated for display.
type LabeledReading struct {
	SensorID SensorID `json:"sensorId"`
	Label    string   `json:"label"`
	Unit     string   `json:"unit"`
	Value    float64  `json:"value"`
}

// Labeled decorates r with its label and unit.
func (r SensorReading) Labeled() LabeledReading {
	return LabeledReading{
		SensorID: r.SensorID,
		Label:    r.SensorID.Label(),
		Unit:     r.SensorID.Unit(),
		Value:    r.Value,
	}
}

// SortReadings orders known sensors first (ph, tds, temp), then unknown ids alphabetically.
func SortReadings(rs []SensorReading) {
	rank := func(id SensorID) int {
		for i, k := range KnownSensors {
			if k == id {
				return i
			}
		}
		return len(KnownSensors)
	}
	sort.SliceStable(rs, func(i, j int) bool {
		ri, rj := rank(rs[i].SensorID), rank(rs[j].SensorID)
		if ri != rj {
			return ri < rj
		}
		return rs[i].SensorID < rs[j].SensorID
	})
}
