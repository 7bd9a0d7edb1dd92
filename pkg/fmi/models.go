package fmi

import (
	"fmt"
	"time"
)

// Place identifies a station or a named location
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (p Place) String() string {
	return fmt.Sprintf("%s (%v, %v)", p.Name, p.Lat, p.Lon)
}

// VariableSchema lists the variable names of a document in order. A name's
// index is its column in every ValueRow.
type VariableSchema []string

// TimePoint is one record of the positions vector
type TimePoint struct {
	Lat       float64
	Lon       float64
	Timestamp time.Time
}

// ValueRow is one row of the value matrix. NaN marks a missing value.
type ValueRow []float64

// RawObservation is a TimePoint zipped with its ValueRow. Missing values
// have no entry in Variables, so NaN never leaves the decoder.
type RawObservation struct {
	Lat       float64
	Lon       float64
	Timestamp time.Time
	Variables map[string]float64
}

// Empty reports whether the observation carries no value at all
func (o RawObservation) Empty() bool {
	return len(o.Variables) == 0
}

// StationObservations holds all non-empty readings of one station in
// ascending time order
type StationObservations struct {
	Station      Place
	Observations []RawObservation
}

// Latest returns the most recent observation of the station.
func (s StationObservations) Latest() (RawObservation, bool) {
	if len(s.Observations) == 0 {
		return RawObservation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// ResponseKind tells which stored query vocabulary a document uses.
type ResponseKind int

const (
	KindForecast ResponseKind = iota
	KindObservation
)

func (k ResponseKind) String() string {
	if k == KindObservation {
		return "observation"
	}
	return "forecast"
}

// Document is a decoded coverage document: aligned station geometries,
// schema, positions and values.
type Document struct {
	Kind     ResponseKind
	Stations []Place
	Schema   VariableSchema
	Times    []TimePoint
	Values   []ValueRow
}
