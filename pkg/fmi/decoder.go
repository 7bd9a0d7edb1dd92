package fmi

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ParseDocument decodes a multipointcoverage response into its station
// geometries, variable schema, positions and value rows.
//
// A collection without members yields ErrNoDataAvailable. An exception
// envelope is classified instead of being reported as a decode failure.
func ParseDocument(r io.Reader) (*Document, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, decodeErrorf(err, "read body")
	}
	return parseDocument(body)
}

func parseDocument(body []byte) (*Document, error) {
	root, ok := rootElement(body)
	if !ok {
		return nil, &DecodeError{Reason: "body is not an XML document"}
	}
	if root.Name.Local == "ExceptionReport" {
		return nil, classifyEnvelope(Outcome{StatusCode: http.StatusOK, Body: body}, body).Err()
	}

	var fc FeatureCollection
	if err := xml.Unmarshal(body, &fc); err != nil {
		return nil, decodeErrorf(err, "parse feature collection")
	}

	if len(fc.Members) == 0 {
		return nil, ErrNoDataAvailable
	}

	// Multipointcoverage queries put every station into one member
	obs := fc.Members[0].GridSeriesObservation
	if obs == nil {
		return nil, &DecodeError{Reason: "member has no GridSeriesObservation"}
	}

	multiPoint := obs.SpatialSamplingFeature.Shape.MultiPoint
	if multiPoint == nil {
		return nil, &DecodeError{Reason: "missing station geometry collection"}
	}
	stations, err := parseStations(multiPoint.Points())
	if err != nil {
		return nil, err
	}

	coverage := obs.Result.MultiPointCoverage
	if coverage == nil {
		return nil, &DecodeError{Reason: "missing MultiPointCoverage result"}
	}
	if coverage.RangeType.DataRecord == nil {
		return nil, &DecodeError{Reason: "missing variable schema"}
	}
	if coverage.DomainSet.SimpleMultiPoint == nil {
		return nil, &DecodeError{Reason: "missing positions block"}
	}
	if coverage.RangeSet.DataBlock == nil {
		return nil, &DecodeError{Reason: "missing value matrix"}
	}

	schema := parseSchema(coverage.RangeType.DataRecord.Fields)

	times, err := parsePositions(coverage.DomainSet.SimpleMultiPoint.Positions)
	if err != nil {
		return nil, err
	}

	values, err := parseValues(coverage.RangeSet.DataBlock.DoubleOrNilReasonTupleList, len(schema))
	if err != nil {
		return nil, err
	}

	if len(times) != len(values) {
		return nil, &DecodeError{Reason: fmt.Sprintf("position count (%d) doesn't match value row count (%d)",
			len(times), len(values))}
	}

	return &Document{
		Kind:     DetectKind(schema),
		Stations: stations,
		Schema:   schema,
		Times:    times,
		Values:   values,
	}, nil
}

func parseStations(points []Point) ([]Place, error) {
	stations := make([]Place, 0, len(points))
	for i, point := range points {
		lat, lon, err := parseCoordinatePair(point.Pos)
		if err != nil {
			return nil, decodeErrorf(err, "station %d position", i)
		}
		stations = append(stations, Place{
			Name: strings.TrimSpace(point.Name),
			Lat:  lat,
			Lon:  lon,
		})
	}
	return stations, nil
}

// parseCoordinatePair reads "lat lon". Station positions and the positions
// vector use the same order so they can be joined.
func parseCoordinatePair(pos string) (float64, float64, error) {
	parts := strings.Fields(pos)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid position format: %q", pos)
	}

	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}

	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}

	return lat, lon, nil
}

func parseSchema(fields []Field) VariableSchema {
	schema := make(VariableSchema, 0, len(fields))
	for _, field := range fields {
		schema = append(schema, field.Name)
	}
	return schema
}

// parsePositions parses "lat lon [...] unix_timestamp" records, one per line
func parsePositions(block string) ([]TimePoint, error) {
	var times []TimePoint

	for i, line := range strings.Split(block, "\n") {
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		if len(parts) < 3 {
			return nil, &DecodeError{Reason: fmt.Sprintf("positions line %d: expected lat, lon and time, got %q", i, line)}
		}

		lat, lon, err := parseCoordinatePair(line)
		if err != nil {
			return nil, decodeErrorf(err, "positions line %d", i)
		}

		unixTime, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
		if err != nil {
			return nil, decodeErrorf(err, "positions line %d: invalid timestamp", i)
		}

		times = append(times, TimePoint{
			Lat:       lat,
			Lon:       lon,
			Timestamp: time.Unix(unixTime, 0).UTC(),
		})
	}

	return times, nil
}

// parseValues parses the value matrix. Every row must have one token per
// schema variable; "NaN" tokens stay NaN here.
func parseValues(block string, width int) ([]ValueRow, error) {
	var rows []ValueRow

	for i, line := range strings.Split(block, "\n") {
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		if len(parts) != width {
			return nil, &DecodeError{Reason: fmt.Sprintf("value row %d has %d values, schema has %d variables",
				len(rows), len(parts), width)}
		}

		row := make(ValueRow, len(parts))
		for j, part := range parts {
			val, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, decodeErrorf(err, "value row %d line %d column %d", len(rows), i, j)
			}
			row[j] = val
		}
		rows = append(rows, row)
	}

	return rows, nil
}
