package fmi

import (
	"math"
	"sort"
)

// Observations zips positions and value rows into observations, naming the
// values with the schema. NaN values are dropped and rows without any value
// are discarded.
func Observations(schema VariableSchema, times []TimePoint, values []ValueRow) []RawObservation {
	observations := make([]RawObservation, 0, len(times))

	for i, tp := range times {
		if i >= len(values) {
			break
		}

		vars := make(map[string]float64, len(schema))
		for j, value := range values[i] {
			if j >= len(schema) || math.IsNaN(value) {
				continue
			}
			vars[schema[j]] = value
		}

		obs := RawObservation{
			Lat:       tp.Lat,
			Lon:       tp.Lon,
			Timestamp: tp.Timestamp,
			Variables: vars,
		}
		// Latest rows are often all NaN while a station has not reported yet
		if obs.Empty() {
			continue
		}
		observations = append(observations, obs)
	}

	return observations
}

// Correlate assigns every non-empty observation to the station at the same
// position. Stations are returned in document order; a station may end up
// with no observations.
func Correlate(stations []Place, schema VariableSchema, times []TimePoint, values []ValueRow) []StationObservations {
	observations := Observations(schema, times, values)

	result := make([]StationObservations, 0, len(stations))
	for _, station := range stations {
		var stationObs []RawObservation
		for _, obs := range observations {
			if atStation(station, obs) {
				stationObs = append(stationObs, obs)
			}
		}

		sort.SliceStable(stationObs, func(i, j int) bool {
			return stationObs[i].Timestamp.Before(stationObs[j].Timestamp)
		})

		result = append(result, StationObservations{
			Station:      station,
			Observations: stationObs,
		})
	}

	return result
}

// atStation is the single join between stations and observation rows. FMI
// writes the same coordinate text in both places, so exact equality holds.
func atStation(station Place, obs RawObservation) bool {
	return station.Lat == obs.Lat && station.Lon == obs.Lon
}

// distance is planar Euclidean distance in degrees, no geodesic correction.
func distance(lat, lon float64, station Place) float64 {
	return math.Hypot(lat-station.Lat, lon-station.Lon)
}

// Nearest returns the station closest to the point. Ties go to the station
// seen first. It fails with ErrNoDataAvailable when there are no stations
// or the closest one has no observations.
func Nearest(lat, lon float64, stations []StationObservations) (StationObservations, error) {
	if len(stations) == 0 {
		return StationObservations{}, ErrNoDataAvailable
	}

	closest := 0
	minDistance := distance(lat, lon, stations[0].Station)
	for i := 1; i < len(stations); i++ {
		if d := distance(lat, lon, stations[i].Station); d < minDistance {
			closest = i
			minDistance = d
		}
	}

	if len(stations[closest].Observations) == 0 {
		return StationObservations{}, ErrNoDataAvailable
	}
	return stations[closest], nil
}

// RankedByDistance returns a copy of stations ordered from closest to
// farthest. Equal distances keep their input order.
func RankedByDistance(lat, lon float64, stations []StationObservations) []StationObservations {
	ranked := make([]StationObservations, len(stations))
	copy(ranked, stations)

	sort.SliceStable(ranked, func(i, j int) bool {
		return distance(lat, lon, ranked[i].Station) < distance(lat, lon, ranked[j].Station)
	})

	return ranked
}
