package fmi

import "bytes"

// DecodeWeather returns the latest reading of the first station in the
// document.
func DecodeWeather(body []byte) (*Weather, error) {
	doc, err := ParseDocument(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	stations := doc.Correlate()
	if len(stations) == 0 {
		return nil, ErrNoDataAvailable
	}
	return latestWeather(doc.Kind, stations[0])
}

// DecodeNearestWeather returns the latest reading of the station closest to
// the point.
func DecodeNearestWeather(body []byte, lat, lon float64) (*Weather, error) {
	doc, err := ParseDocument(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	station, err := Nearest(lat, lon, doc.Correlate())
	if err != nil {
		return nil, err
	}
	return latestWeather(doc.Kind, station)
}

// DecodeMultiStationWeather merges the latest readings of every station in
// the document, preferring closer stations.
func DecodeMultiStationWeather(body []byte, lat, lon float64) (*Weather, error) {
	doc, err := ParseDocument(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	place, record, err := Merge(doc.Kind, RankedByDistance(lat, lon, doc.Correlate()))
	if err != nil {
		return nil, err
	}

	return &Weather{
		Place: place.Name,
		Lat:   place.Lat,
		Lon:   place.Lon,
		Data:  record,
	}, nil
}

// DecodeForecast returns every non-empty forecast step in document order.
// The place is the document's first geometry; rows are not joined against
// it since a point forecast is computed on the nearest grid point.
func DecodeForecast(body []byte) (*Forecast, error) {
	doc, err := ParseDocument(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if len(doc.Stations) == 0 {
		return nil, &DecodeError{Reason: "forecast has no place geometry"}
	}

	observations := Observations(doc.Schema, doc.Times, doc.Values)
	if len(observations) == 0 {
		return nil, ErrNoDataAvailable
	}

	place := doc.Stations[0]
	forecast := &Forecast{
		Place:   place.Name,
		Lat:     place.Lat,
		Lon:     place.Lon,
		Records: make([]WeatherRecord, 0, len(observations)),
	}
	for _, obs := range observations {
		forecast.Records = append(forecast.Records, doc.Kind.Build(obs.Timestamp, obs.Variables))
	}

	return forecast, nil
}

// Correlate joins the document's rows to its stations.
func (d *Document) Correlate() []StationObservations {
	return Correlate(d.Stations, d.Schema, d.Times, d.Values)
}

func latestWeather(kind ResponseKind, station StationObservations) (*Weather, error) {
	obs, ok := station.Latest()
	if !ok {
		return nil, ErrNoDataAvailable
	}

	return &Weather{
		Place: station.Station.Name,
		Lat:   station.Station.Lat,
		Lon:   station.Station.Lon,
		Data:  kind.Build(obs.Timestamp, obs.Variables),
	}, nil
}
