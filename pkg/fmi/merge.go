package fmi

// Merge builds one composite record from stations ranked closest first.
// The closest station with observations provides the base reading and its
// timestamp. Variables it lacks are taken from the latest reading of the
// next station that has them; a variable already present is never replaced.
func Merge(kind ResponseKind, ranked []StationObservations) (Place, WeatherRecord, error) {
	var (
		base   Place
		latest RawObservation
		merged map[string]float64
	)

	for _, station := range ranked {
		obs, ok := station.Latest()
		if !ok {
			continue
		}

		if merged == nil {
			base = station.Station
			latest = obs
			merged = make(map[string]float64, len(obs.Variables))
		}

		for name, value := range obs.Variables {
			if _, exists := merged[name]; !exists {
				merged[name] = value
			}
		}
	}

	if merged == nil {
		return Place{}, WeatherRecord{}, ErrNoDataAvailable
	}

	return base, kind.Build(latest.Timestamp, merged), nil
}
