package fmi

import "math"

// FeelsLike is FMI's apparent temperature: a wind chill term and a summer
// simmer (heat index) term added to the air temperature, plus a radiation
// term when global radiation is known. Without wind speed or humidity it is
// the plain temperature.
//
// temperature in °C, windSpeed in m/s, humidity in %, radiation in W/m².
func FeelsLike(temperature float64, windSpeed, humidity, radiation *float64) float64 {
	if windSpeed == nil || humidity == nil {
		return temperature
	}
	wind := *windSpeed

	// Wind chill fitted for m/s; the two wind chill curves meet at T=0 and
	// the chill is horizontal at t0
	const a = 15.0
	const t0 = 37.0
	chill := a + (1-a/t0)*temperature + a/t0*math.Pow(wind+1, 0.16)*(temperature-t0)

	heat := summerSimmer(*humidity, temperature)

	feels := temperature + (chill - temperature) + (heat - temperature)

	if radiation != nil {
		// 800 W/m² in calm weather adds about 4 degrees, 50 W/m² nothing
		const absorption = 0.07
		feels += 0.7*absorption*(*radiation)/(wind+10) - 0.25
	}

	return feels
}

// summerSimmer is the summer simmer index. Below the limit it is the
// temperature itself.
func summerSimmer(humidity, temperature float64) float64 {
	const simmerLimit = 14.5
	if temperature <= simmerLimit {
		return temperature
	}

	const rhRef = 50.0 / 100.0
	r := humidity / 100.0

	return (1.8*temperature - 0.55*(1-r)*(1.8*temperature-26) - 0.55*(1-rhRef)*26) /
		(1.8 * (1 - 0.55*(1-rhRef)))
}
