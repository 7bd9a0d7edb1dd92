package fmi

import (
	"strconv"
	"time"
)

// Quantity is a measurement with its unit. A nil Value means the variable
// was not reported; the unit is still set.
type Quantity struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

// Present reports whether the quantity has a value
func (q Quantity) Present() bool {
	return q.Value != nil
}

// String renders "12.3 °C", or "- °C" when the value is missing
func (q Quantity) String() string {
	value := "-"
	if q.Value != nil {
		value = strconv.FormatFloat(*q.Value, 'f', -1, 64)
	}
	if q.Unit == "" {
		return value
	}
	return value + " " + q.Unit
}

// WeatherRecord is one timestamped reading or forecast step
type WeatherRecord struct {
	Time time.Time `json:"time"`

	Temperature Quantity `json:"temperature"`
	DewPoint    Quantity `json:"dew_point"`
	// FeelsLike is derived from temperature, wind, humidity and radiation
	FeelsLike Quantity `json:"feels_like"`

	Pressure Quantity `json:"pressure"`
	Humidity Quantity `json:"humidity"`

	WindDirection  Quantity `json:"wind_direction"`
	WindSpeed      Quantity `json:"wind_speed"`
	WindUComponent Quantity `json:"wind_u_component"`
	WindVComponent Quantity `json:"wind_v_component"`
	WindMax        Quantity `json:"wind_max"`  // max 10 min average, not in the current schema
	WindGust       Quantity `json:"wind_gust"` // max 3 s average

	Symbol         Quantity `json:"symbol"`
	CloudCover     Quantity `json:"cloud_cover"`
	CloudLowCover  Quantity `json:"cloud_low_cover"`
	CloudMidCover  Quantity `json:"cloud_mid_cover"`
	CloudHighCover Quantity `json:"cloud_high_cover"`

	// Precipitation is the amount of rain in the past hour
	Precipitation Quantity `json:"precipitation_amount"`
	Visibility    Quantity `json:"visibility"`

	RadiationGlobal                  Quantity `json:"radiation_global"`
	RadiationShortWaveAcc            Quantity `json:"radiation_short_wave_acc"`
	RadiationShortWaveSurfaceNetAcc  Quantity `json:"radiation_short_wave_surface_net_acc"`
	RadiationLongWaveAcc             Quantity `json:"radiation_long_wave_acc"`
	RadiationLongWaveSurfaceNetAcc   Quantity `json:"radiation_long_wave_surface_net_acc"`
	RadiationShortWaveDiffSurfaceAcc Quantity `json:"radiation_short_wave_diff_surface_acc"`

	GeopotentialHeight Quantity `json:"geopotential_height"`
	LandSeaMask        Quantity `json:"land_sea_mask"`
}

// Weather is the latest reading for a location
type Weather struct {
	Place string        `json:"place"`
	Lat   float64       `json:"lat"`
	Lon   float64       `json:"lon"`
	Data  WeatherRecord `json:"data"`
}

// Forecast is a chronological series of forecast steps for a location
type Forecast struct {
	Place   string          `json:"place"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	Records []WeatherRecord `json:"forecasts"`
}

// BuildRecord builds a record from forecast vocabulary variables
func BuildRecord(ts time.Time, vars map[string]float64) WeatherRecord {
	return KindForecast.Build(ts, vars)
}
