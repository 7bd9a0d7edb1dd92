package fmi

import (
	"math"
	"time"
)

// field selects one Quantity of a WeatherRecord. The unit belongs to the
// field, not to the variable feeding it.
type field struct {
	unit string
	ref  func(r *WeatherRecord) *Quantity
}

var (
	fieldTemperature    = field{"°C", func(r *WeatherRecord) *Quantity { return &r.Temperature }}
	fieldDewPoint       = field{"°C", func(r *WeatherRecord) *Quantity { return &r.DewPoint }}
	fieldFeelsLike      = field{"°C", func(r *WeatherRecord) *Quantity { return &r.FeelsLike }}
	fieldPressure       = field{"hPa", func(r *WeatherRecord) *Quantity { return &r.Pressure }}
	fieldHumidity       = field{"%", func(r *WeatherRecord) *Quantity { return &r.Humidity }}
	fieldWindDirection  = field{"°", func(r *WeatherRecord) *Quantity { return &r.WindDirection }}
	fieldWindSpeed      = field{"m/s", func(r *WeatherRecord) *Quantity { return &r.WindSpeed }}
	fieldWindU          = field{"m/s", func(r *WeatherRecord) *Quantity { return &r.WindUComponent }}
	fieldWindV          = field{"m/s", func(r *WeatherRecord) *Quantity { return &r.WindVComponent }}
	fieldWindMax        = field{"m/s", func(r *WeatherRecord) *Quantity { return &r.WindMax }}
	fieldWindGust       = field{"m/s", func(r *WeatherRecord) *Quantity { return &r.WindGust }}
	fieldSymbol         = field{"", func(r *WeatherRecord) *Quantity { return &r.Symbol }}
	fieldCloudCover     = field{"%", func(r *WeatherRecord) *Quantity { return &r.CloudCover }}
	fieldCloudLowCover  = field{"%", func(r *WeatherRecord) *Quantity { return &r.CloudLowCover }}
	fieldCloudMidCover  = field{"%", func(r *WeatherRecord) *Quantity { return &r.CloudMidCover }}
	fieldCloudHighCover = field{"%", func(r *WeatherRecord) *Quantity { return &r.CloudHighCover }}
	fieldPrecipitation  = field{"mm/h", func(r *WeatherRecord) *Quantity { return &r.Precipitation }}
	fieldVisibility     = field{"m", func(r *WeatherRecord) *Quantity { return &r.Visibility }}
	fieldRadGlobal      = field{"W/m²", func(r *WeatherRecord) *Quantity { return &r.RadiationGlobal }}
	fieldRadSWAcc       = field{"J/m²", func(r *WeatherRecord) *Quantity { return &r.RadiationShortWaveAcc }}
	fieldRadSWNetAcc    = field{"J/m²", func(r *WeatherRecord) *Quantity { return &r.RadiationShortWaveSurfaceNetAcc }}
	fieldRadLWAcc       = field{"J/m²", func(r *WeatherRecord) *Quantity { return &r.RadiationLongWaveAcc }}
	fieldRadLWNetAcc    = field{"J/m²", func(r *WeatherRecord) *Quantity { return &r.RadiationLongWaveSurfaceNetAcc }}
	fieldRadSWDiffAcc   = field{"J/m²", func(r *WeatherRecord) *Quantity { return &r.RadiationShortWaveDiffSurfaceAcc }}
	fieldGeopHeight     = field{"m", func(r *WeatherRecord) *Quantity { return &r.GeopotentialHeight }}
	fieldLandSeaMask    = field{"", func(r *WeatherRecord) *Quantity { return &r.LandSeaMask }}
)

var allFields = []field{
	fieldTemperature, fieldDewPoint, fieldFeelsLike, fieldPressure, fieldHumidity,
	fieldWindDirection, fieldWindSpeed, fieldWindU, fieldWindV, fieldWindMax, fieldWindGust,
	fieldSymbol, fieldCloudCover, fieldCloudLowCover, fieldCloudMidCover, fieldCloudHighCover,
	fieldPrecipitation, fieldVisibility,
	fieldRadGlobal, fieldRadSWAcc, fieldRadSWNetAcc, fieldRadLWAcc, fieldRadLWNetAcc, fieldRadSWDiffAcc,
	fieldGeopHeight, fieldLandSeaMask,
}

// binding maps a source variable onto a field. A non-zero scale is the
// fixed unit conversion applied to the raw value.
type binding struct {
	variable string
	field    field
	scale    float64
}

// forecastBindings is the vocabulary of the forecast stored queries.
// MaximumWind, RadiationLWAccumulation and RadiationDiffuseAccumulation are
// not served by the current schema and stay absent.
var forecastBindings = []binding{
	{variable: "Temperature", field: fieldTemperature},
	{variable: "DewPoint", field: fieldDewPoint},
	{variable: "Pressure", field: fieldPressure},
	{variable: "Humidity", field: fieldHumidity},
	{variable: "WindDirection", field: fieldWindDirection},
	{variable: "WindSpeedMS", field: fieldWindSpeed},
	{variable: "WindUMS", field: fieldWindU},
	{variable: "WindVMS", field: fieldWindV},
	{variable: "MaximumWind", field: fieldWindMax},
	{variable: "WindGust", field: fieldWindGust},
	{variable: "WeatherSymbol3", field: fieldSymbol},
	{variable: "TotalCloudCover", field: fieldCloudCover},
	{variable: "LowCloudCover", field: fieldCloudLowCover},
	{variable: "MediumCloudCover", field: fieldCloudMidCover},
	{variable: "HighCloudCover", field: fieldCloudHighCover},
	{variable: "Precipitation1h", field: fieldPrecipitation},
	{variable: "Visibility", field: fieldVisibility},
	{variable: "RadiationGlobal", field: fieldRadGlobal},
	{variable: "RadiationGlobalAccumulation", field: fieldRadSWAcc},
	{variable: "RadiationNetSurfaceSWAccumulation", field: fieldRadSWNetAcc},
	{variable: "RadiationLWAccumulation", field: fieldRadLWAcc},
	{variable: "RadiationNetSurfaceLWAccumulation", field: fieldRadLWNetAcc},
	{variable: "RadiationDiffuseAccumulation", field: fieldRadSWDiffAcc},
	{variable: "GeopHeight", field: fieldGeopHeight},
	{variable: "LandSeaMask", field: fieldLandSeaMask},
}

// observationBindings is the vocabulary of the station observation stored
// query. Cloud cover is reported in octas.
var observationBindings = []binding{
	{variable: "t2m", field: fieldTemperature},
	{variable: "td", field: fieldDewPoint},
	{variable: "p_sea", field: fieldPressure},
	{variable: "rh", field: fieldHumidity},
	{variable: "wd_10min", field: fieldWindDirection},
	{variable: "ws_10min", field: fieldWindSpeed},
	{variable: "wg_10min", field: fieldWindGust},
	{variable: "r_1h", field: fieldPrecipitation},
	{variable: "vis", field: fieldVisibility},
	{variable: "n_man", field: fieldCloudCover, scale: 100.0 / 8.0},
}

// ForecastVariables lists the variables requested from forecast queries
func ForecastVariables() []string {
	return variablesOf(forecastBindings, "MaximumWind", "Visibility", "RadiationLWAccumulation", "RadiationDiffuseAccumulation")
}

// ObservationVariables lists the variables requested from observation queries
func ObservationVariables() []string {
	return variablesOf(observationBindings)
}

func variablesOf(bindings []binding, skip ...string) []string {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	names := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !skipped[b.variable] {
			names = append(names, b.variable)
		}
	}
	return names
}

func (k ResponseKind) bindings() []binding {
	if k == KindObservation {
		return observationBindings
	}
	return forecastBindings
}

// DetectKind picks the vocabulary that names more of the schema's
// variables. Ties resolve to forecast.
func DetectKind(schema VariableSchema) ResponseKind {
	score := func(bindings []binding) int {
		known := make(map[string]bool, len(bindings))
		for _, b := range bindings {
			known[b.variable] = true
		}
		n := 0
		for _, name := range schema {
			if known[name] {
				n++
			}
		}
		return n
	}

	if score(observationBindings) > score(forecastBindings) {
		return KindObservation
	}
	return KindForecast
}

// Build maps named values onto a WeatherRecord using the kind's bindings.
// Missing and NaN values leave the field absent with its unit set.
func (k ResponseKind) Build(ts time.Time, vars map[string]float64) WeatherRecord {
	r := WeatherRecord{Time: ts}
	for _, f := range allFields {
		*f.ref(&r) = Quantity{Unit: f.unit}
	}

	for _, b := range k.bindings() {
		v, ok := vars[b.variable]
		if !ok || math.IsNaN(v) {
			continue
		}
		if b.scale != 0 {
			v *= b.scale
		}
		*b.field.ref(&r) = Quantity{Value: &v, Unit: b.field.unit}
	}

	if r.Temperature.Value != nil {
		feels := FeelsLike(*r.Temperature.Value, r.WindSpeed.Value, r.Humidity.Value, r.RadiationGlobal.Value)
		r.FeelsLike.Value = &feels
	}

	return r
}
