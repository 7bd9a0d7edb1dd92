package weather

import (
	"context"
	"time"

	"fmiweather/pkg/fmi"
)

// Manager defines the interface for weather lookups served over HTTP
type Manager interface {
	// Current returns the latest observed weather for a location
	Current(ctx context.Context, loc Location) (*fmi.Weather, error)

	// Forecast returns the point forecast for a location
	Forecast(ctx context.Context, loc Location) (*fmi.Forecast, error)

	// Stats returns lookup counters since start
	Stats() Stats
}

// Source is the upstream weather provider. *fmi.Client implements it.
type Source interface {
	WeatherByPlace(ctx context.Context, place string) (*fmi.Weather, error)
	WeatherByCoordinates(ctx context.Context, lat, lon float64) (*fmi.Weather, error)
	MultiStationWeather(ctx context.Context, lat, lon float64) (*fmi.Weather, error)
	ForecastByPlace(ctx context.Context, place string) (*fmi.Forecast, error)
	ForecastByCoordinates(ctx context.Context, lat, lon float64) (*fmi.Forecast, error)
}

// Location selects where to look up weather. Place takes precedence over
// coordinates. Multi merges nearby stations for coordinate lookups.
type Location struct {
	Place string
	Lat   *float64
	Lon   *float64
	Multi bool
}

// Stats represents lookup counters
type Stats struct {
	TotalLookups      int       `json:"total_lookups"`
	SuccessfulLookups int       `json:"successful_lookups"`
	NoDataLookups     int       `json:"no_data_lookups"`
	FailedLookups     int       `json:"failed_lookups"`
	LastSuccess       time.Time `json:"last_success"`
	SuccessRate       float64   `json:"success_rate"`
}
