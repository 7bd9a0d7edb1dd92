package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fmiweather/pkg/fmi"
)

// ErrMissingLocation is returned when neither a place nor both coordinates
// are given
var ErrMissingLocation = errors.New("missing location: give place or lat and lon")

// manager implements the weather Manager interface
type manager struct {
	source Source
	logger *slog.Logger
	now    func() time.Time

	stats   Stats
	statsMu sync.RWMutex
}

// NewManager creates a new weather manager instance
func NewManager(source Source, logger *slog.Logger) Manager {
	return &manager{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Current returns the latest observed weather for a location
func (m *manager) Current(ctx context.Context, loc Location) (*fmi.Weather, error) {
	var (
		w   *fmi.Weather
		err error
	)

	switch {
	case loc.Place != "":
		w, err = m.source.WeatherByPlace(ctx, loc.Place)
	case loc.Lat != nil && loc.Lon != nil && loc.Multi:
		w, err = m.source.MultiStationWeather(ctx, *loc.Lat, *loc.Lon)
	case loc.Lat != nil && loc.Lon != nil:
		w, err = m.source.WeatherByCoordinates(ctx, *loc.Lat, *loc.Lon)
	default:
		return nil, ErrMissingLocation
	}

	m.record("current", loc, err)
	if err != nil {
		return nil, fmt.Errorf("current weather: %w", err)
	}
	return w, nil
}

// Forecast returns the point forecast for a location
func (m *manager) Forecast(ctx context.Context, loc Location) (*fmi.Forecast, error) {
	var (
		f   *fmi.Forecast
		err error
	)

	switch {
	case loc.Place != "":
		f, err = m.source.ForecastByPlace(ctx, loc.Place)
	case loc.Lat != nil && loc.Lon != nil:
		f, err = m.source.ForecastByCoordinates(ctx, *loc.Lat, *loc.Lon)
	default:
		return nil, ErrMissingLocation
	}

	m.record("forecast", loc, err)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return f, nil
}

// Stats returns lookup counters since start
func (m *manager) Stats() Stats {
	m.statsMu.RLock()
	defer m.statsMu.RUnlock()

	stats := m.stats
	if stats.TotalLookups > 0 {
		stats.SuccessRate = float64(stats.SuccessfulLookups) / float64(stats.TotalLookups)
	}
	return stats
}

func (m *manager) record(kind string, loc Location, err error) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()

	m.stats.TotalLookups++
	switch {
	case err == nil:
		m.stats.SuccessfulLookups++
		m.stats.LastSuccess = m.now()
	case errors.Is(err, fmi.ErrNoDataAvailable):
		m.stats.NoDataLookups++
		m.logger.Info("No weather data", "lookup", kind, "place", loc.Place)
	default:
		m.stats.FailedLookups++
		m.logger.Warn("Weather lookup failed", "lookup", kind, "place", loc.Place, "error", err)
	}
}
