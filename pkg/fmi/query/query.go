// Package query builds FMI WFS stored query parameters for weather
// observations and point forecasts.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
)

// Stored query identifiers
const (
	ObservationQuery = "fmi::observations::weather::multipointcoverage"
	ForecastQuery    = "fmi::forecast::edited::weather::scandinavia::point::multipointcoverage"
)

const (
	timeFormat = "2006-01-02T15:04:05Z"

	// bboxMargin is the half width of the observation search box in degrees
	bboxMargin = 0.5

	observationWindow   = time.Hour
	observationTimestep = 10 * time.Minute

	DefaultForecastTimestep = 24 * time.Hour
	DefaultForecastPoints   = 4
)

var validate = validator.New()

// ErrInvalid wraps every request validation failure
var ErrInvalid = errors.New("invalid query")

// Point is a WGS84 coordinate
type Point struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

// BBox represents a geographic bounding box
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// String returns the bounding box as a comma-separated string for API queries
func (b BBox) String() string {
	return fmt.Sprintf("%.2f,%.2f,%.2f,%.2f", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// BBoxAround returns the box of the given half width centered on the point
func BBoxAround(p Point, margin float64) BBox {
	return BBox{
		MinLon: p.Lon - margin,
		MinLat: p.Lat - margin,
		MaxLon: p.Lon + margin,
		MaxLat: p.Lat + margin,
	}
}

// Request describes one stored query. Exactly one of Place, Point or BBox
// selects the location.
type Request struct {
	StoredQuery string        `validate:"required,oneof=fmi::observations::weather::multipointcoverage fmi::forecast::edited::weather::scandinavia::point::multipointcoverage"`
	Place       string        `validate:"required_without_all=Point BBox"`
	StartTime   time.Time     `validate:"required"`
	EndTime     time.Time     `validate:"required,gtfield=StartTime"`
	Timestep    time.Duration `validate:"gte=1m"`
	Parameters  []string      `validate:"required,min=1,dive,required"`

	Point *Point
	BBox  *BBox
}

// Validate checks the request before it is sent
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Values encodes the request as WFS query parameters
func (r Request) Values() url.Values {
	params := url.Values{}
	params.Set("service", "WFS")
	params.Set("version", "2.0.0")
	params.Set("request", "getFeature")
	params.Set("storedquery_id", r.StoredQuery)

	params.Set("starttime", r.StartTime.UTC().Format(timeFormat))
	params.Set("endtime", r.EndTime.UTC().Format(timeFormat))
	params.Set("timestep", strconv.Itoa(int(r.Timestep/time.Minute)))

	switch {
	case r.Place != "":
		params.Set("place", strings.ReplaceAll(strings.TrimSpace(r.Place), " ", ""))
	case r.BBox != nil:
		params.Set("bbox", r.BBox.String())
	case r.Point != nil:
		params.Set("latlon", fmt.Sprintf("%s,%s",
			strconv.FormatFloat(r.Point.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Point.Lon, 'f', -1, 64)))
	}

	params.Set("parameters", strings.Join(r.Parameters, ","))

	return params
}

// Builder creates requests with time windows anchored at the clock's now
type Builder struct {
	clock            clockwork.Clock
	forecastTimestep time.Duration
	forecastPoints   int
}

// Option configures a Builder
type Option func(*Builder)

// WithClock replaces the wall clock
func WithClock(clock clockwork.Clock) Option {
	return func(b *Builder) {
		b.clock = clock
	}
}

// WithForecastSteps sets the forecast step length and number of steps
func WithForecastSteps(timestep time.Duration, points int) Option {
	return func(b *Builder) {
		b.forecastTimestep = timestep
		b.forecastPoints = points
	}
}

// NewBuilder creates a query builder
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		clock:            clockwork.NewRealClock(),
		forecastTimestep: DefaultForecastTimestep,
		forecastPoints:   DefaultForecastPoints,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ObservationByPlace requests the last hour of observations near a place
func (b *Builder) ObservationByPlace(place string, parameters []string) (Request, error) {
	req := b.observation(parameters)
	req.Place = place
	return req, req.Validate()
}

// ObservationAround requests the last hour of observations from every
// station within the search box around the point
func (b *Builder) ObservationAround(lat, lon float64, parameters []string) (Request, error) {
	point := Point{Lat: lat, Lon: lon}
	if err := validate.Struct(point); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	req := b.observation(parameters)
	bbox := BBoxAround(point, bboxMargin)
	req.BBox = &bbox
	return req, req.Validate()
}

// ForecastByPlace requests a point forecast for a place name
func (b *Builder) ForecastByPlace(place string, parameters []string) (Request, error) {
	req := b.forecast(parameters)
	req.Place = place
	return req, req.Validate()
}

// ForecastAt requests a point forecast for a coordinate
func (b *Builder) ForecastAt(lat, lon float64, parameters []string) (Request, error) {
	req := b.forecast(parameters)
	req.Point = &Point{Lat: lat, Lon: lon}
	return req, req.Validate()
}

func (b *Builder) observation(parameters []string) Request {
	end := b.clock.Now().UTC()
	return Request{
		StoredQuery: ObservationQuery,
		StartTime:   end.Add(-observationWindow),
		EndTime:     end,
		Timestep:    observationTimestep,
		Parameters:  parameters,
	}
}

func (b *Builder) forecast(parameters []string) Request {
	start := b.clock.Now().UTC()
	return Request{
		StoredQuery: ForecastQuery,
		StartTime:   start,
		EndTime:     start.Add(b.forecastTimestep * time.Duration(b.forecastPoints)),
		Timestep:    b.forecastTimestep,
		Parameters:  parameters,
	}
}
