package fmi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"fmiweather/pkg/fmi/query"
)

// DefaultBaseURL is the FMI open data WFS endpoint
const DefaultBaseURL = "https://opendata.fmi.fi/wfs"

// HTTPClient interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is a raw upstream answer before classification
type Response struct {
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
}

// BreakerSettings controls when the client stops calling FMI after
// consecutive server faults
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

var defaultBreaker = BreakerSettings{
	MaxFailures: 5,
	OpenTimeout: 30 * time.Second,
}

// errUpstreamFault marks 5xx responses as failures for the circuit breaker.
// The response itself is still returned and classified.
var errUpstreamFault = errors.New("fmi: upstream server fault")

// Client provides access to FMI Open Data API
type Client struct {
	baseURL    string
	httpClient HTTPClient
	builder    *query.Builder
	breaker    *gobreaker.CircuitBreaker
	metrics    *Metrics
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient HTTPClient
	builder    *query.Builder
	breaker    BreakerSettings
	metrics    *Metrics
	logger     *slog.Logger
}

// WithBaseURL overrides the WFS endpoint
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(o *clientOptions) { o.httpClient = httpClient }
}

// WithBuilder replaces the query builder
func WithBuilder(builder *query.Builder) Option {
	return func(o *clientOptions) { o.builder = builder }
}

// WithBreaker overrides the circuit breaker thresholds
func WithBreaker(settings BreakerSettings) Option {
	return func(o *clientOptions) { o.breaker = settings }
}

// WithMetrics enables request metrics
func WithMetrics(metrics *Metrics) Option {
	return func(o *clientOptions) { o.metrics = metrics }
}

// WithLogger sets the logger. Requests are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// NewClient creates a new FMI API client
func NewClient(opts ...Option) *Client {
	o := clientOptions{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker:    defaultBreaker,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.builder == nil {
		o.builder = query.NewBuilder()
	}

	c := &Client{
		baseURL:    o.baseURL,
		httpClient: o.httpClient,
		builder:    o.builder,
		metrics:    o.metrics,
		logger:     o.logger,
	}

	maxFailures := o.breaker.MaxFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "fmi",
		Timeout: o.breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			if c.metrics != nil {
				if to == gobreaker.StateOpen {
					c.metrics.BreakerOpen.Set(1)
				} else {
					c.metrics.BreakerOpen.Set(0)
				}
			}
		},
	})

	return c
}

// Fetch sends one stored query and returns the raw status and body. Only
// transport failures and an open circuit breaker are errors; fault
// responses are returned for classification.
func (c *Client) Fetch(ctx context.Context, params url.Values) (*Response, error) {
	requestID := uuid.NewString()
	requestURL := c.baseURL + "?" + params.Encode()
	label := queryLabel(params)

	c.logger.Debug("FMI request", "request_id", requestID, "url", requestURL)

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to make request to FMI API: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read FMI response: %w", err)
		}

		r := &Response{StatusCode: resp.StatusCode, Body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return r, errUpstreamFault
		}
		return r, nil
	})
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.RequestDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	}

	resp, ok := result.(*Response)
	if err != nil && !errors.Is(err, errUpstreamFault) {
		c.logger.Warn("FMI request failed", "request_id", requestID, "elapsed_ms", elapsed.Milliseconds(), "error", err)
		return nil, fmt.Errorf("fmi: %w", err)
	}
	if !ok {
		return nil, errors.New("fmi: no response")
	}
	resp.Elapsed = elapsed

	c.logger.Debug("FMI response", "request_id", requestID, "status", resp.StatusCode,
		"elapsed_ms", elapsed.Milliseconds(), "bytes", len(resp.Body))

	return resp, nil
}

// execute fetches a request and classifies the answer. Only successful
// bodies are returned.
func (c *Client) execute(ctx context.Context, req query.Request) ([]byte, error) {
	params := req.Values()
	label := queryLabel(params)

	resp, err := c.Fetch(ctx, params)
	if err != nil {
		c.countRequest(label, "transport_error")
		return nil, err
	}

	outcome := Classify(resp.StatusCode, resp.Body)
	c.countRequest(label, outcome.Kind.String())

	if outcome.Kind != OutcomeSuccess {
		c.logger.Warn("FMI request not successful", "query", label, "status", resp.StatusCode,
			"outcome", outcome.Kind.String(), "message", outcome.Message)
		return nil, outcome.Err()
	}

	return resp.Body, nil
}

// WeatherByPlace returns the latest observation of the first station FMI
// associates with the place name
func (c *Client) WeatherByPlace(ctx context.Context, place string) (*Weather, error) {
	req, err := c.builder.ObservationByPlace(place, ObservationVariables())
	if err != nil {
		return nil, err
	}

	body, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.decoded(DecodeWeather(body))
}

// WeatherByCoordinates returns the latest observation of the station
// closest to the coordinates
func (c *Client) WeatherByCoordinates(ctx context.Context, lat, lon float64) (*Weather, error) {
	req, err := c.builder.ObservationAround(lat, lon, ObservationVariables())
	if err != nil {
		return nil, err
	}

	body, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.decoded(DecodeNearestWeather(body, lat, lon))
}

// MultiStationWeather returns the closest station's latest observation with
// missing variables filled in from stations farther away
func (c *Client) MultiStationWeather(ctx context.Context, lat, lon float64) (*Weather, error) {
	req, err := c.builder.ObservationAround(lat, lon, ObservationVariables())
	if err != nil {
		return nil, err
	}

	body, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.decoded(DecodeMultiStationWeather(body, lat, lon))
}

// ForecastByPlace returns the point forecast for a place name
func (c *Client) ForecastByPlace(ctx context.Context, place string) (*Forecast, error) {
	req, err := c.builder.ForecastByPlace(place, ForecastVariables())
	if err != nil {
		return nil, err
	}

	body, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.decodedForecast(DecodeForecast(body))
}

// ForecastByCoordinates returns the point forecast for the coordinates
func (c *Client) ForecastByCoordinates(ctx context.Context, lat, lon float64) (*Forecast, error) {
	req, err := c.builder.ForecastAt(lat, lon, ForecastVariables())
	if err != nil {
		return nil, err
	}

	body, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.decodedForecast(DecodeForecast(body))
}

func (c *Client) decoded(weather *Weather, err error) (*Weather, error) {
	c.countDecodeError(err)
	return weather, err
}

func (c *Client) decodedForecast(forecast *Forecast, err error) (*Forecast, error) {
	c.countDecodeError(err)
	return forecast, err
}

func (c *Client) countDecodeError(err error) {
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		return
	}
	c.logger.Error("FMI response did not decode", "error", err)
	if c.metrics != nil {
		c.metrics.DecodeErrors.Inc()
	}
}

func (c *Client) countRequest(label, outcome string) {
	if c.metrics != nil {
		c.metrics.Requests.WithLabelValues(label, outcome).Inc()
	}
}

func queryLabel(params url.Values) string {
	switch params.Get("storedquery_id") {
	case query.ObservationQuery:
		return "observation"
	case query.ForecastQuery:
		return "forecast"
	default:
		return "other"
	}
}
