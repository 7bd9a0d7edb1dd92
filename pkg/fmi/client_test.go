package fmi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmiweather/pkg/fmi/query"
)

var fixedNow = time.Date(2025, 8, 30, 9, 0, 0, 0, time.UTC)

// fmiServer answers every request with the given status and body and
// records the query strings it saw
type fmiServer struct {
	*httptest.Server
	hits    atomic.Int32
	queries chan url.Values
}

func newFMIServer(t *testing.T, status int, body []byte) *fmiServer {
	t.Helper()
	s := &fmiServer{queries: make(chan url.Values, 16)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.queries <- r.URL.Query()
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestClient(s *fmiServer, metrics *Metrics, opts ...Option) *Client {
	builder := query.NewBuilder(query.WithClock(clockwork.NewFakeClockAt(fixedNow)))
	base := []Option{
		WithBaseURL(s.URL),
		WithHTTPClient(s.Client()),
		WithBuilder(builder),
		WithMetrics(metrics),
	}
	return NewClient(append(base, opts...)...)
}

func TestClient_WeatherByCoordinates(t *testing.T) {
	server := newFMIServer(t, http.StatusOK, readFixture(t, "observations_helsinki.xml"))
	metrics := NewMetricsForTesting()
	client := newTestClient(server, metrics)

	weather, err := client.WeatherByCoordinates(context.Background(), 60.17, 24.94)
	require.NoError(t, err)

	assert.Equal(t, "Helsinki Kaisaniemi", weather.Place)
	assert.Equal(t, 1.2, *weather.Data.Temperature.Value)

	params := <-server.queries
	assert.Equal(t, query.ObservationQuery, params.Get("storedquery_id"))
	assert.Equal(t, "24.44,59.67,25.44,60.67", params.Get("bbox"))
	assert.Equal(t, "2025-08-30T08:00:00Z", params.Get("starttime"))
	assert.Equal(t, "2025-08-30T09:00:00Z", params.Get("endtime"))
	assert.Equal(t, "10", params.Get("timestep"))
	assert.Equal(t, "t2m,td,p_sea,rh,wd_10min,ws_10min,wg_10min,r_1h,vis,n_man", params.Get("parameters"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("observation", "success")))
}

func TestClient_MultiStationWeather(t *testing.T) {
	server := newFMIServer(t, http.StatusOK, readFixture(t, "observations_helsinki.xml"))
	client := newTestClient(server, NewMetricsForTesting())

	weather, err := client.MultiStationWeather(context.Background(), 60.17, 24.94)
	require.NoError(t, err)

	assert.Equal(t, "Helsinki Kaisaniemi", weather.Place)
	assert.Equal(t, 86.0, *weather.Data.Humidity.Value)
}

func TestClient_ForecastByPlace(t *testing.T) {
	server := newFMIServer(t, http.StatusOK, readFixture(t, "forecast_helsinki.xml"))
	client := newTestClient(server, NewMetricsForTesting())

	forecast, err := client.ForecastByPlace(context.Background(), " Helsinki Kaisaniemi ")
	require.NoError(t, err)
	assert.Len(t, forecast.Records, 3)

	params := <-server.queries
	assert.Equal(t, query.ForecastQuery, params.Get("storedquery_id"))
	assert.Equal(t, "HelsinkiKaisaniemi", params.Get("place"))
	assert.Equal(t, "1440", params.Get("timestep"))
	assert.Equal(t, "2025-08-30T09:00:00Z", params.Get("starttime"))
	assert.Equal(t, "2025-09-03T09:00:00Z", params.Get("endtime"))
}

func TestClient_ForecastByCoordinates(t *testing.T) {
	server := newFMIServer(t, http.StatusOK, readFixture(t, "forecast_helsinki.xml"))
	client := newTestClient(server, NewMetricsForTesting())

	_, err := client.ForecastByCoordinates(context.Background(), 60.16952, 24.93545)
	require.NoError(t, err)

	params := <-server.queries
	assert.Equal(t, "60.16952,24.93545", params.Get("latlon"))
	assert.Empty(t, params.Get("place"))
}

func TestClient_Faults(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    []byte
		outcome string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "Unknown_Place",
			status:  http.StatusBadRequest,
			body:    readFixture(t, "exception_no_locations.xml"),
			outcome: "no_data",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoDataAvailable)
			},
		},
		{
			name:    "Invalid_Parameter",
			status:  http.StatusBadRequest,
			body:    readFixture(t, "exception_invalid_parameter.xml"),
			outcome: "client_fault",
			check: func(t *testing.T, err error) {
				var clientErr *ClientError
				require.ErrorAs(t, err, &clientErr)
				assert.Equal(t, "Invalid latitude value 95.0", clientErr.Message)
			},
		},
		{
			name:    "Server_Error",
			status:  http.StatusInternalServerError,
			body:    []byte("Internal Server Error"),
			outcome: "server_fault",
			check: func(t *testing.T, err error) {
				var serverErr *ServerError
				require.ErrorAs(t, err, &serverErr)
				assert.Equal(t, http.StatusInternalServerError, serverErr.StatusCode)
				assert.Equal(t, "Internal Server Error", serverErr.Body)
			},
		},
		{
			name:    "Malformed_Document",
			status:  http.StatusOK,
			body:    []byte("<wfs:FeatureCollection xmlns:wfs=\"http://www.opengis.net/wfs/2.0\"><wfs:member/></wfs:FeatureCollection>"),
			outcome: "success",
			check: func(t *testing.T, err error) {
				var decodeErr *DecodeError
				assert.ErrorAs(t, err, &decodeErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newFMIServer(t, tt.status, tt.body)
			metrics := NewMetricsForTesting()
			client := newTestClient(server, metrics)

			_, err := client.WeatherByPlace(context.Background(), "Nowhere")
			require.Error(t, err)
			tt.check(t, err)

			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("observation", tt.outcome)))
		})
	}
}

func TestClient_DecodeErrorsCounted(t *testing.T) {
	server := newFMIServer(t, http.StatusOK, []byte("<wfs:FeatureCollection xmlns:wfs=\"http://www.opengis.net/wfs/2.0\"><wfs:member/></wfs:FeatureCollection>"))
	metrics := NewMetricsForTesting()
	client := newTestClient(server, metrics)

	_, err := client.ForecastByPlace(context.Background(), "Oulu")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DecodeErrors))
}

func TestClient_InvalidCoordinatesNotSent(t *testing.T) {
	server := newFMIServer(t, http.StatusOK, nil)
	client := newTestClient(server, NewMetricsForTesting())

	_, err := client.WeatherByCoordinates(context.Background(), 95, 25)
	assert.ErrorIs(t, err, query.ErrInvalid)

	_, err = client.ForecastByCoordinates(context.Background(), 60, 200)
	assert.ErrorIs(t, err, query.ErrInvalid)

	assert.Equal(t, int32(0), server.hits.Load())
}

func TestClient_BreakerOpensAfterServerFaults(t *testing.T) {
	server := newFMIServer(t, http.StatusServiceUnavailable, []byte("Service Unavailable"))
	metrics := NewMetricsForTesting()
	client := newTestClient(server, metrics, WithBreaker(BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}))

	for i := 0; i < 2; i++ {
		_, err := client.WeatherByPlace(context.Background(), "Helsinki")
		var serverErr *ServerError
		require.ErrorAs(t, err, &serverErr)
	}

	_, err := client.WeatherByPlace(context.Background(), "Helsinki")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "got %v", err)
	assert.Equal(t, int32(2), server.hits.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BreakerOpen))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("observation", "transport_error")))
}

func TestClient_FetchReturnsRawResponse(t *testing.T) {
	server := newFMIServer(t, http.StatusBadRequest, []byte("bad request"))
	client := newTestClient(server, nil)

	resp, err := client.Fetch(context.Background(), url.Values{"storedquery_id": {query.ForecastQuery}})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad request", string(resp.Body))
	assert.Positive(t, resp.Elapsed)
}

func TestClient_TransportError(t *testing.T) {
	server := newFMIServer(t, http.StatusOK, nil)
	client := newTestClient(server, nil)
	server.Close()

	_, err := client.Fetch(context.Background(), url.Values{})
	assert.Error(t, err)
}
