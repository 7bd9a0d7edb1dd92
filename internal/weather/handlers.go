package weather

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fmiweather/pkg/fmi"
	"fmiweather/pkg/fmi/query"
)

// RegisterHandlers registers the weather HTTP handlers
func RegisterHandlers(mux *http.ServeMux, mgr Manager, logger *slog.Logger) {
	mux.HandleFunc("GET /api/weather", handleWeather(mgr, logger))
	mux.HandleFunc("GET /api/forecast", handleForecast(mgr, logger))
	mux.HandleFunc("GET /api/stats", handleStats(mgr, logger))
}

// errorResponse is the JSON body of failed lookups
type errorResponse struct {
	Error string `json:"error"`
}

func handleWeather(mgr Manager, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := parseLocation(r)
		if err != nil {
			writeJSON(w, logger, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		result, err := mgr.Current(r.Context(), loc)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, result)
	}
}

func handleForecast(mgr Manager, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := parseLocation(r)
		if err != nil {
			writeJSON(w, logger, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		result, err := mgr.Forecast(r.Context(), loc)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, result)
	}
}

func handleStats(mgr Manager, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, mgr.Stats())
	}
}

// parseLocation reads place, or lat and lon, from the query string
func parseLocation(r *http.Request) (Location, error) {
	q := r.URL.Query()
	loc := Location{
		Place: strings.TrimSpace(q.Get("place")),
		Multi: q.Get("multi") == "true",
	}
	if loc.Place != "" {
		return loc, nil
	}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" || lonStr == "" {
		return Location{}, ErrMissingLocation
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Location{}, errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return Location{}, errors.New("invalid lon")
	}

	loc.Lat, loc.Lon = &lat, &lon
	return loc, nil
}

// statusFor maps the lookup error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var (
		clientErr *fmi.ClientError
		serverErr *fmi.ServerError
		decodeErr *fmi.DecodeError
	)

	switch {
	case errors.Is(err, fmi.ErrNoDataAvailable):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingLocation), errors.Is(err, query.ErrInvalid), errors.As(err, &clientErr):
		return http.StatusBadRequest
	case errors.As(err, &serverErr), errors.As(err, &decodeErr):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	writeJSON(w, logger, statusFor(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding response", "error", err)
	}
}
