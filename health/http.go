package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe timeouts. The quick probes answer load balancers; the detailed
// endpoint tolerates slower checkers.
const (
	probeTimeout    = 5 * time.Second
	detailedTimeout = 10 * time.Second
)

// HealthResponse is the JSON response for the detailed health endpoint.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON response for a single health check.
type CheckResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// statusCode maps a health status onto an HTTP status. Degraded still
// answers 200 so an overloaded but serving cache is not pulled from
// rotation.
func statusCode(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func checkResponse(result Result) CheckResponse {
	resp := CheckResponse{
		Status:   result.Status.String(),
		Message:  result.Message,
		Duration: result.Duration.String(),
		Details:  result.Details,
	}
	if result.Error != nil {
		resp.Error = result.Error.Error()
	}
	return resp
}

// onlyGet rejects every method except GET; health endpoints are read-only.
func onlyGet(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// LivenessHandler returns an HTTP handler for liveness probes. It answers
// OK whenever the process serves requests at all; cache state is a
// readiness concern.
func LivenessHandler() http.HandlerFunc {
	return onlyGet(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// ReadinessHandler returns an HTTP handler for readiness probes. It runs
// every registered cache check and reports the aggregate verdict as plain
// text.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return onlyGet(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		body := "OK"
		switch status {
		case StatusDegraded:
			body = "DEGRADED"
		case StatusUnhealthy:
			body = "UNHEALTHY"
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(statusCode(status))
		_, _ = w.Write([]byte(body))
	})
}

// DetailedHandler returns an HTTP handler with the per-cache breakdown:
// one CheckResponse per registered checker, counters included in Details.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return onlyGet(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), detailedTimeout)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		response := HealthResponse{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, len(results)),
		}
		for name, result := range results {
			response.Checks[name] = checkResponse(result)
		}

		writeJSON(w, statusCode(status), response)
	})
}

// SingleCheckHandler returns an HTTP handler for one named checker, for
// wiring per-cache routes like /health/property-cache.
func SingleCheckHandler(agg *Aggregator, name string) http.HandlerFunc {
	return onlyGet(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		result, err := agg.Check(ctx, name)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": err.Error(),
			})
			return
		}

		writeJSON(w, statusCode(result.Status), checkResponse(result))
	})
}

// StatsHandler returns an HTTP handler exposing raw counters from every
// registered checker that can report them (see InfoChecker), keyed by
// checker name. Unlike the health endpoints it never judges: the response
// is always 200 with whatever counters are available.
func StatsHandler(agg *Aggregator) http.HandlerFunc {
	return onlyGet(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		writeJSON(w, http.StatusOK, agg.Infos(ctx))
	})
}

// RegisterHandlers registers the health endpoints on the given mux:
// /healthz (liveness), /readyz (readiness), /health (detailed),
// /health/stats (raw cache counters).
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
	mux.HandleFunc("/health", DetailedHandler(agg))
	mux.HandleFunc("/health/stats", StatsHandler(agg))
}
