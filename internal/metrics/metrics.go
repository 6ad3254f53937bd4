// Package metrics provides Prometheus instrumentation for the house-edge simulator.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

var (
	// RoundsTotal counts settled rounds.
	RoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "house_edge_sim_rounds_total",
		Help: "Total number of settled rounds",
	})

	// RoundFailuresTotal counts aborted rounds, partitioned by reason.
	RoundFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "house_edge_sim_round_failures_total",
		Help: "Total number of aborted rounds",
	}, []string{"reason"})

	// RoundDuration tracks how long a round takes to run and settle.
	RoundDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "house_edge_sim_round_duration_seconds",
		Help:    "Round execution time in seconds",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	})

	// CurrentRound is the number of completed rounds in the active session.
	CurrentRound = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "house_edge_sim_current_round",
		Help: "Completed rounds in the active session",
	})

	// WagersTotal counts placed wagers, partitioned by profile.
	WagersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "house_edge_sim_wagers_total",
		Help: "Total number of wagers placed",
	}, []string{"profile"})

	// StakeVolume tracks money staked, partitioned by profile.
	StakeVolume = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "house_edge_sim_stake_volume_total",
		Help: "Cumulative stake volume",
	}, []string{"profile"})

	// PayoutVolume tracks money paid to winners, partitioned by profile.
	PayoutVolume = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "house_edge_sim_payout_volume_total",
		Help: "Cumulative payout volume",
	}, []string{"profile"})

	// HouseGGR is the cumulative gross gaming revenue of the active session.
	HouseGGR = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "house_edge_sim_house_ggr",
		Help: "Cumulative house gross gaming revenue of the active session",
	})

	// ActiveAgents tracks agents with a positive balance, partitioned by profile.
	ActiveAgents = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "house_edge_sim_active_agents",
		Help: "Agents with a positive balance after the last round",
	}, []string{"profile"})

	// ResetsTotal counts simulation resets.
	ResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "house_edge_sim_resets_total",
		Help: "Total number of simulation resets",
	})

	// CommandsTotal counts consumed Kafka commands by type and status.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "house_edge_sim_commands_total",
		Help: "Total Kafka commands processed",
	}, []string{"type", "status"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "house_edge_sim_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "house_edge_sim_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveRound records a settled round.
func ObserveRound(result *models.RoundResult, duration time.Duration) {
	RoundsTotal.Inc()
	RoundDuration.Observe(duration.Seconds())
	CurrentRound.Set(float64(result.Round))
	HouseGGR.Set(result.Ledger.Overall.GGR().InexactFloat64())

	stats := result.Statistics
	for _, p := range models.Profiles() {
		label := p.String()
		totals := stats.ByProfile[p]
		WagersTotal.WithLabelValues(label).Add(float64(totals.WagerCount))
		StakeVolume.WithLabelValues(label).Add(totals.StakeVolume.InexactFloat64())
		PayoutVolume.WithLabelValues(label).Add(totals.PayoutVolume.InexactFloat64())
		ActiveAgents.WithLabelValues(label).Set(float64(stats.ActiveByProfile[p]))
	}
}

// ObserveRoundFailure records an aborted round.
func ObserveRoundFailure(reason string) {
	RoundFailuresTotal.WithLabelValues(reason).Inc()
}

// ObserveReset zeroes the per-session gauges.
func ObserveReset() {
	ResetsTotal.Inc()
	CurrentRound.Set(0)
	HouseGGR.Set(0)
	ActiveAgents.Reset()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// The mux fills in the matched pattern; raw paths carry round and agent ids.
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
