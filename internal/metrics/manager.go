// Package metrics exposes the tracker's Prometheus instruments.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace = "musclemap"
	Subsystem = "session"
)

// Manager holds every instrument. A nil *Manager is valid and records nothing.
type Manager struct {
	// counters
	CounterWorkouts        *prometheus.CounterVec
	CounterWorkoutsDeleted prometheus.Counter
	CounterPlansCreated    prometheus.Counter
	CounterPlansSettled    *prometheus.CounterVec
	CounterAchievements    *prometheus.CounterVec
	CounterSaveFailures    prometheus.Counter

	// gauges
	GaugeXP         prometheus.Gauge
	GaugeLevel      prometheus.Gauge
	GaugeStreak     prometheus.Gauge
	GaugeBestStreak prometheus.Gauge
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(Namespace, Subsystem, reg), reg
}

// SetupRegistry returns a registry with the Go runtime and process collectors.
func SetupRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterWorkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts_logged",
			Help:      "The total number of logged workout events",
		}, []string{"source"}),
		CounterWorkoutsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts_deleted",
			Help:      "The total number of undone workout events",
		}),
		CounterPlansCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plans_created",
			Help:      "The total number of created plan commitments",
		}),
		CounterPlansSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plans_settled",
			Help:      "The total number of settled plan commitments",
		}, []string{"outcome"}),
		CounterAchievements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "achievements_unlocked",
			Help:      "The total number of unlocked achievements",
		}, []string{"id"}),
		CounterSaveFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "save_failures",
			Help:      "The total number of failed snapshot saves",
		}),
		GaugeXP: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "xp",
			Help:      "Current experience points",
		}),
		GaugeLevel: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "level",
			Help:      "Current level",
		}),
		GaugeStreak: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "streak_days",
			Help:      "Current streak in days",
		}),
		GaugeBestStreak: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "best_streak_days",
			Help:      "Best streak in days",
		}),
	}
}

func (m *Manager) WorkoutLogged(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CounterWorkouts.WithLabelValues(source).Add(float64(n))
}

func (m *Manager) WorkoutDeleted() {
	if m == nil {
		return
	}
	m.CounterWorkoutsDeleted.Inc()
}

func (m *Manager) PlansCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CounterPlansCreated.Add(float64(n))
}

// PlansSettled counts settlements by outcome: "completed" or "missed".
func (m *Manager) PlansSettled(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CounterPlansSettled.WithLabelValues(outcome).Add(float64(n))
}

func (m *Manager) AchievementUnlocked(id string) {
	if m == nil {
		return
	}
	m.CounterAchievements.WithLabelValues(id).Inc()
}

func (m *Manager) SaveFailed() {
	if m == nil {
		return
	}
	m.CounterSaveFailures.Inc()
}

// SetStats refreshes the gauges.
func (m *Manager) SetStats(xp, level, streak, best int) {
	if m == nil {
		return
	}
	m.GaugeXP.Set(float64(xp))
	m.GaugeLevel.Set(float64(level))
	m.GaugeStreak.Set(float64(streak))
	m.GaugeBestStreak.Set(float64(best))
}

// Server serves /metrics from a registry.
type Server struct {
	srv *http.Server
}

func NewServer(addr string, g prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
