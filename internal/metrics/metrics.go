// Package metrics exports QuestLog's Prometheus collectors.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"questlog/internal/engine"
)

const namespace = "questlog"

// Metrics records quest completions and HTTP traffic on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	questsCompleted prometheus.Counter
	repeatCompletes prometheus.Counter
	xpAwarded       prometheus.Counter
	levelUps        prometheus.Counter
	themeUnlocks    *prometheus.CounterVec
	heroLevel       prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		questsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quests_completed_total",
			Help:      "Quests completed with an XP award.",
		}),
		repeatCompletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quest_repeat_completions_total",
			Help:      "Completion requests for quests that were already completed.",
		}),
		xpAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "Total XP awarded.",
		}),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_ups_total",
			Help:      "Completions that raised the hero's level.",
		}),
		themeUnlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_unlocks_total",
			Help:      "Themes unlocked, by theme.",
		}, []string{"theme"}),
		heroLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hero_level",
			Help:      "Hero level after the latest completion.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.questsCompleted, m.repeatCompletes, m.xpAwarded, m.levelUps,
		m.themeUnlocks, m.heroLevel, m.requestDuration,
	}
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// RecordCompletion implements engine.Recorder.
func (m *Metrics) RecordCompletion(res *engine.CompleteResult) {
	if m == nil || res == nil {
		return
	}
	if res.AlreadyCompleted {
		m.repeatCompletes.Inc()
		return
	}
	m.questsCompleted.Inc()
	m.xpAwarded.Add(float64(res.XPAwarded))
	if res.LevelUp {
		m.levelUps.Inc()
	}
	for _, t := range res.NewThemes {
		m.themeUnlocks.WithLabelValues(string(t)).Inc()
	}
	m.heroLevel.Set(float64(res.LevelAfter))
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

var _ engine.Recorder = (*Metrics)(nil)
