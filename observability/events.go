package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"watch2give/core/events"
)

type eventMetrics struct {
	emitted *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking published ledger events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "watch2give",
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Count of committed ledger events segmented by type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(eventRegistry.emitted)
	})
	return eventRegistry
}

// Record increments the counter for the supplied event type.
func (m *eventMetrics) Record(eventType string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(eventType)
	if normalized == "" {
		normalized = "unknown"
	}
	m.emitted.WithLabelValues(normalized).Inc()
}

// Emitter returns an events.Emitter that counts every event it sees.
func (m *eventMetrics) Emitter() events.Emitter {
	return countingEmitter{m: m}
}

type countingEmitter struct {
	m *eventMetrics
}

func (c countingEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	c.m.Record(evt.EventType())
}
