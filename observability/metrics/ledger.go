package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks ledger state machine activity.
type LedgerMetrics struct {
	saturations *prometheus.CounterVec
	tokens      *prometheus.CounterVec
	donations   prometheus.Counter
	proofs      prometheus.Counter
	staked      prometheus.Counter
	aborts      *prometheus.CounterVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the lazily registered ledger metrics.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			saturations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "watch2give",
				Subsystem: "ledger",
				Name:      "saturation_total",
				Help:      "Credits that hit the arithmetic ceiling and were clamped, by operation.",
			}, []string{"op"}),
			tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "watch2give",
				Subsystem: "ledger",
				Name:      "ad_tokens_total",
				Help:      "Ad tokens moved by the ledger, by direction (minted, burned, donated).",
			}, []string{"direction"}),
			donations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "watch2give",
				Subsystem: "ledger",
				Name:      "donations_total",
				Help:      "Successful donations.",
			}),
			proofs: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "watch2give",
				Subsystem: "ledger",
				Name:      "proofs_submitted_total",
				Help:      "Content proofs recorded.",
			}),
			staked: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "watch2give",
				Subsystem: "ledger",
				Name:      "stake_calls_total",
				Help:      "Stake credits applied, including zero-value calls.",
			}),
			aborts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "watch2give",
				Subsystem: "ledger",
				Name:      "aborts_total",
				Help:      "Calls aborted on a failed precondition, by operation.",
			}, []string{"op"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.saturations,
			ledgerRegistry.tokens,
			ledgerRegistry.donations,
			ledgerRegistry.proofs,
			ledgerRegistry.staked,
			ledgerRegistry.aborts,
		)
	})
	return ledgerRegistry
}

func (m *LedgerMetrics) RecordSaturation(op string) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	m.saturations.WithLabelValues(op).Inc()
}

func (m *LedgerMetrics) RecordTokens(direction string, amount uint32) {
	if m == nil {
		return
	}
	m.tokens.WithLabelValues(direction).Add(float64(amount))
}

func (m *LedgerMetrics) RecordDonation(amount uint32) {
	if m == nil {
		return
	}
	m.donations.Inc()
	m.tokens.WithLabelValues("donated").Add(float64(amount))
}

func (m *LedgerMetrics) RecordProof() {
	if m == nil {
		return
	}
	m.proofs.Inc()
}

func (m *LedgerMetrics) RecordStake() {
	if m == nil {
		return
	}
	m.staked.Inc()
}

func (m *LedgerMetrics) RecordAbort(op string) {
	if m == nil {
		return
	}
	m.aborts.WithLabelValues(op).Inc()
}
