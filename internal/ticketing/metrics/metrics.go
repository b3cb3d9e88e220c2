package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Purchases      *prometheus.CounterVec
	Transfers      *prometheus.CounterVec
	TicketsIssued  prometheus.Counter
	ConfirmLatency *prometheus.HistogramVec
	OwnershipCache *prometheus.CounterVec
	DirectorySyncs *prometheus.CounterVec
	Settlements    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Purchases: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stacksevents_purchases_total",
			Help: "Purchase attempts by outcome (confirmed or the error code)",
		}, []string{"outcome"}),
		Transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stacksevents_transfers_total",
			Help: "Transfer attempts by outcome (confirmed or the error code)",
		}, []string{"outcome"}),
		TicketsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "stacksevents_tickets_issued_total",
			Help: "Tickets created after a confirmed purchase",
		}),
		ConfirmLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stacksevents_ledger_confirm_seconds",
			Help:    "Time spent waiting for ledger confirmation",
			Buckets: []float64{0.05, 0.25, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"outcome"}),
		OwnershipCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stacksevents_ownership_cache_lookups_total",
			Help: "Ownership cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		DirectorySyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stacksevents_directory_syncs_total",
			Help: "Directory reconciliations against ledger inventory by outcome",
		}, []string{"outcome"}),
		Settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stacksevents_late_settlements_total",
			Help: "Unsettled transactions resolved by a re-check, by kind and final status",
		}, []string{"kind", "status"}),
	}
}

func (m *Metrics) IncPurchase(outcome string) {
	m.Purchases.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncTransfer(outcome string) {
	m.Transfers.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddTicketsIssued(n int) {
	m.TicketsIssued.Add(float64(n))
}

// ObserveConfirm matches ledger.WithObserver.
func (m *Metrics) ObserveConfirm(outcome string, elapsed time.Duration) {
	m.ConfirmLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) IncCacheLookup(result string) {
	m.OwnershipCache.WithLabelValues(result).Inc()
}

func (m *Metrics) IncSync(outcome string) {
	m.DirectorySyncs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSettlement(kind, status string) {
	m.Settlements.WithLabelValues(kind, status).Inc()
}
