package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ConnectAttempts *prometheus.CounterVec
	Disconnects     prometheus.Counter
	Restores        *prometheus.CounterVec
	Connected       prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConnectAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stacksevents_wallet_connect_total",
			Help: "Wallet connect attempts by outcome (connected or the error code)",
		}, []string{"outcome"}),
		Disconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "stacksevents_wallet_disconnect_total",
			Help: "Wallet disconnects that ended a connected session",
		}),
		Restores: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stacksevents_wallet_restore_total",
			Help: "Session restore attempts by outcome",
		}, []string{"outcome"}),
		Connected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stacksevents_wallet_connected",
			Help: "1 while a wallet is connected",
		}),
	}
}

func (m *Metrics) IncConnect(outcome string) {
	m.ConnectAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRestore(outcome string) {
	m.Restores.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetConnected(connected bool) {
	if connected {
		m.Connected.Set(1)
		return
	}
	m.Connected.Set(0)
}
