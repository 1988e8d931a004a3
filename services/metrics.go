package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	gasFetcher "github.com/malusev998/gas-fetcher"
)

const metricsNamespace = "gas_fetcher"

// Metrics records cycle outcomes. A nil *Metrics records nothing.
type Metrics struct {
	cycles           *prometheus.CounterVec
	endpointFailures *prometheus.CounterVec
	fee              *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cycles_total",
			Help:      "Completed fetch cycles by result.",
		}, []string{"result"}),
		endpointFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "endpoint_failures_total",
			Help:      "Endpoint attempts that produced no usable fee.",
		}, []string{"endpoint"}),
		fee: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "max_fee_per_gas",
			Help:      "Latest max fee per gas in the display unit.",
		}, []string{"unit"}),
	}

	for _, c := range []prometheus.Collector{m.cycles, m.endpointFailures, m.fee} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) cycleReady(quote gasFetcher.Quote) {
	if m == nil {
		return
	}

	m.cycles.WithLabelValues(gasFetcher.StatusReady.String()).Inc()

	value, _ := decimal.NewFromBigInt(quote.Raw, -quote.Unit.Decimals()).Float64()
	m.fee.WithLabelValues(string(quote.Unit)).Set(value)
}

func (m *Metrics) cycleFailed() {
	if m == nil {
		return
	}

	m.cycles.WithLabelValues(gasFetcher.StatusFailed.String()).Inc()
}

func (m *Metrics) endpointFailed(endpoint string) {
	if m == nil {
		return
	}

	m.endpointFailures.WithLabelValues(endpoint).Inc()
}
