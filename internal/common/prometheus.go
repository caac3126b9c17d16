package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	TokensMintedTotal          = "tokens_minted_total"
	TradesExecutedTotal        = "trades_executed_total"
	NotificationPublishFailure = "notification_publish_failure"
	AssetsActivatedTotal       = "assets_activated_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		TokensMintedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: TokensMintedTotal,
			Help: "Count of tokens moved out of primary supply",
		}, []string{"source"}),
		TradesExecutedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: TradesExecutedTotal,
			Help: "Count of trade executions",
		}, []string{"side"}),
		NotificationPublishFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: NotificationPublishFailure,
			Help: "Count of notifications that could not be fanned out",
		}, []string{"type"}),
		AssetsActivatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: AssetsActivatedTotal,
			Help: "Count of assets moved to active after their launch date",
		}, []string{}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
	}
)

func IncCounter(name string, labels ...string) {
	if counter, ok := PromCounters[name]; ok {
		counter.WithLabelValues(labels...).Inc()
	}
}

func AddCounter(name string, value float64, labels ...string) {
	if counter, ok := PromCounters[name]; ok {
		counter.WithLabelValues(labels...).Add(value)
	}
}
