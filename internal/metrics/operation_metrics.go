package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics содержит метрики операций сервисного слоя.
type OperationMetrics struct {
	// Счётчик завершённых операций с исходом.
	opTotal *prometheus.CounterVec
	// Гистограмма времени выполнения операций.
	opDuration *prometheus.HistogramVec
}

// NewOperationMetrics создаёт метрики, зарегистрированные в дефолтном реестре.
func NewOperationMetrics() *OperationMetrics {
	return newOperationMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOperationMetricsWithRegisterer(registerer prometheus.Registerer) *OperationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OperationMetrics{
		opTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "catalog_operations_total",
			Help: "Total number of service operations by outcome",
		}, []string{"component", "op", "outcome"}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "catalog_operation_duration_seconds",
			Help:    "Duration of service operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"component", "op"}),
	}
}

// Observe фиксирует завершение операции: исход и длительность.
func (m *OperationMetrics) Observe(component, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.opTotal.WithLabelValues(component, op, outcome).Inc()
	m.opDuration.WithLabelValues(component, op).Observe(time.Since(start).Seconds())
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
