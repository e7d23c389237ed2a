package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOperationMetrics_Observe(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOperationMetricsWithRegisterer(registry)

	start := time.Now()
	m.Observe("orders", "place", start, nil)
	m.Observe("orders", "place", start, nil)
	m.Observe("orders", "place", start, errors.New("boom"))

	ok := testutil.ToFloat64(m.opTotal.WithLabelValues("orders", "place", "ok"))
	if ok != 2 {
		t.Errorf("expected 2 ok operations, got %v", ok)
	}
	failed := testutil.ToFloat64(m.opTotal.WithLabelValues("orders", "place", "error"))
	if failed != 1 {
		t.Errorf("expected 1 failed operation, got %v", failed)
	}
}

func TestOperationMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newOperationMetricsWithRegisterer(registry)
	// Повторная регистрация должна вернуть уже существующие коллекторы.
	second := newOperationMetricsWithRegisterer(registry)

	first.Observe("sales", "report", time.Now(), nil)
	second.Observe("sales", "report", time.Now(), nil)

	total := testutil.ToFloat64(first.opTotal.WithLabelValues("sales", "report", "ok"))
	if total != 2 {
		t.Errorf("expected shared collector to count 2, got %v", total)
	}
}
