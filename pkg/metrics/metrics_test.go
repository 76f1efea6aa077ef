package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "reservation-expiry"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "job_success", "job", job); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "job_failure", "job", job); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestInventoryMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewInventoryMetrics(reg)

	metrics.IncReservationOutcome("created")
	metrics.IncReservationOutcome("created")
	metrics.IncReservationOutcome("insufficient_stock")
	metrics.AddReservationsExpired(3)
	metrics.AddReservationsExpired(0)
	metrics.IncReservedClamped()
	metrics.IncAdjustment(5)
	metrics.IncAdjustment(-2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "inventory_reservation_outcomes_total", "outcome", "created"); err != nil {
		t.Fatalf("fetch created outcome: %v", err)
	} else if got != 2 {
		t.Fatalf("expected created=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "inventory_reservation_outcomes_total", "outcome", "insufficient_stock"); err != nil {
		t.Fatalf("fetch insufficient outcome: %v", err)
	} else if got != 1 {
		t.Fatalf("expected insufficient_stock=1, got %f", got)
	}

	if got := fetchScalarCounter(t, mfs, "inventory_reservations_expired_total"); got != 3 {
		t.Fatalf("expected expired=3, got %f", got)
	}
	if got := fetchScalarCounter(t, mfs, "inventory_reserved_clamped_total"); got != 1 {
		t.Fatalf("expected clamped=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "inventory_adjustments_total", "direction", "increase"); err != nil {
		t.Fatalf("fetch increase: %v", err)
	} else if got != 1 {
		t.Fatalf("expected increase=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "inventory_adjustments_total", "direction", "decrease"); err != nil {
		t.Fatalf("fetch decrease: %v", err)
	} else if got != 1 {
		t.Fatalf("expected decrease=1, got %f", got)
	}
}

func TestNilReceiversAreNoOps(t *testing.T) {
	var cron *CronJobMetrics
	cron.IncSuccess("x")
	cron.IncFailure("x")
	cron.ObserveDuration("x", time.Second)

	var inv *InventoryMetrics
	inv.IncReservationOutcome("created")
	inv.AddReservationsExpired(1)
	inv.IncReservedClamped()
	inv.IncAdjustment(1)
}

func fetchScalarCounter(t *testing.T, mfs []*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		t.Fatalf("metric %q not found", name)
	}
	metrics := mf.GetMetric()
	if len(metrics) != 1 {
		t.Fatalf("metric %q has %d series, want 1", name, len(metrics))
	}
	return metrics[0].GetCounter().GetValue()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
