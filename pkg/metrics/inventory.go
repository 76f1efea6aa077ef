package metrics

import "github.com/prometheus/client_golang/prometheus"

// InventoryMetrics tracks reservation outcomes and ledger anomalies.
type InventoryMetrics struct {
	reservationOutcomes *prometheus.CounterVec
	reservationsExpired prometheus.Counter
	reservedClamped     prometheus.Counter
	adjustments         *prometheus.CounterVec
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reservation_outcomes_total",
		Help: "Reservation attempts by terminal outcome.",
	}, []string{"outcome"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_expired_total",
		Help: "Active reservations released by the expiry sweep.",
	})
	clamped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reserved_clamped_total",
		Help: "Times settling a reservation would have driven quantity_reserved negative.",
	})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_adjustments_total",
		Help: "Stock adjustments by direction.",
	}, []string{"direction"})
	reg.MustRegister(outcomes, expired, clamped, adjustments)
	return &InventoryMetrics{
		reservationOutcomes: outcomes,
		reservationsExpired: expired,
		reservedClamped:     clamped,
		adjustments:         adjustments,
	}
}

// IncReservationOutcome increments the counter for a reservation outcome
// ("created", "released", "fulfilled", "insufficient_stock").
func (m *InventoryMetrics) IncReservationOutcome(outcome string) {
	if m == nil || m.reservationOutcomes == nil {
		return
	}
	m.reservationOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddReservationsExpired records how many reservations one sweep released.
func (m *InventoryMetrics) AddReservationsExpired(count int) {
	if m == nil || m.reservationsExpired == nil || count <= 0 {
		return
	}
	m.reservationsExpired.Add(float64(count))
}

// IncReservedClamped records a settle that hit the reserved-count floor.
// A nonzero value means the ledger drifted and deserves investigation.
func (m *InventoryMetrics) IncReservedClamped() {
	if m == nil || m.reservedClamped == nil {
		return
	}
	m.reservedClamped.Inc()
}

// IncAdjustment records a stock adjustment by direction ("increase", "decrease", "zero").
func (m *InventoryMetrics) IncAdjustment(delta int) {
	if m == nil || m.adjustments == nil {
		return
	}
	direction := "zero"
	switch {
	case delta > 0:
		direction = "increase"
	case delta < 0:
		direction = "decrease"
	}
	m.adjustments.WithLabelValues(direction).Inc()
}
