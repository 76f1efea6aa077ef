package enums

import "testing"

func TestParseReservationStatus(t *testing.T) {
	for _, value := range []string{"active", "released", "fulfilled"} {
		status, err := ParseReservationStatus(value)
		if err != nil {
			t.Fatalf("ParseReservationStatus(%q) error = %v", value, err)
		}
		if !status.IsValid() {
			t.Fatalf("ParseReservationStatus(%q) returned invalid status", value)
		}
	}
	if _, err := ParseReservationStatus("pending"); err == nil {
		t.Fatal("ParseReservationStatus(pending) expected error")
	}
}

func TestReservationStatusIsTerminal(t *testing.T) {
	if ReservationStatusActive.IsTerminal() {
		t.Fatal("active must not be terminal")
	}
	if !ReservationStatusReleased.IsTerminal() {
		t.Fatal("released must be terminal")
	}
	if !ReservationStatusFulfilled.IsTerminal() {
		t.Fatal("fulfilled must be terminal")
	}
}

func TestParseReservationSource(t *testing.T) {
	for _, value := range []string{"pos", "svm", "mvm", "system"} {
		source, err := ParseReservationSource(value)
		if err != nil {
			t.Fatalf("ParseReservationSource(%q) error = %v", value, err)
		}
		if !source.IsValid() {
			t.Fatalf("ParseReservationSource(%q) returned invalid source", value)
		}
	}
	if _, err := ParseReservationSource("web"); err == nil {
		t.Fatal("ParseReservationSource(web) expected error")
	}
}

func TestParseOutboxEventType(t *testing.T) {
	eventType, err := ParseOutboxEventType("inventory.reservation.created")
	if err != nil {
		t.Fatalf("ParseOutboxEventType error = %v", err)
	}
	if eventType != EventReservationCreated {
		t.Fatalf("got %q", eventType)
	}
	if _, err := ParseOutboxEventType("inventory.unknown"); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
