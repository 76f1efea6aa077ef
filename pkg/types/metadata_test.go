package types

import "testing"

func TestMetadataValueNil(t *testing.T) {
	var m Metadata
	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if string(v.([]byte)) != "{}" {
		t.Fatalf("Value() = %s, want {}", v)
	}
}

func TestMetadataScanRoundTrip(t *testing.T) {
	src := Metadata{"sku_group": "apparel", "reorder_point": float64(12)}
	raw, err := src.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var dst Metadata
	if err := dst.Scan(raw); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if dst["sku_group"] != "apparel" {
		t.Fatalf("sku_group = %v", dst["sku_group"])
	}
	if dst["reorder_point"] != float64(12) {
		t.Fatalf("reorder_point = %v", dst["reorder_point"])
	}
}

func TestMetadataScanNilAndString(t *testing.T) {
	var m Metadata
	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if m == nil {
		t.Fatal("Scan(nil) left metadata nil")
	}

	if err := m.Scan(`{"a":"b"}`); err != nil {
		t.Fatalf("Scan(string) error = %v", err)
	}
	if m["a"] != "b" {
		t.Fatalf("a = %v", m["a"])
	}

	if err := m.Scan(42); err == nil {
		t.Fatal("Scan(int) expected error")
	}
}
