package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPostgresDrivers(t *testing.T) {
	pgxDup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_inventory_items_tenant_sku"}
	pqDup := &pq.Error{Code: "23505", Constraint: "idx_inventory_items_tenant_sku"}

	cases := map[string]struct {
		err        error
		constraint string
		want       bool
	}{
		"pgx matching constraint":  {pgxDup, "idx_inventory_items_tenant_sku", true},
		"pgx any constraint":       {pgxDup, "", true},
		"pgx different constraint": {pgxDup, "idx_reservations_tenant", false},
		"pgx other sqlstate":       {&pgconn.PgError{Code: "23503"}, "", false},
		"pq matching constraint":   {pqDup, "idx_inventory_items_tenant_sku", true},
		"pq different constraint":  {pqDup, "idx_reservations_tenant", false},
		"wrapped pgx error":        {fmt.Errorf("creating item: %w", pgxDup), "idx_inventory_items_tenant_sku", true},
	}
	for name, tc := range cases {
		if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
			t.Fatalf("%s: got %v, want %v", name, got, tc.want)
		}
	}
}

func TestIsUniqueViolationMessageFallback(t *testing.T) {
	// sqlite reports the column list, never the index name
	sqliteDup := errors.New("UNIQUE constraint failed: inventory_items.tenant_id, inventory_items.sku")

	if !IsUniqueViolation(sqliteDup, "idx_inventory_items_tenant_sku") {
		t.Fatal("sqlite duplicate must match even with a constraint name given")
	}
	if !IsUniqueViolation(sqliteDup, "") {
		t.Fatal("sqlite duplicate must match without a constraint name")
	}
	if !IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "idx_inventory_items_tenant_sku"`), "idx_inventory_items_tenant_sku") {
		t.Fatal("textual postgres duplicate must match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "idx_inventory_items_tenant_sku") {
		t.Fatal("unrelated error must not match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not match")
	}
}
