package db

import (
	"path/filepath"
	"testing"
	"time"

	"centerview/internal/record"
)

// openTestDB opens a fresh store in a temp dir and closes it when
// the test finishes.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "centerview.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// Ptr returns a pointer to v, for optional fixture fields.
func Ptr[T any](v T) *T { return &v }

// seedRoster inserts the standard subjects and machines.
func seedRoster(t *testing.T, d *DB) {
	t.Helper()
	subjects := []record.Subject{
		{ID: "s-001", Name: "Pikachu", TypePrimary: "Electric"},
		{ID: "s-002", Name: "Bulbasaur", TypePrimary: "Grass",
			TypeSecondary: Ptr("Poison")},
	}
	for _, s := range subjects {
		if err := d.UpsertSubject(s); err != nil {
			t.Fatalf("UpsertSubject(%s): %v", s.ID, err)
		}
	}
	machines := []record.Machine{
		{ID: "m-01", Name: "Alpha", Model: "HM-3000", Location: "front desk"},
		{ID: "m-02", Name: "Bravo", Model: "HM-2000", Location: "ward 2"},
	}
	for _, m := range machines {
		if err := d.UpsertMachine(m); err != nil {
			t.Fatalf("UpsertMachine(%s): %v", m.ID, err)
		}
	}
}

// insertCheckin inserts a check-in, applying mutations via fn.
func insertCheckin(
	t *testing.T, d *DB, id string, fn func(c *record.Checkin),
) string {
	t.Helper()
	c := record.Checkin{
		ID:        id,
		SubjectID: "s-001",
		MachineID: "m-01",
		ArrivedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		InitialHP: 12,
		MaxHP:     100,
	}
	if fn != nil {
		fn(&c)
	}
	got, err := d.InsertCheckin(c)
	if err != nil {
		t.Fatalf("InsertCheckin(%s): %v", id, err)
	}
	return got
}

func TestOpenCreatesSchema(t *testing.T) {
	d := openTestDB(t)

	stats, err := d.GetStats(t.Context())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats != (Stats{}) {
		t.Errorf("fresh store stats = %+v, want zeros", stats)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	d := openTestDB(t)
	seedRoster(t, d)
	seedRoster(t, d) // second pass updates in place

	subjects, err := d.ListSubjects(t.Context())
	if err != nil {
		t.Fatalf("ListSubjects: %v", err)
	}
	if len(subjects) != 2 {
		t.Fatalf("got %d subjects, want 2", len(subjects))
	}
	if subjects[1].TypeSecondary == nil ||
		*subjects[1].TypeSecondary != "Poison" {
		t.Errorf("secondary type not preserved: %+v", subjects[1])
	}

	machines, err := d.ListMachines(t.Context())
	if err != nil {
		t.Fatalf("ListMachines: %v", err)
	}
	if len(machines) != 2 {
		t.Fatalf("got %d machines, want 2", len(machines))
	}
}
