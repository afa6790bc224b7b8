package metrics

import (
	"time"

	"centerview/internal/record"
)

// ts parses a local wall-clock timestamp for fixtures. Timestamps in
// this package are never timezone-converted, so a fixed layout is
// enough.
func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

// activeCheckin builds an in-progress check-in.
func activeCheckin(id, subject, machine, arrived string) record.Checkin {
	return record.Checkin{
		ID:        id,
		SubjectID: subject,
		MachineID: machine,
		ArrivedAt: ts(arrived),
		InitialHP: 20,
		MaxHP:     100,
	}
}

// doneCheckin builds a completed check-in with the given outcome.
func doneCheckin(
	id, subject, machine, arrived, healed string, o record.Outcome,
) record.Checkin {
	healedAt := ts(healed)
	return record.Checkin{
		ID:        id,
		SubjectID: subject,
		MachineID: machine,
		ArrivedAt: ts(arrived),
		HealedAt:  &healedAt,
		Outcome:   &o,
		InitialHP: 20,
		MaxHP:     100,
	}
}

func strPtr(s string) *string { return &s }

var testSubjects = []record.Subject{
	{ID: "s-001", Name: "Pikachu", TypePrimary: "Electric"},
	{ID: "s-002", Name: "Bulbasaur", TypePrimary: "Grass", TypeSecondary: strPtr("Poison")},
	{ID: "s-003", Name: "Charmander", TypePrimary: "Fire"},
	{ID: "s-004", Name: "Squirtle", TypePrimary: "Water"},
}

var testMachines = []record.Machine{
	{ID: "m-01", Name: "Alpha", Model: "HM-3000", Location: "front desk"},
	{ID: "m-02", Name: "Bravo", Model: "HM-3000", Location: "ward 2"},
	{ID: "m-03", Name: "Charlie", Model: "HM-2000", Location: "ward 3"},
}
