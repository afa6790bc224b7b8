// Package record defines the row types shared by the store and the
// metrics core. The metrics engine operates on these snapshots and
// never touches the database directly.
package record

import "time"

// Outcome is the terminal state of a completed check-in.
type Outcome string

const (
	OutcomeSuccessful Outcome = "successful"
	OutcomeFailed     Outcome = "failed"
)

// Valid reports whether o is a recognized terminal outcome.
func (o Outcome) Valid() bool {
	return o == OutcomeSuccessful || o == OutcomeFailed
}

// Checkin is one treatment episode for a subject at a machine.
// HealedAt and Outcome are nil while the check-in is active.
type Checkin struct {
	ID        string     `json:"id"`
	SubjectID string     `json:"subject_id"`
	MachineID string     `json:"machine_id"`
	ArrivedAt time.Time  `json:"arrived_at"`
	HealedAt  *time.Time `json:"healed_at,omitempty"`
	Outcome   *Outcome   `json:"outcome,omitempty"`
	InitialHP int        `json:"initial_hp"`
	MaxHP     int        `json:"max_hp"`
}

// Active reports whether the check-in has no completion timestamp.
func (c Checkin) Active() bool {
	return c.HealedAt == nil
}

// Completed reports whether the check-in finished with the given
// outcome.
func (c Checkin) Completed(o Outcome) bool {
	return c.HealedAt != nil && c.Outcome != nil && *c.Outcome == o
}

// HealDuration returns the treatment duration and true for completed
// check-ins, or zero and false while active.
func (c Checkin) HealDuration() (time.Duration, bool) {
	if c.HealedAt == nil {
		return 0, false
	}
	return c.HealedAt.Sub(c.ArrivedAt), true
}

// Subject is a Pokémon known to the center.
type Subject struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TypePrimary   string  `json:"type_primary"`
	TypeSecondary *string `json:"type_secondary,omitempty"`
}

// Machine is one healing machine in the facility.
type Machine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Model    string `json:"model"`
	Location string `json:"location"`
}
