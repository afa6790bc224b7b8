// Package fixture loads YAML roster files (subjects and machines)
// and can generate synthetic check-in history from them for demos
// and local development.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"centerview/internal/db"
	"centerview/internal/record"
)

// Roster is the parsed contents of a fixture file.
type Roster struct {
	Subjects []Subject `yaml:"subjects"`
	Machines []Machine `yaml:"machines"`
}

type Subject struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	TypePrimary   string `yaml:"type_primary"`
	TypeSecondary string `yaml:"type_secondary"`
}

type Machine struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Model    string `yaml:"model"`
	Location string `yaml:"location"`
}

// Load reads and validates a roster file.
func Load(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("reading fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates roster YAML.
func Parse(data []byte) (Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("parsing fixture: %w", err)
	}
	if err := r.validate(); err != nil {
		return Roster{}, err
	}
	return r, nil
}

func (r Roster) validate() error {
	if len(r.Subjects) == 0 {
		return fmt.Errorf("fixture has no subjects")
	}
	if len(r.Machines) == 0 {
		return fmt.Errorf("fixture has no machines")
	}
	for i, s := range r.Subjects {
		if s.ID == "" || s.Name == "" || s.TypePrimary == "" {
			return fmt.Errorf(
				"subject %d: id, name, and type_primary are required", i,
			)
		}
	}
	for i, m := range r.Machines {
		if m.ID == "" || m.Name == "" {
			return fmt.Errorf("machine %d: id and name are required", i)
		}
	}
	return nil
}

// Apply upserts the roster rows into the store.
func (r Roster) Apply(d *db.DB) error {
	for _, s := range r.Subjects {
		sub := record.Subject{
			ID:          s.ID,
			Name:        s.Name,
			TypePrimary: s.TypePrimary,
		}
		if s.TypeSecondary != "" {
			v := s.TypeSecondary
			sub.TypeSecondary = &v
		}
		if err := d.UpsertSubject(sub); err != nil {
			return err
		}
	}
	for _, m := range r.Machines {
		err := d.UpsertMachine(record.Machine{
			ID:       m.ID,
			Name:     m.Name,
			Model:    m.Model,
			Location: m.Location,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
