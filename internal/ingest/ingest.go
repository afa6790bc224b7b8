// Package ingest loads roster rows and check-in events from JSONL
// export files into the record store.
//
// Each line is a self-describing event:
//
//	{"kind": "subject", "id": "s-001", "name": "Pikachu", "type_primary": "Electric"}
//	{"kind": "machine", "id": "m-01", "name": "Alpha", "model": "HM-3", "location": "Lobby"}
//	{"kind": "checkin", "id": "...", "subject_id": "s-001", "machine_id": "m-01",
//	 "arrived_at": "2025-06-01T09:00:00Z", "healed_at": "...", "outcome": "successful",
//	 "initial_hp": 20, "max_hp": 100}
//
// Malformed lines are counted and skipped; a single bad line never
// aborts the import.
package ingest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"centerview/internal/db"
	"centerview/internal/record"
)

// Result reports what an import run did.
type Result struct {
	Subjects int
	Machines int
	Checkins int
	Skipped  int
}

// ImportFile imports events from the JSONL file at path.
func ImportFile(d *db.DB, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Import(d, f)
}

func (r Result) String() string {
	return fmt.Sprintf(
		"%d subjects, %d machines, %d check-ins (%d skipped)",
		r.Subjects, r.Machines, r.Checkins, r.Skipped,
	)
}

// Import reads JSONL events from src and applies them to the store.
// Subjects and machines upsert; check-ins insert. An I/O or store
// failure aborts; malformed events only bump Skipped.
func Import(d *db.DB, src io.Reader) (Result, error) {
	var res Result
	lr := newLineReader(src, maxLineSize)

	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		if !gjson.Valid(line) {
			res.Skipped++
			continue
		}

		switch gjson.Get(line, "kind").Str {
		case "subject":
			s, ok := parseSubject(line)
			if !ok {
				res.Skipped++
				continue
			}
			if err := d.UpsertSubject(s); err != nil {
				return res, err
			}
			res.Subjects++

		case "machine":
			m, ok := parseMachine(line)
			if !ok {
				res.Skipped++
				continue
			}
			if err := d.UpsertMachine(m); err != nil {
				return res, err
			}
			res.Machines++

		case "checkin":
			c, ok := parseCheckin(line)
			if !ok {
				res.Skipped++
				continue
			}
			if _, err := d.InsertCheckin(c); err != nil {
				return res, err
			}
			res.Checkins++

		default:
			res.Skipped++
		}
	}
	return res, nil
}

func parseSubject(line string) (record.Subject, bool) {
	s := record.Subject{
		ID:          gjson.Get(line, "id").Str,
		Name:        gjson.Get(line, "name").Str,
		TypePrimary: gjson.Get(line, "type_primary").Str,
	}
	if sec := gjson.Get(line, "type_secondary").Str; sec != "" {
		s.TypeSecondary = &sec
	}
	return s, s.ID != "" && s.Name != "" && s.TypePrimary != ""
}

func parseMachine(line string) (record.Machine, bool) {
	m := record.Machine{
		ID:       gjson.Get(line, "id").Str,
		Name:     gjson.Get(line, "name").Str,
		Model:    gjson.Get(line, "model").Str,
		Location: gjson.Get(line, "location").Str,
	}
	return m, m.ID != "" && m.Name != ""
}

func parseCheckin(line string) (record.Checkin, bool) {
	arrived := parseTimestamp(gjson.Get(line, "arrived_at").Str)
	if arrived.IsZero() {
		return record.Checkin{}, false
	}

	c := record.Checkin{
		ID:        gjson.Get(line, "id").Str,
		SubjectID: gjson.Get(line, "subject_id").Str,
		MachineID: gjson.Get(line, "machine_id").Str,
		ArrivedAt: arrived,
		InitialHP: int(gjson.Get(line, "initial_hp").Int()),
		MaxHP:     int(gjson.Get(line, "max_hp").Int()),
	}
	if c.SubjectID == "" || c.MachineID == "" {
		return record.Checkin{}, false
	}

	healed := parseTimestamp(gjson.Get(line, "healed_at").Str)
	outcome := record.Outcome(gjson.Get(line, "outcome").Str)
	// A completed event needs both halves; one without the other
	// is malformed.
	switch {
	case !healed.IsZero() && outcome.Valid():
		c.HealedAt = &healed
		c.Outcome = &outcome
	case healed.IsZero() && outcome == "":
		// Active check-in.
	default:
		return record.Checkin{}, false
	}
	return c, true
}

// parseTimestamp parses an RFC3339 timestamp, returning the zero
// time on failure.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
