package db

import (
	"context"
	"fmt"
)

// Stats holds record store row counts for the stats endpoint.
type Stats struct {
	CheckinCount   int `json:"checkin_count"`
	SubjectCount   int `json:"subject_count"`
	MachineCount   int `json:"machine_count"`
	ActiveCheckins int `json:"active_checkins"`
}

// GetStats returns row counts across the store in one round trip.
func (db *DB) GetStats(ctx context.Context) (Stats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM checkins),
			(SELECT COUNT(*) FROM subjects),
			(SELECT COUNT(*) FROM machines),
			(SELECT COUNT(*) FROM checkins WHERE healed_at IS NULL)`

	var s Stats
	err := db.reader.QueryRowContext(ctx, query).Scan(
		&s.CheckinCount,
		&s.SubjectCount,
		&s.MachineCount,
		&s.ActiveCheckins,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("fetching stats: %w", err)
	}
	return s, nil
}
