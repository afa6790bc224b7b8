package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"centerview/internal/record"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyCompleted is returned when dismissing a check-in that
// already has a completion timestamp. The dismiss update happens
// exactly once per check-in.
var ErrAlreadyCompleted = errors.New("check-in already completed")

// checkinCols is the column list for check-in queries. Keep in sync
// with scanCheckin.
const checkinCols = `id, subject_id, machine_id, arrived_at,
	healed_at, outcome, initial_hp, max_hp`

// scanCheckin scans checkinCols into a record.Checkin.
func scanCheckin(rs rowScanner) (record.Checkin, error) {
	var c record.Checkin
	var healedAt sql.NullTime
	var outcome sql.NullString
	err := rs.Scan(
		&c.ID, &c.SubjectID, &c.MachineID, &c.ArrivedAt,
		&healedAt, &outcome, &c.InitialHP, &c.MaxHP,
	)
	if err != nil {
		return c, err
	}
	if healedAt.Valid {
		t := healedAt.Time
		c.HealedAt = &t
	}
	if outcome.Valid {
		o := record.Outcome(outcome.String)
		c.Outcome = &o
	}
	return c, nil
}

// InsertCheckin stores a new check-in, generating an id when the
// caller leaves it empty, and returns the id.
func (db *DB) InsertCheckin(c record.Checkin) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.HealedAt != nil && c.HealedAt.Before(c.ArrivedAt) {
		return "", fmt.Errorf(
			"check-in %s: completion %s before arrival %s",
			c.ID, c.HealedAt, c.ArrivedAt,
		)
	}

	err := db.Update(func(tx *sql.Tx) error {
		var healedAt any
		var outcome any
		if c.HealedAt != nil {
			healedAt = *c.HealedAt
		}
		if c.Outcome != nil {
			outcome = string(*c.Outcome)
		}
		_, err := tx.Exec(
			`INSERT INTO checkins (`+checkinCols+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.SubjectID, c.MachineID, c.ArrivedAt,
			healedAt, outcome, c.InitialHP, c.MaxHP,
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("inserting check-in: %w", err)
	}
	return c.ID, nil
}

// ListCheckins returns the full check-in history ordered by arrival,
// then id for determinism.
func (db *DB) ListCheckins(ctx context.Context) ([]record.Checkin, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT `+checkinCols+` FROM checkins
		 ORDER BY arrived_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying check-ins: %w", err)
	}
	defer rows.Close()

	var checkins []record.Checkin
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning check-in: %w", err)
		}
		checkins = append(checkins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating check-ins: %w", err)
	}
	return checkins, nil
}

// ListActiveCheckins returns check-ins with no completion timestamp,
// oldest arrival first.
func (db *DB) ListActiveCheckins(ctx context.Context) ([]record.Checkin, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT `+checkinCols+` FROM checkins
		 WHERE healed_at IS NULL
		 ORDER BY arrived_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying active check-ins: %w", err)
	}
	defer rows.Close()

	var checkins []record.Checkin
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning active check-in: %w", err)
		}
		checkins = append(checkins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating active check-ins: %w", err)
	}
	return checkins, nil
}

// GetCheckin returns one check-in by id, or ErrNotFound.
func (db *DB) GetCheckin(
	ctx context.Context, id string,
) (record.Checkin, error) {
	row := db.reader.QueryRowContext(ctx,
		`SELECT `+checkinCols+` FROM checkins WHERE id = ?`, id,
	)
	c, err := scanCheckin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Checkin{}, fmt.Errorf("check-in %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.Checkin{}, fmt.Errorf("fetching check-in: %w", err)
	}
	return c, nil
}

// DismissCheckin completes an active check-in: it sets the completion
// timestamp and outcome in a single-row update. Dismissing a missing
// row is ErrNotFound; dismissing a completed one is
// ErrAlreadyCompleted. The next read excludes the row from active
// counts.
func (db *DB) DismissCheckin(
	id string, outcome record.Outcome, healedAt time.Time,
) error {
	if !outcome.Valid() {
		return fmt.Errorf("invalid outcome %q", outcome)
	}
	return db.Update(func(tx *sql.Tx) error {
		var arrivedAt time.Time
		var healed sql.NullTime
		err := tx.QueryRow(
			`SELECT arrived_at, healed_at FROM checkins WHERE id = ?`, id,
		).Scan(&arrivedAt, &healed)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check-in %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("fetching check-in for dismiss: %w", err)
		}
		if healed.Valid {
			return fmt.Errorf("check-in %s: %w", id, ErrAlreadyCompleted)
		}
		if healedAt.Before(arrivedAt) {
			return fmt.Errorf(
				"check-in %s: completion %s before arrival %s",
				id, healedAt, arrivedAt,
			)
		}
		_, err = tx.Exec(
			`UPDATE checkins SET healed_at = ?, outcome = ? WHERE id = ?`,
			healedAt, string(outcome), id,
		)
		if err != nil {
			return fmt.Errorf("dismissing check-in: %w", err)
		}
		return nil
	})
}
