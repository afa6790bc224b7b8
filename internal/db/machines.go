package db

import (
	"context"
	"database/sql"
	"fmt"

	"centerview/internal/record"
)

// UpsertMachine inserts or updates a machine row by id.
func (db *DB) UpsertMachine(m record.Machine) error {
	err := db.Update(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO machines (id, name, model, location)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			     name = excluded.name,
			     model = excluded.model,
			     location = excluded.location`,
			m.ID, m.Name, m.Model, m.Location,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upserting machine %s: %w", m.ID, err)
	}
	return nil
}

// ListMachines returns all machines ordered by id.
func (db *DB) ListMachines(ctx context.Context) ([]record.Machine, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT id, name, model, location FROM machines ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying machines: %w", err)
	}
	defer rows.Close()

	var machines []record.Machine
	for rows.Next() {
		var m record.Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.Model, &m.Location); err != nil {
			return nil, fmt.Errorf("scanning machine: %w", err)
		}
		machines = append(machines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating machines: %w", err)
	}
	return machines, nil
}
