package db

import (
	"context"
	"database/sql"
	"fmt"

	"centerview/internal/record"
)

// UpsertSubject inserts or updates a subject row by id.
func (db *DB) UpsertSubject(s record.Subject) error {
	err := db.Update(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO subjects (id, name, type_primary, type_secondary)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			     name = excluded.name,
			     type_primary = excluded.type_primary,
			     type_secondary = excluded.type_secondary`,
			s.ID, s.Name, s.TypePrimary, s.TypeSecondary,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upserting subject %s: %w", s.ID, err)
	}
	return nil
}

// ListSubjects returns all subjects ordered by id.
func (db *DB) ListSubjects(ctx context.Context) ([]record.Subject, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT id, name, type_primary, type_secondary
		 FROM subjects ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying subjects: %w", err)
	}
	defer rows.Close()

	var subjects []record.Subject
	for rows.Next() {
		var s record.Subject
		var secondary sql.NullString
		if err := rows.Scan(
			&s.ID, &s.Name, &s.TypePrimary, &secondary,
		); err != nil {
			return nil, fmt.Errorf("scanning subject: %w", err)
		}
		if secondary.Valid {
			v := secondary.String
			s.TypeSecondary = &v
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subjects: %w", err)
	}
	return subjects, nil
}
