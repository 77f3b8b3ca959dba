package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/janbjorge/QuickQPG/internal/buffer"
	"github.com/janbjorge/QuickQPG/internal/job"
)

// StatusEntry is one persisted row of the status log
type StatusEntry struct {
	ID         string
	JobID      string
	Status     string
	RecordedAt time.Time
}

// UpsertJob inserts a job record, updating its definition if the ID exists
func (db *DB) UpsertJob(j *job.Job) error {
	query := `
		INSERT INTO jobs (id, entrypoint, payload, priority, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entrypoint = excluded.entrypoint,
			payload = excluded.payload,
			priority = excluded.priority
	`

	_, err := db.Exec(query,
		j.ID,
		j.Entrypoint,
		j.Payload,
		j.Priority,
		j.CreatedAt,
	)

	return err
}

// InsertStatusBatch writes one status_log row per buffered event, in batch
// order, inside a single transaction. This is the flush sink the buffer
// exists for: one bulk write per batch instead of one write per status
// change. Either the whole batch commits or none of it does, so a returned
// error means the buffer may safely resend the same events.
func (db *DB) InsertStatusBatch(events []buffer.Event[*job.Job, job.Status]) error {
	if len(events) == 0 {
		return nil
	}

	return db.WithTransaction(func(tx *sql.Tx) error {
		// Parent rows first so the status_log foreign key holds.
		jobStmt, err := tx.Prepare(`
			INSERT INTO jobs (id, entrypoint, payload, priority, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer jobStmt.Close()

		logStmt, err := tx.Prepare(`
			INSERT INTO status_log (id, job_id, status, recorded_at)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer logStmt.Close()

		now := time.Now().UTC()
		for _, ev := range events {
			j := ev.Job
			if _, err := jobStmt.Exec(j.ID, j.Entrypoint, j.Payload, j.Priority, j.CreatedAt); err != nil {
				return err
			}
			if _, err := logStmt.Exec(uuid.New().String(), j.ID, string(ev.Status), now); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetStatusLog retrieves status entries for a job in insertion order
func (db *DB) GetStatusLog(jobID string, limit int) ([]StatusEntry, error) {
	query := `
		SELECT id, job_id, status, recorded_at
		FROM status_log
		WHERE job_id = ?
		ORDER BY rowid
		LIMIT ?
	`

	rows, err := db.Query(query, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []StatusEntry
	for rows.Next() {
		var entry StatusEntry
		err := rows.Scan(
			&entry.ID,
			&entry.JobID,
			&entry.Status,
			&entry.RecordedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// GetJob retrieves a job by ID
func (db *DB) GetJob(id string) (*job.Job, error) {
	j := &job.Job{}

	query := `
		SELECT id, entrypoint, payload, priority, created_at
		FROM jobs
		WHERE id = ?
	`

	err := db.QueryRow(query, id).Scan(
		&j.ID,
		&j.Entrypoint,
		&j.Payload,
		&j.Priority,
		&j.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return j, nil
}

// CountStatuses returns the total number of status log rows
func (db *DB) CountStatuses() (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM status_log`).Scan(&count)
	return count, err
}
