package db

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	entrypoint TEXT NOT NULL,
	payload BLOB,
	priority INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS status_log (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL REFERENCES jobs(id),
	status TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_status_log_job_id ON status_log(job_id);
`

// EnsureSchema creates the jobs and status_log tables if they do not exist
func (db *DB) EnsureSchema() error {
	_, err := db.Exec(schema)
	return err
}
