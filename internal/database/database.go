package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New opens a SQLite database at the given path.
func New(path string) (*sql.DB, error) {
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema. Timestamps
// are stored as integer Unix milliseconds; list-valued fields as JSON text.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cars (
		id TEXT NOT NULL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		images_json TEXT NOT NULL DEFAULT '[]',
		tags_json TEXT NOT NULL DEFAULT '[]',
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cars_user_created ON cars(user_id, created_at DESC);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
