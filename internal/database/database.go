package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pitstop/garage-bookings/pkg/auth"
)

// Open opens (and creates if needed) the SQLite database file and
// verifies the connection. The pool is capped at a single connection:
// SQLite allows one writer at a time and serializing access through the
// pool keeps the check-and-insert paths free of SQLITE_BUSY errors.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// The partial unique index is the hard guarantee behind the
// no-double-booking rule: two active bookings can never share a
// (date, time) pair, no matter how requests interleave. Completed
// bookings fall outside the index and stop blocking the slot.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	fullname      TEXT NOT NULL,
	phone_number  TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	user_type     TEXT NOT NULL DEFAULT 'customer',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bookings (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       INTEGER NOT NULL REFERENCES users(id),
	service_type  TEXT NOT NULL,
	booking_date  TEXT NOT NULL,
	booking_time  TEXT NOT NULL,
	license_plate TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'confirmed',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot
	ON bookings(booking_date, booking_time) WHERE status != 'completed';

CREATE INDEX IF NOT EXISTS idx_bookings_user
	ON bookings(user_id, booking_date DESC, booking_time DESC);
`

// Initialize creates the schema and seeds the default admin and a test
// customer. It reports whether the seed ran, so the initdb endpoint can
// answer 201 on first call and 200 afterwards.
func Initialize(ctx context.Context, db *sql.DB) (seeded bool, err error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return false, err
	}

	var adminCount int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE user_type = 'admin'`).Scan(&adminCount)
	if err != nil {
		return false, err
	}
	if adminCount > 0 {
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, fullname, phone_number, email, user_type)
		 VALUES (?, ?, ?, ?, ?, 'admin')`,
		"admin@garage.com", auth.HashPassword("0811234567"),
		"Garage Admin", "0811234567", "admin@garage.com")
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, fullname, phone_number, email, user_type)
		 VALUES (?, ?, ?, ?, ?, 'customer')`,
		"somsak_test", auth.HashPassword("1234"),
		"Somsak Test", "0816507142", "somsak@example.com")
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
