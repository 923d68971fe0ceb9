package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS deliveries (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id      INTEGER NOT NULL,
	screen       TEXT    NOT NULL,
	method       TEXT    NOT NULL,
	delivered_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS deliveries_delivered_at ON deliveries (delivered_at);
`

// Entry is one delivered (or dropped) screen.
type Entry struct {
	ChatID      int64
	Screen      string
	Method      string
	DeliveredAt time.Time
}

type DB struct {
	*sql.DB
}

// Open opens the journal file and applies the schema.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{db}, nil
}

func (d *DB) Record(ctx context.Context, e Entry) error {
	if e.DeliveredAt.IsZero() {
		e.DeliveredAt = time.Now()
	}
	_, err := d.ExecContext(ctx,
		`INSERT INTO deliveries (chat_id, screen, method, delivered_at) VALUES (?, ?, ?, ?)`,
		e.ChatID, e.Screen, e.Method, e.DeliveredAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (d *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT chat_id, screen, method, delivered_at FROM deliveries ORDER BY delivered_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.ChatID, &e.Screen, &e.Method, &ms); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		e.DeliveredAt = time.UnixMilli(ms)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
