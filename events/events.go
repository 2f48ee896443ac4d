// Package events records business events (uploads analyzed, orders
// placed) in SQLite. Logging is best-effort: a failing event store
// never blocks or fails the operation being recorded.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/meshforge/printquote/dbopen"
	"github.com/meshforge/printquote/idgen"
)

// Schema contains the DDL for the events table.
const Schema = `
	CREATE TABLE IF NOT EXISTS business_events (
		event_id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		entity_type TEXT,
		entity_id TEXT,
		action TEXT,
		details TEXT,
		success INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_type_time
		ON business_events(event_type, created_at DESC);
`

// Event is one domain-level occurrence to record.
type Event struct {
	Type       string
	EntityType string
	EntityID   string
	Action     string
	Details    string // optional JSON
	Success    bool
}

// Logger writes business events.
type Logger struct {
	db    *sql.DB
	newID idgen.Generator
}

// NewLogger creates a Logger on the given database.
func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db, newID: idgen.Prefixed("evt_", idgen.Default)}
}

// Init applies the events schema.
func (l *Logger) Init() error {
	if _, err := l.db.Exec(Schema); err != nil {
		return fmt.Errorf("events: init schema: %w", err)
	}
	return nil
}

// LogEvent records an event. Errors are logged via slog and never
// propagate, so a failing event store cannot break the request path.
func (l *Logger) LogEvent(ctx context.Context, e Event) {
	_, err := dbopen.Exec(ctx, l.db, `
		INSERT INTO business_events (
			event_id, event_type, entity_type, entity_id, action, details, success, created_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		l.newID(), e.Type, e.EntityType, e.EntityID, e.Action, e.Details, e.Success,
		time.Now().Unix())
	if err != nil {
		slog.Error("event log failed", "error", err, "event_type", e.Type)
	}
}

// StartCleanup runs Cleanup on every tick until the context ends.
func (l *Logger) StartCleanup(ctx context.Context, interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := l.Cleanup(ctx, retention); err != nil {
					slog.Warn("event cleanup failed", "error", err)
				}
			}
		}
	}()
}

// Cleanup deletes events older than the given retention.
func (l *Logger) Cleanup(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention).Unix()
	if _, err := dbopen.Exec(ctx, l.db, `DELETE FROM business_events WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("events: cleanup: %w", err)
	}
	return nil
}
