package events

import (
	"context"
	"testing"
	"time"

	"github.com/meshforge/printquote/dbopen"
	_ "modernc.org/sqlite"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	db := dbopen.OpenMemory(t)
	l := NewLogger(db)
	if err := l.Init(); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLogEvent(t *testing.T) {
	l := newTestLogger(t)
	ctx := context.Background()

	l.LogEvent(ctx, Event{
		Type:       "order_placed",
		EntityType: "order",
		EntityID:   "ord_1",
		Action:     "place",
		Success:    true,
	})

	var count int
	if err := l.db.QueryRow(
		`SELECT COUNT(*) FROM business_events WHERE event_type = 'order_placed'`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	var evtID string
	var success int
	if err := l.db.QueryRow(
		`SELECT event_id, success FROM business_events LIMIT 1`).Scan(&evtID, &success); err != nil {
		t.Fatal(err)
	}
	if evtID == "" || success != 1 {
		t.Fatalf("event_id = %q, success = %d", evtID, success)
	}
}

func TestStartCleanup(t *testing.T) {
	l := newTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l.LogEvent(ctx, Event{Type: "stale", Success: true})
	if _, err := l.db.Exec(
		`UPDATE business_events SET created_at = ? WHERE event_type = 'stale'`,
		time.Now().Add(-48*time.Hour).Unix()); err != nil {
		t.Fatal(err)
	}

	l.StartCleanup(ctx, 5*time.Millisecond, 24*time.Hour)

	deadline := time.Now().Add(2 * time.Second)
	for {
		var count int
		if err := l.db.QueryRow(`SELECT COUNT(*) FROM business_events`).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stale event still present after %v", 2*time.Second)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCleanup(t *testing.T) {
	l := newTestLogger(t)
	ctx := context.Background()

	l.LogEvent(ctx, Event{Type: "old", Success: true})
	if _, err := l.db.Exec(
		`UPDATE business_events SET created_at = ? WHERE event_type = 'old'`,
		time.Now().Add(-48*time.Hour).Unix()); err != nil {
		t.Fatal(err)
	}
	l.LogEvent(ctx, Event{Type: "recent", Success: true})

	if err := l.Cleanup(ctx, 24*time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	var count int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM business_events`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("count after cleanup = %d, want 1", count)
	}
}
