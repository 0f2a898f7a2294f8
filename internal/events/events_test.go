package events_test

import (
	"testing"

	"github.com/p-n-ai/unimatch/internal/events"
	"github.com/p-n-ai/unimatch/internal/platform/database/dbtest"
)

func TestMemoryLogger_LogEvent(t *testing.T) {
	logger := events.NewMemoryLogger()

	err := logger.LogEvent(events.Event{
		SessionID: "sess-1",
		EventType: events.PredictSubmitted,
		Data:      map[string]any{"slots": 2},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	evs := logger.Events()
	if len(evs) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(evs))
	}
	if evs[0].EventType != events.PredictSubmitted {
		t.Errorf("EventType = %q", evs[0].EventType)
	}
	if evs[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryLogger_RequiresType(t *testing.T) {
	if err := events.NewMemoryLogger().LogEvent(events.Event{SessionID: "s"}); err == nil {
		t.Error("LogEvent() without type should error")
	}
}

func TestNopLogger(t *testing.T) {
	var l events.Logger = events.NopLogger{}
	if err := l.LogEvent(events.Event{}); err != nil {
		t.Errorf("LogEvent() error = %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := events.Fingerprint(map[string]any{"s1": 80.0})
	b := events.Fingerprint(map[string]any{"s1": 80.0})
	c := events.Fingerprint(map[string]any{"s1": 81.0})

	if len(a) != 64 {
		t.Errorf("len(fingerprint) = %d, want 64 hex chars", len(a))
	}
	if a != b {
		t.Error("equal inputs should fingerprint equally")
	}
	if a == c {
		t.Error("different inputs should fingerprint differently")
	}
}

func TestPostgresLogger_NilPool(t *testing.T) {
	logger := events.NewPostgresLogger(nil)
	if err := logger.LogEvent(events.Event{SessionID: "s", EventType: events.ChatSent}); err == nil {
		t.Fatal("expected error for nil pool")
	}
}

func TestPostgresLogger_LogEvent(t *testing.T) {
	db := dbtest.New(t)
	logger := events.NewPostgresLogger(db.Pool)

	for _, typ := range []string{events.PredictSubmitted, events.PredictSubmitted, events.RecommendFailed} {
		if err := logger.LogEvent(events.Event{
			SessionID:   "sess-1",
			EventType:   typ,
			Fingerprint: events.Fingerprint(typ),
		}); err != nil {
			t.Fatalf("LogEvent(%s) error = %v", typ, err)
		}
	}

	n, err := logger.Count(t.Context(), "sess-1", events.PredictSubmitted)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	if err := logger.LogEvent(events.Event{EventType: events.ChatSent}); err == nil {
		t.Error("LogEvent() without session should error")
	}
}
