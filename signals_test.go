package stepwise

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
	capitantesting "github.com/zoobzio/capitan/testing"
)

// getStringField extracts a string field value from a captured event.
func getStringField(event capitantesting.CapturedEvent, keyName string) string {
	for _, f := range event.Fields {
		if f.Key().Name() == keyName {
			if v, ok := f.Value().(string); ok {
				return v
			}
		}
	}
	return ""
}

func TestLedgerCreatedEvent(t *testing.T) {
	capture := capitantesting.NewEventCapture()
	listener := capitan.Hook(LedgerCreated, capture.Handler())
	defer listener.Close()

	NewLedger(WithSessionID("signal-session"))

	deadline := time.Now().Add(time.Second)
	for {
		for _, e := range capture.Events() {
			if getStringField(e, FieldSessionID.Name()) == "signal-session" {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("expected LedgerCreated event for signal-session")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEntryRecordedEvent(t *testing.T) {
	l := NewLedger()
	recorded := hookSession(t, EntryRecorded, l.ID)

	entry, _, err := l.Record(context.Background(), onBranch(step("hello", 1, 2, true), "alt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := recorded.waitFor(1, time.Second)
	if len(events) != 1 {
		t.Fatalf("expected 1 EntryRecorded event, got %d", len(events))
	}
	e := events[0]

	if id, _ := FieldEntryID.From(e); id != entry.ID {
		t.Errorf("expected entry_id %q, got %q", entry.ID, id)
	}
	if n, _ := FieldThoughtNumber.From(e); n != 1 {
		t.Errorf("expected thought_number 1, got %d", n)
	}
	if label, _ := FieldBranchID.From(e); label != "alt" {
		t.Errorf("expected branch_id alt, got %q", label)
	}
	if size, _ := FieldContentSize.From(e); size != len("hello") {
		t.Errorf("expected content_size %d, got %d", len("hello"), size)
	}
	if n, _ := FieldHistoryLength.From(e); n != 1 {
		t.Errorf("expected history_length 1, got %d", n)
	}
}

func TestEntryRejectedEvent(t *testing.T) {
	l := NewLedger()
	rejected := hookSession(t, EntryRejected, l.ID)

	if _, err := l.Submit(context.Background(), step("x", 0, 1, true)); err == nil {
		t.Fatal("expected validation error")
	}

	events := rejected.waitFor(1, time.Second)
	if len(events) != 1 {
		t.Fatalf("expected 1 EntryRejected event, got %d", len(events))
	}
	if field, _ := FieldRejectedField.From(events[0]); field != "thoughtNumber" {
		t.Errorf("expected rejected_field thoughtNumber, got %q", field)
	}
	if events[0].Severity() != capitan.SeverityError {
		t.Errorf("expected error severity, got %v", events[0].Severity())
	}
}

func TestBranchCreatedEvent(t *testing.T) {
	l := NewLedger()
	created := hookSession(t, BranchCreated, l.ID)

	mustSubmit(t, l, onBranch(step("a", 1, 3, true), "a"))
	mustSubmit(t, l, onBranch(step("a again", 2, 3, true), "a"))
	mustSubmit(t, l, onBranch(step("b", 3, 3, false), "b"))

	events := created.waitFor(2, time.Second)
	// Give a stray duplicate time to arrive.
	time.Sleep(20 * time.Millisecond)
	if created.count() != 2 {
		t.Fatalf("expected 2 BranchCreated events, got %d", created.count())
	}

	labels := map[string]int{}
	for _, e := range events {
		label, _ := FieldBranchID.From(e)
		count, _ := FieldBranchCount.From(e)
		labels[label] = count
	}
	if labels["a"] != 1 || labels["b"] != 2 {
		t.Errorf("expected a->1 b->2, got %v", labels)
	}
}

func TestTotalExtendedEvent(t *testing.T) {
	l := NewLedger()
	extended := hookSession(t, TotalExtended, l.ID)

	mustSubmit(t, l, step("within", 2, 3, true))
	mustSubmit(t, l, step("beyond", 5, 3, false))

	events := extended.waitFor(1, time.Second)
	time.Sleep(20 * time.Millisecond)
	if extended.count() != 1 {
		t.Fatalf("expected 1 TotalExtended event, got %d", extended.count())
	}

	if declared, _ := FieldDeclaredTotal.From(events[0]); declared != 3 {
		t.Errorf("expected declared_total 3, got %d", declared)
	}
	if total, _ := FieldTotalThoughts.From(events[0]); total != 5 {
		t.Errorf("expected total_thoughts 5, got %d", total)
	}
}
