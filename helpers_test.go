package stepwise

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
)

func boolPtr(b bool) *bool       { return &b }
func intPtr(n int) *int          { return &n }
func stringPtr(s string) *string { return &s }

// step builds a main-line submission.
func step(thought string, number, total int, next bool) Submission {
	return Submission{
		Thought:           thought,
		ThoughtNumber:     number,
		TotalThoughts:     total,
		NextThoughtNeeded: boolPtr(next),
	}
}

// onBranch files s under label.
func onBranch(s Submission, label string) Submission {
	s.BranchID = stringPtr(label)
	return s
}

func mustSubmit(t *testing.T, l *Ledger, s Submission) Summary {
	t.Helper()
	summary, err := l.Submit(context.Background(), s)
	if err != nil {
		t.Fatalf("submit %q: %v", s.Thought, err)
	}
	return summary
}

// sessionEvents collects events on signal that belong to one session.
// Events arrive asynchronously, so callers wait with waitFor.
type sessionEvents struct {
	mu     sync.Mutex
	events []*capitan.Event
}

func hookSession(t *testing.T, signal capitan.Signal, sessionID string) *sessionEvents {
	t.Helper()
	se := &sessionEvents{}
	listener := capitan.Hook(signal, func(_ context.Context, e *capitan.Event) {
		if id, _ := FieldSessionID.From(e); id != sessionID {
			return
		}
		se.mu.Lock()
		se.events = append(se.events, e)
		se.mu.Unlock()
	})
	t.Cleanup(func() { listener.Close() })
	return se
}

func (se *sessionEvents) waitFor(n int, timeout time.Duration) []*capitan.Event {
	deadline := time.Now().Add(timeout)
	for {
		se.mu.Lock()
		count := len(se.events)
		se.mu.Unlock()
		if count >= n || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	se.mu.Lock()
	defer se.mu.Unlock()
	out := make([]*capitan.Event, len(se.events))
	copy(out, se.events)
	return out
}

func (se *sessionEvents) count() int {
	se.mu.Lock()
	defer se.mu.Unlock()
	return len(se.events)
}
