// Package stepwisetest provides test utilities for stepwise.
package stepwisetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/stepwise"
)

// ErrArchiveUnavailable is returned by a MockArchive configured to fail.
var ErrArchiveUnavailable = errors.New("archive unavailable")

// MockArchive implements stepwise.Archive in memory.
type MockArchive struct {
	entries []stepwise.Entry
	fail    bool
	delay   time.Duration
	mu      sync.RWMutex
}

// NewMockArchive creates an empty in-memory archive.
func NewMockArchive() *MockArchive {
	return &MockArchive{entries: make([]stepwise.Entry, 0)}
}

// FailWrites makes every subsequent write return ErrArchiveUnavailable.
func (m *MockArchive) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// SlowWrites delays every subsequent write.
func (m *MockArchive) SlowWrites(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// ArchiveEntry records the entry.
func (m *MockArchive) ArchiveEntry(ctx context.Context, entry stepwise.Entry) error {
	m.mu.RLock()
	delay, fail := m.delay, m.fail
	m.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return ErrArchiveUnavailable
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns the archived entries in write order.
func (m *MockArchive) Entries() []stepwise.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]stepwise.Entry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// Verify MockArchive implements stepwise.Archive.
var _ stepwise.Archive = (*MockArchive)(nil)

// Step builds a main-line submission.
func Step(thought string, number, total int, next bool) stepwise.Submission {
	return stepwise.Submission{
		Thought:           thought,
		ThoughtNumber:     number,
		TotalThoughts:     total,
		NextThoughtNeeded: &next,
	}
}

// OnBranch files s under label, diverging from thought from.
func OnBranch(s stepwise.Submission, label string, from int) stepwise.Submission {
	s.BranchID = &label
	s.BranchFromThought = &from
	return s
}

// Revising marks s as a revision of thought n.
func Revising(s stepwise.Submission, n int) stepwise.Submission {
	revision := true
	s.IsRevision = &revision
	s.RevisesThought = &n
	return s
}

// RequireSubmit submits s and fails the test on error.
func RequireSubmit(t testing.TB, ledger *stepwise.Ledger, s stepwise.Submission) stepwise.Summary {
	t.Helper()
	summary, err := ledger.Submit(context.Background(), s)
	if err != nil {
		t.Fatalf("submit %q: %v", s.Thought, err)
	}
	return summary
}

// WaitForEntries polls the archive until it holds n entries or the timeout passes.
func WaitForEntries(m *MockArchive, n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if len(m.Entries()) >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}
