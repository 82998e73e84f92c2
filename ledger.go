package stepwise

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Ledger is the thought ledger: an append-only history of entries plus
// a label-indexed view of the entries filed under named branches.
//
// # Concurrency
//
// Ledger is safe for concurrent use. Submissions are serialized around the
// normalize-append sequence so the summary returned by each call reflects
// exactly the append it produced. Read views take a shared lock and return
// copies.
//
// # Growth
//
// History and branches grow for the life of the ledger. Nothing is evicted.
type Ledger struct {
	// Identity
	ID string

	// Append-only state
	history  []Entry
	branches map[string][]Entry
	labels   []string // branch labels in order of first appearance
	mu       sync.RWMutex

	// Collaborators
	archiver *Archiver
	now      func() time.Time

	// Submission pipeline (validate -> normalize -> commit)
	pipeline *pipz.Sequence[*record]

	CreatedAt time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithSessionID sets the ledger ID instead of generating one.
func WithSessionID(id string) Option {
	return func(l *Ledger) {
		l.ID = id
	}
}

// WithArchiver hands a copy of every recorded entry to the archiver.
func WithArchiver(a *Archiver) Option {
	return func(l *Ledger) {
		l.archiver = a
	}
}

// WithClock overrides the time source used for RecordedAt.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// record carries one submission through the pipeline.
type record struct {
	submission Submission
	entry      Entry
	summary    Summary
	rejection  *ValidationError
	newBranch  bool
}

// NewLedger creates an empty ledger. One ledger is expected per host
// process; tests create as many isolated ledgers as they like.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		ID:        uuid.New().String(),
		history:   make([]Entry, 0),
		branches:  make(map[string][]Entry),
		labels:    make([]string, 0),
		now:       time.Now,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.pipeline = pipz.NewSequence(pipz.Name("submit"),
		pipz.Apply(pipz.Name("validate"), validateRecord),
		pipz.Transform(pipz.Name("normalize"), normalizeRecord),
		pipz.Apply(pipz.Name("commit"), l.commit),
	)

	capitan.Emit(context.Background(), LedgerCreated,
		FieldSessionID.Field(l.ID),
	)

	return l
}

// Submit records one submission and returns the resulting progress summary.
// A submission that fails validation returns a *ValidationError and leaves
// the ledger unchanged.
func (l *Ledger) Submit(ctx context.Context, s Submission) (Summary, error) {
	_, summary, err := l.Record(ctx, s)
	return summary, err
}

// Record is Submit that also returns the stored entry, for callers that
// display or forward it.
func (l *Ledger) Record(ctx context.Context, s Submission) (Entry, Summary, error) {
	rec := &record{submission: s}

	_, err := l.pipeline.Process(ctx, rec)
	if rec.rejection != nil {
		capitan.Error(ctx, EntryRejected,
			FieldSessionID.Field(l.ID),
			FieldRejectedField.Field(rec.rejection.Field),
			FieldError.Field(rec.rejection),
		)
		return Entry{}, Summary{}, rec.rejection
	}
	if err != nil {
		return Entry{}, Summary{}, fmt.Errorf("submit thought: %w", err)
	}

	l.announce(ctx, rec)

	if l.archiver != nil {
		l.archiver.enqueue(ctx, rec.entry.Clone())
	}

	return rec.entry.Clone(), rec.summary, nil
}

// Branches returns the branch labels created so far, in order of first appearance.
func (l *Ledger) Branches() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	labels := make([]string, len(l.labels))
	copy(labels, l.labels)
	return labels
}

// HistoryLength returns the number of entries recorded so far.
func (l *Ledger) HistoryLength() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.history)
}

// History returns all entries in insertion order.
func (l *Ledger) History() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneEntries(l.history)
}

// Branch returns the entries filed under label, in insertion order.
func (l *Ledger) Branch(label string) ([]Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries, ok := l.branches[label]
	if !ok {
		return nil, false
	}
	return cloneEntries(entries), true
}

func validateRecord(_ context.Context, rec *record) (*record, error) {
	if err := rec.submission.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			rec.rejection = verr
		}
		return rec, err
	}
	return rec, nil
}

func normalizeRecord(_ context.Context, rec *record) *record {
	rec.entry = normalize(rec.submission)
	return rec
}

// commit appends the normalized entry under the write lock and snapshots
// the summary before releasing it.
func (l *Ledger) commit(_ context.Context, rec *record) (*record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := rec.entry
	entry.ID = uuid.New().String()
	entry.SessionID = l.ID
	entry.Sequence = len(l.history) + 1
	entry.RecordedAt = l.now()

	l.history = append(l.history, entry)

	if label, ok := entry.Branch(); ok {
		if _, exists := l.branches[label]; !exists {
			l.branches[label] = make([]Entry, 0, 1)
			l.labels = append(l.labels, label)
			rec.newBranch = true
		}
		l.branches[label] = append(l.branches[label], entry)
	}

	labels := make([]string, len(l.labels))
	copy(labels, l.labels)

	rec.entry = entry
	rec.summary = Summary{
		ThoughtNumber:        entry.ThoughtNumber,
		TotalThoughts:        entry.TotalThoughts,
		NextThoughtNeeded:    entry.NeedsMoreThoughts,
		Branches:             labels,
		ThoughtHistoryLength: len(l.history),
	}

	return rec, nil
}

// announce emits the events describing a committed record.
func (l *Ledger) announce(ctx context.Context, rec *record) {
	label, _ := rec.entry.Branch()

	if rec.entry.Extended() {
		capitan.Emit(ctx, TotalExtended,
			FieldSessionID.Field(l.ID),
			FieldEntryID.Field(rec.entry.ID),
			FieldThoughtNumber.Field(rec.entry.ThoughtNumber),
			FieldDeclaredTotal.Field(rec.entry.DeclaredTotal),
			FieldTotalThoughts.Field(rec.entry.TotalThoughts),
		)
	}

	if rec.newBranch {
		capitan.Emit(ctx, BranchCreated,
			FieldSessionID.Field(l.ID),
			FieldBranchID.Field(label),
			FieldBranchCount.Field(len(rec.summary.Branches)),
		)
	}

	capitan.Emit(ctx, EntryRecorded,
		FieldSessionID.Field(l.ID),
		FieldEntryID.Field(rec.entry.ID),
		FieldThoughtNumber.Field(rec.entry.ThoughtNumber),
		FieldTotalThoughts.Field(rec.entry.TotalThoughts),
		FieldBranchID.Field(label),
		FieldContentSize.Field(len(rec.entry.Thought)),
		FieldHistoryLength.Field(rec.summary.ThoughtHistoryLength),
		FieldBranchCount.Field(len(rec.summary.Branches)),
	)
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
