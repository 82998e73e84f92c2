package stepwise

import (
	"time"
)

// Submission is one reasoning step as a caller hands it to the ledger.
// Optional fields are pointers so an absent value stays distinguishable
// from an explicit false or zero.
type Submission struct {
	Thought           string  `json:"thought" jsonschema:"your current thinking step" validate:"required"`
	ThoughtNumber     int     `json:"thoughtNumber" jsonschema:"current thought number in the sequence (1 or greater)" validate:"min=1"`
	TotalThoughts     int     `json:"totalThoughts" jsonschema:"current estimate of thoughts needed (1 or greater)" validate:"min=1"`
	NextThoughtNeeded *bool   `json:"nextThoughtNeeded" jsonschema:"whether another thought step should follow this one" validate:"required"`
	IsRevision        *bool   `json:"isRevision,omitempty" jsonschema:"whether this thought revises previous thinking"`
	RevisesThought    *int    `json:"revisesThought,omitempty" jsonschema:"which thought number is being reconsidered" validate:"omitempty,min=1"`
	BranchFromThought *int    `json:"branchFromThought,omitempty" jsonschema:"thought number this alternative path diverges from" validate:"omitempty,min=1"`
	BranchID          *string `json:"branchId,omitempty" jsonschema:"label of the branch this thought belongs to"`
}

// Entry is a recorded reasoning step. Entries are immutable once appended
// to a ledger; the read views hand out deep copies.
//
// The db tags describe the audit table written by SoyArchive.
type Entry struct {
	ID                string    `json:"id" db:"id" type:"uuid" constraints:"primarykey"`
	SessionID         string    `json:"sessionId" db:"session_id" type:"uuid" constraints:"notnull"`
	Sequence          int       `json:"sequence" db:"sequence" type:"integer" constraints:"notnull"`
	Thought           string    `json:"thought" db:"thought" type:"text" constraints:"notnull"`
	ThoughtNumber     int       `json:"thoughtNumber" db:"thought_number" type:"integer" constraints:"notnull"`
	TotalThoughts     int       `json:"totalThoughts" db:"total_thoughts" type:"integer" constraints:"notnull"`
	DeclaredTotal     int       `json:"declaredTotal" db:"declared_total" type:"integer" constraints:"notnull"`
	IsRevision        bool      `json:"isRevision" db:"is_revision" type:"boolean" constraints:"notnull"`
	RevisesThought    *int      `json:"revisesThought,omitempty" db:"revises_thought" type:"integer"`
	BranchFromThought *int      `json:"branchFromThought,omitempty" db:"branch_from_thought" type:"integer"`
	BranchID          *string   `json:"branchId,omitempty" db:"branch_id" type:"text"`
	NeedsMoreThoughts bool      `json:"needsMoreThoughts" db:"needs_more_thoughts" type:"boolean" constraints:"notnull"`
	RecordedAt        time.Time `json:"recordedAt" db:"recorded_at" type:"timestamp" constraints:"notnull"`
}

// Summary reports ledger progress after a submission.
type Summary struct {
	ThoughtNumber        int      `json:"thoughtNumber"`
	TotalThoughts        int      `json:"totalThoughts"`
	NextThoughtNeeded    bool     `json:"nextThoughtNeeded"`
	Branches             []string `json:"branches"`
	ThoughtHistoryLength int      `json:"thoughtHistoryLength"`
}

// Branch returns the entry's branch label and whether it has one.
// An empty label counts as the main line.
func (e Entry) Branch() (string, bool) {
	if e.BranchID == nil || *e.BranchID == "" {
		return "", false
	}
	return *e.BranchID, true
}

// Extended reports whether normalization raised the caller's declared total.
func (e Entry) Extended() bool {
	return e.TotalThoughts != e.DeclaredTotal
}

// Clone returns a deep copy so callers cannot reach the ledger's pointers.
func (e Entry) Clone() Entry {
	e.RevisesThought = clonePtr(e.RevisesThought)
	e.BranchFromThought = clonePtr(e.BranchFromThought)
	e.BranchID = clonePtr(e.BranchID)
	return e
}

// normalize turns a validated submission into the entry the ledger stores.
// Only TotalThoughts can change: it is raised to ThoughtNumber when the
// caller ran past its own estimate.
func normalize(s Submission) Entry {
	total := s.TotalThoughts
	if s.ThoughtNumber > total {
		total = s.ThoughtNumber
	}

	e := Entry{
		Thought:           s.Thought,
		ThoughtNumber:     s.ThoughtNumber,
		TotalThoughts:     total,
		DeclaredTotal:     s.TotalThoughts,
		RevisesThought:    clonePtr(s.RevisesThought),
		BranchFromThought: clonePtr(s.BranchFromThought),
		BranchID:          clonePtr(s.BranchID),
	}
	if s.IsRevision != nil {
		e.IsRevision = *s.IsRevision
	}
	if s.NextThoughtNeeded != nil {
		e.NeedsMoreThoughts = *s.NextThoughtNeeded
	}
	return e
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
