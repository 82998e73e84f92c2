// Package stepwise provides a thought ledger for structured, step-by-step reasoning.
//
// A caller submits one reasoning step at a time. The ledger appends it to an
// append-only history, files it under a named branch when it carries one, and
// answers with a progress summary.
//
// # Core Types
//
//   - [Submission] - One step as a caller sends it (boundary field names in JSON tags)
//   - [Entry] - A recorded, immutable step with normalized totals
//   - [Summary] - Progress after each submission
//   - [Ledger] - The history plus the branch index
//
// # Recording Thoughts
//
//	ledger := stepwise.NewLedger()
//	next := true
//	summary, err := ledger.Submit(ctx, stepwise.Submission{
//	    Thought:           "Break the problem into parts",
//	    ThoughtNumber:     1,
//	    TotalThoughts:     3,
//	    NextThoughtNeeded: &next,
//	})
//
// When ThoughtNumber exceeds TotalThoughts the stored total is raised to
// ThoughtNumber; the summary always reports the effective total.
//
// Revision and branch references (RevisesThought, BranchFromThought) are
// recorded as given. The ledger does not check that they point at a thought
// that exists.
//
// # Validation
//
// [Submission.Validate] enforces presence and range constraints.
// [DecodeSubmission] validates raw JSON against [SubmissionSchema] first, so
// missing and mistyped fields are reported precisely. Every failure is a
// [*ValidationError] (matching [ErrValidation]) and leaves the ledger unchanged.
//
// # Archiving
//
// An [Archiver] receives a copy of each entry without ever blocking a
// submission. [SoyArchive] writes entries to Postgres for auditing. The ledger
// never reloads from an archive.
//
// # Display
//
// [Renderer] draws each entry as a labeled box (thought, revision or branch),
// the way an interactive host shows reasoning on stderr.
//
// # Observability
//
// The ledger emits capitan signals for every change. See [signals.go] for
// LedgerCreated, EntryRecorded, EntryRejected, BranchCreated, TotalExtended,
// ArchiveFailed and ArchiveDropped.
package stepwise
