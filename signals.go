package stepwise

import "github.com/zoobzio/capitan"

// Signal definitions for ledger events.
// Signals follow the pattern: stepwise.<entity>.<event>.
var (
	// Ledger lifecycle signals.
	LedgerCreated = capitan.NewSignal(
		"stepwise.ledger.created",
		"Empty thought ledger initialized for this process",
	)

	// Entry signals.
	EntryRecorded = capitan.NewSignal(
		"stepwise.entry.recorded",
		"Thought entry appended to history",
	)
	EntryRejected = capitan.NewSignal(
		"stepwise.entry.rejected",
		"Thought submission failed validation; ledger unchanged",
	)

	// Progress signals.
	BranchCreated = capitan.NewSignal(
		"stepwise.branch.created",
		"First entry filed under a new branch label",
	)
	TotalExtended = capitan.NewSignal(
		"stepwise.total.extended",
		"Declared total raised to match the thought number",
	)

	// Archive signals.
	ArchiveFailed = capitan.NewSignal(
		"stepwise.archive.failed",
		"Entry could not be written to the audit archive",
	)
	ArchiveDropped = capitan.NewSignal(
		"stepwise.archive.dropped",
		"Archive queue full; entry skipped",
	)
)

// Field keys for ledger event data.
var (
	// Identity.
	FieldSessionID = capitan.NewStringKey("session_id")
	FieldEntryID   = capitan.NewStringKey("entry_id")

	// Entry metadata.
	FieldThoughtNumber = capitan.NewIntKey("thought_number")
	FieldTotalThoughts = capitan.NewIntKey("total_thoughts")
	FieldDeclaredTotal = capitan.NewIntKey("declared_total")
	FieldBranchID      = capitan.NewStringKey("branch_id")
	FieldContentSize   = capitan.NewIntKey("content_size") // character count

	// Ledger counters.
	FieldHistoryLength = capitan.NewIntKey("history_length")
	FieldBranchCount   = capitan.NewIntKey("branch_count")

	// Rejections.
	FieldRejectedField = capitan.NewStringKey("rejected_field")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)
