package observability

import (
	"context"
	"log/slog"

	"github.com/zoobzio/capitan"

	"github.com/zoobzio/stepwise"
)

// SignalBridge forwards ledger signals to the structured logger and, when
// set, the ledger metrics. Close detaches every listener.
type SignalBridge struct {
	listeners []*capitan.Listener
}

// BridgeSignals hooks every ledger signal. metrics may be nil.
func BridgeSignals(logger *slog.Logger, metrics *LedgerMetrics) *SignalBridge {
	b := &SignalBridge{}

	b.hook(stepwise.LedgerCreated, func(ctx context.Context, e *capitan.Event) {
		session, _ := stepwise.FieldSessionID.From(e)
		logger.InfoContext(ctx, "ledger created", "session_id", session)
	})

	b.hook(stepwise.EntryRecorded, func(ctx context.Context, e *capitan.Event) {
		session, _ := stepwise.FieldSessionID.From(e)
		number, _ := stepwise.FieldThoughtNumber.From(e)
		total, _ := stepwise.FieldTotalThoughts.From(e)
		branch, _ := stepwise.FieldBranchID.From(e)
		size, _ := stepwise.FieldContentSize.From(e)
		length, _ := stepwise.FieldHistoryLength.From(e)

		logger.DebugContext(ctx, "thought recorded",
			"session_id", session,
			"thought_number", number,
			"total_thoughts", total,
			"branch_id", branch,
			"history_length", length,
		)

		if metrics != nil {
			metrics.RecordEntry(ctx, branch != "", size)
		}
	})

	b.hook(stepwise.EntryRejected, func(ctx context.Context, e *capitan.Event) {
		session, _ := stepwise.FieldSessionID.From(e)
		field, _ := stepwise.FieldRejectedField.From(e)
		err, _ := stepwise.FieldError.From(e)

		logger.WarnContext(ctx, "thought rejected",
			"session_id", session,
			"field", field,
			"error", err,
		)

		if metrics != nil {
			metrics.RecordRejection(ctx, field)
		}
	})

	b.hook(stepwise.BranchCreated, func(ctx context.Context, e *capitan.Event) {
		session, _ := stepwise.FieldSessionID.From(e)
		branch, _ := stepwise.FieldBranchID.From(e)
		count, _ := stepwise.FieldBranchCount.From(e)

		logger.InfoContext(ctx, "branch created",
			"session_id", session,
			"branch_id", branch,
			"branch_count", count,
		)

		if metrics != nil {
			metrics.RecordBranch(ctx)
		}
	})

	b.hook(stepwise.TotalExtended, func(ctx context.Context, e *capitan.Event) {
		declared, _ := stepwise.FieldDeclaredTotal.From(e)
		total, _ := stepwise.FieldTotalThoughts.From(e)

		logger.DebugContext(ctx, "total extended",
			"declared_total", declared,
			"total_thoughts", total,
		)

		if metrics != nil {
			metrics.RecordExtension(ctx)
		}
	})

	b.hook(stepwise.ArchiveFailed, func(ctx context.Context, e *capitan.Event) {
		entry, _ := stepwise.FieldEntryID.From(e)
		err, _ := stepwise.FieldError.From(e)

		logger.ErrorContext(ctx, "archive write failed", "entry_id", entry, "error", err)

		if metrics != nil {
			metrics.RecordArchiveFailure(ctx)
		}
	})

	b.hook(stepwise.ArchiveDropped, func(ctx context.Context, e *capitan.Event) {
		entry, _ := stepwise.FieldEntryID.From(e)

		logger.WarnContext(ctx, "archive queue full, entry dropped", "entry_id", entry)

		if metrics != nil {
			metrics.RecordArchiveDrop(ctx)
		}
	})

	return b
}

func (b *SignalBridge) hook(signal capitan.Signal, fn func(context.Context, *capitan.Event)) {
	b.listeners = append(b.listeners, capitan.Hook(signal, fn))
}

// Close detaches the bridge from every signal.
func (b *SignalBridge) Close() {
	for _, l := range b.listeners {
		l.Close()
	}
}
