package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricEntriesRecorded = "stepwise.ledger.entries.recorded"
	metricEntriesRejected = "stepwise.ledger.entries.rejected"
	metricBranchesCreated = "stepwise.ledger.branches.created"
	metricTotalsExtended  = "stepwise.ledger.totals.extended"
	metricThoughtSize     = "stepwise.ledger.thought.size"
	metricArchiveFailures = "stepwise.archive.failures"
	metricArchiveDrops    = "stepwise.archive.drops"

	attrField  = "field"
	attrBranch = "branched"
)

// thoughtSizeBoundaries covers a one-line note up to a long essay, in characters.
var thoughtSizeBoundaries = []float64{32, 128, 512, 1024, 4096, 16384}

// LedgerMetrics holds the OTel instruments fed by ledger signals.
type LedgerMetrics struct {
	entriesRecorded metric.Int64Counter
	entriesRejected metric.Int64Counter
	branchesCreated metric.Int64Counter
	totalsExtended  metric.Int64Counter
	thoughtSize     metric.Int64Histogram
	archiveFailures metric.Int64Counter
	archiveDrops    metric.Int64Counter
}

// NewLedgerMetrics creates ledger instruments from the given meter.
func NewLedgerMetrics(mt metric.Meter) (*LedgerMetrics, error) {
	var (
		lm  LedgerMetrics
		err error
	)

	counters := []struct {
		name string
		desc string
		unit string
		dst  *metric.Int64Counter
	}{
		{metricEntriesRecorded, "Thought entries appended to history", "{entry}", &lm.entriesRecorded},
		{metricEntriesRejected, "Thought submissions rejected by validation", "{entry}", &lm.entriesRejected},
		{metricBranchesCreated, "Branch labels seen for the first time", "{branch}", &lm.branchesCreated},
		{metricTotalsExtended, "Submissions whose total was raised to the thought number", "{entry}", &lm.totalsExtended},
		{metricArchiveFailures, "Entries the archive failed to write", "{entry}", &lm.archiveFailures},
		{metricArchiveDrops, "Entries skipped because the archive queue was full", "{entry}", &lm.archiveDrops},
	}

	for _, c := range counters {
		*c.dst, err = mt.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}
	}

	lm.thoughtSize, err = mt.Int64Histogram(metricThoughtSize,
		metric.WithDescription("Thought length in characters"),
		metric.WithUnit("{char}"),
		metric.WithExplicitBucketBoundaries(thoughtSizeBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricThoughtSize, err)
	}

	return &lm, nil
}

// RecordEntry counts one appended entry and its size.
func (lm *LedgerMetrics) RecordEntry(ctx context.Context, branched bool, size int) {
	attrs := metric.WithAttributes(attribute.Bool(attrBranch, branched))
	lm.entriesRecorded.Add(ctx, 1, attrs)
	lm.thoughtSize.Record(ctx, int64(size), attrs)
}

// RecordRejection counts one rejected submission by offending field.
func (lm *LedgerMetrics) RecordRejection(ctx context.Context, field string) {
	lm.entriesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String(attrField, field)))
}

// RecordBranch counts one newly created branch.
func (lm *LedgerMetrics) RecordBranch(ctx context.Context) {
	lm.branchesCreated.Add(ctx, 1)
}

// RecordExtension counts one total raised by normalization.
func (lm *LedgerMetrics) RecordExtension(ctx context.Context) {
	lm.totalsExtended.Add(ctx, 1)
}

// RecordArchiveFailure counts one failed archive write.
func (lm *LedgerMetrics) RecordArchiveFailure(ctx context.Context) {
	lm.archiveFailures.Add(ctx, 1)
}

// RecordArchiveDrop counts one entry dropped by the archiver.
func (lm *LedgerMetrics) RecordArchiveDrop(ctx context.Context) {
	lm.archiveDrops.Add(ctx, 1)
}
