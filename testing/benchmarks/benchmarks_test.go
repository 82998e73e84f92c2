package benchmarks_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/zoobzio/stepwise"
	stepwisetest "github.com/zoobzio/stepwise/testing"
)

func BenchmarkLedgerCreation(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = stepwise.NewLedger()
	}
}

func BenchmarkSubmit(b *testing.B) {
	ctx := context.Background()
	ledger := stepwise.NewLedger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := ledger.Submit(ctx, stepwisetest.Step("benchmark thought", i+1, i+1, true))
		if err != nil {
			b.Fatalf("failed to submit: %v", err)
		}
	}
}

func BenchmarkSubmitBranched(b *testing.B) {
	ctx := context.Background()
	ledger := stepwise.NewLedger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		label := fmt.Sprintf("branch_%d", i%10)
		s := stepwisetest.OnBranch(stepwisetest.Step("benchmark thought", i+1, 10, true), label, 1)
		if _, err := ledger.Submit(ctx, s); err != nil {
			b.Fatalf("failed to submit: %v", err)
		}
	}
}

func BenchmarkSubmitRejected(b *testing.B) {
	ctx := context.Background()
	ledger := stepwise.NewLedger()
	invalid := stepwisetest.Step("", 0, 1, true)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ledger.Submit(ctx, invalid); err == nil {
			b.Fatal("expected validation error")
		}
	}
}

func BenchmarkSubmitArchived(b *testing.B) {
	ctx := context.Background()
	archiver := stepwise.NewArchiver(stepwisetest.NewMockArchive(), b.N+1)
	defer archiver.Close()
	ledger := stepwise.NewLedger(stepwise.WithArchiver(archiver))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ledger.Submit(ctx, stepwisetest.Step("benchmark thought", i+1, i+1, true)); err != nil {
			b.Fatalf("failed to submit: %v", err)
		}
	}
}

func BenchmarkHistory(b *testing.B) {
	ctx := context.Background()
	ledger := stepwise.NewLedger()

	// Pre-populate with entries.
	for i := 0; i < 100; i++ {
		_, _ = ledger.Submit(ctx, stepwisetest.Step("benchmark thought", i+1, 100, true))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ledger.History()
	}
}

func BenchmarkDecodeSubmission(b *testing.B) {
	raw := []byte(`{"thought":"step","thoughtNumber":2,"totalThoughts":3,"nextThoughtNeeded":true,"branchId":"alt"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := stepwise.DecodeSubmission(raw); err != nil {
			b.Fatalf("failed to decode: %v", err)
		}
	}
}

func BenchmarkFormatEntry(b *testing.B) {
	ctx := context.Background()
	ledger := stepwise.NewLedger()
	entry, _, err := ledger.Record(ctx, stepwisetest.Step("benchmark thought that might be somewhat longer", 1, 3, true))
	if err != nil {
		b.Fatalf("failed to record: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = stepwise.FormatEntry(entry, false)
	}
}
