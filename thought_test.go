package stepwise

import "testing"

func TestNormalize(t *testing.T) {
	s := step("x", 5, 3, false)
	s.IsRevision = boolPtr(true)
	s.RevisesThought = intPtr(2)

	e := normalize(s)

	if e.TotalThoughts != 5 || e.DeclaredTotal != 3 {
		t.Errorf("expected total 5 declared 3, got %d and %d", e.TotalThoughts, e.DeclaredTotal)
	}
	if !e.Extended() {
		t.Error("expected Extended to report true")
	}
	if !e.IsRevision {
		t.Error("expected IsRevision true")
	}
	if e.NeedsMoreThoughts {
		t.Error("expected NeedsMoreThoughts false")
	}

	*s.RevisesThought = 9
	if *e.RevisesThought != 2 {
		t.Error("expected normalize to copy pointer fields")
	}
}

func TestNormalize_OptionalDefaults(t *testing.T) {
	e := normalize(step("x", 1, 4, true))

	if e.IsRevision {
		t.Error("expected IsRevision false when absent")
	}
	if e.RevisesThought != nil || e.BranchFromThought != nil || e.BranchID != nil {
		t.Error("expected absent references to stay nil")
	}
	if e.Extended() {
		t.Error("expected Extended false when total is unchanged")
	}
}

func TestEntryBranch(t *testing.T) {
	tests := []struct {
		name      string
		branchID  *string
		wantLabel string
		wantOK    bool
	}{
		{"no label", nil, "", false},
		{"empty label", stringPtr(""), "", false},
		{"label", stringPtr("alt"), "alt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := Entry{BranchID: tt.branchID}.Branch()
			if label != tt.wantLabel || ok != tt.wantOK {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.wantLabel, tt.wantOK, label, ok)
			}
		})
	}
}

func TestEntryClone(t *testing.T) {
	original := Entry{
		Thought:           "x",
		RevisesThought:    intPtr(1),
		BranchFromThought: intPtr(2),
		BranchID:          stringPtr("alt"),
	}

	clone := original.Clone()
	*clone.RevisesThought = 10
	*clone.BranchFromThought = 20
	*clone.BranchID = "changed"

	if *original.RevisesThought != 1 || *original.BranchFromThought != 2 || *original.BranchID != "alt" {
		t.Errorf("expected original untouched, got %+v", original)
	}
}
