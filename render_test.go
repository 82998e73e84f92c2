package stepwise

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFormatEntry_Headers(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "plain thought",
			entry: Entry{Thought: "consider inputs", ThoughtNumber: 2, TotalThoughts: 5},
			want:  "💭 Thought 2/5",
		},
		{
			name:  "revision",
			entry: Entry{Thought: "rethink", ThoughtNumber: 3, TotalThoughts: 5, IsRevision: true, RevisesThought: intPtr(1)},
			want:  "🔄 Revision 3/5 (revising thought 1)",
		},
		{
			name:  "revision without target",
			entry: Entry{Thought: "rethink", ThoughtNumber: 3, TotalThoughts: 5, IsRevision: true},
			want:  "🔄 Revision 3/5 (revising thought ?)",
		},
		{
			name:  "branch",
			entry: Entry{Thought: "alt", ThoughtNumber: 3, TotalThoughts: 5, BranchFromThought: intPtr(1), BranchID: stringPtr("alt")},
			want:  "🌿 Branch 3/5 (from thought 1, ID: alt)",
		},
		{
			name:  "branch label only",
			entry: Entry{Thought: "alt", ThoughtNumber: 2, TotalThoughts: 3, BranchID: stringPtr("alt")},
			want:  "🌿 Branch 2/3 (from thought ?, ID: alt)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := FormatEntry(tt.entry, false)
			if !strings.Contains(box, tt.want) {
				t.Errorf("expected header %q in:\n%s", tt.want, box)
			}
			if !strings.Contains(box, tt.entry.Thought) {
				t.Errorf("expected thought %q in:\n%s", tt.entry.Thought, box)
			}
			if strings.Contains(box, "\x1b[") {
				t.Error("expected no ANSI escapes when colorize is false")
			}
		})
	}
}

func TestFormatEntry_Colorize(t *testing.T) {
	box := FormatEntry(Entry{Thought: "x", ThoughtNumber: 1, TotalThoughts: 1}, true)
	if !strings.Contains(box, "\x1b[") {
		t.Error("expected ANSI escapes when colorize is true")
	}
}

func TestRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	if err := r.Render(Entry{Thought: "first", ThoughtNumber: 1, TotalThoughts: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Render(Entry{Thought: "second", ThoughtNumber: 2, TotalThoughts: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Error("expected entries in render order")
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("expected trailing newline")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderer_WriteError(t *testing.T) {
	r := NewRenderer(failingWriter{}, false)
	if err := r.Render(Entry{Thought: "x", ThoughtNumber: 1, TotalThoughts: 1}); err == nil {
		t.Error("expected write error")
	}
}
