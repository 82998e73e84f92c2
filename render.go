package stepwise

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Renderer writes a boxed, human-readable view of each recorded entry.
// Hosts that speak a protocol on stdout point it at stderr.
type Renderer struct {
	out      io.Writer
	colorize bool
	mu       sync.Mutex
}

// NewRenderer creates a renderer writing to out. When colorize is false
// no ANSI escapes are emitted.
func NewRenderer(out io.Writer, colorize bool) *Renderer {
	return &Renderer{out: out, colorize: colorize}
}

// Render writes one entry. Concurrent calls do not interleave.
func (r *Renderer) Render(e Entry) error {
	box := FormatEntry(e, r.colorize)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := fmt.Fprintln(r.out, box); err != nil {
		return fmt.Errorf("render entry: %w", err)
	}
	return nil
}

// FormatEntry renders an entry as a box whose header names its kind and
// progress, e.g. "💭 Thought 2/5" or "🌿 Branch 3/5 (from thought 1, ID: alt)".
func FormatEntry(e Entry, colorize bool) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{entryHeader(e, colorize)})
	tbl.AppendRow(table.Row{e.Thought})

	return tbl.Render()
}

func entryHeader(e Entry, colorize bool) string {
	var (
		prefix  string
		context string
		paint   *color.Color
	)

	label, onBranch := e.Branch()

	switch {
	case e.IsRevision:
		paint = color.New(color.FgYellow)
		prefix = "🔄 Revision"
		context = fmt.Sprintf(" (revising thought %s)", optionalNumber(e.RevisesThought))
	case e.BranchFromThought != nil || onBranch:
		paint = color.New(color.FgGreen)
		prefix = "🌿 Branch"
		context = fmt.Sprintf(" (from thought %s, ID: %s)", optionalNumber(e.BranchFromThought), orUnknown(label, onBranch))
	default:
		paint = color.New(color.FgBlue)
		prefix = "💭 Thought"
	}

	if colorize {
		paint.EnableColor()
	} else {
		paint.DisableColor()
	}

	return fmt.Sprintf("%s %d/%d%s", paint.Sprint(prefix), e.ThoughtNumber, e.TotalThoughts, context)
}

func optionalNumber(n *int) string {
	if n == nil {
		return "?"
	}
	return strconv.Itoa(*n)
}

func orUnknown(s string, ok bool) string {
	if !ok {
		return "?"
	}
	return s
}
