package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/zoobzio/stepwise"
)

// ErrNoArchive indicates audit was run without archive.dsn configured.
var ErrNoArchive = errors.New("audit requires archive.dsn")

// ErrNoSession indicates audit was run without --session.
var ErrNoSession = errors.New("--session is required")

// previewWidth bounds the thought column in audit listings.
const previewWidth = 60

// sessionArchive is the read side of the audit archive.
type sessionArchive interface {
	SessionEntries(ctx context.Context, sessionID string) ([]stepwise.Entry, error)
	Close() error
}

// openSessionArchive is replaced in tests.
var openSessionArchive = func(ctx context.Context, dsn string) (sessionArchive, error) {
	return stepwise.OpenSoyArchive(ctx, dsn)
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(opts *Options) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List a session's archived thoughts",
		Long: `Audit reads the Postgres archive configured by archive.dsn and lists the
thoughts recorded under one ledger session, in recording order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			if sessionID == "" {
				return ErrNoSession
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}

			if cfg.Archive.DSN == "" {
				return ErrNoArchive
			}

			archive, err := openSessionArchive(cobraCmd.Context(), cfg.Archive.DSN)
			if err != nil {
				return err
			}
			defer archive.Close()

			entries, err := archive.SessionEntries(cobraCmd.Context(), sessionID)
			if err != nil {
				return err
			}

			renderAudit(cobraCmd.OutOrStdout(), entries, time.Now())

			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "ledger session ID to list")

	return cmd
}

// renderAudit writes entries as a table with times relative to now.
func renderAudit(w io.Writer, entries []stepwise.Entry, now time.Time) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "Thought", "Kind", "Branch", "Progress", "Recorded"})

	branches := make(map[string]struct{})

	for _, e := range entries {
		label, onBranch := e.Branch()
		if onBranch {
			branches[label] = struct{}{}
		}

		tbl.AppendRow(table.Row{
			e.Sequence,
			preview(e.Thought),
			entryKind(e),
			label,
			fmt.Sprintf("%d/%d", e.ThoughtNumber, e.TotalThoughts),
			humanize.RelTime(e.RecordedAt, now, "ago", "from now"),
		})
	}

	tbl.AppendFooter(table.Row{
		"", humanize.Comma(int64(len(entries))) + " thoughts",
		"", strconv.Itoa(len(branches)) + " branches", "", "",
	})

	tbl.Render()
}

func entryKind(e stepwise.Entry) string {
	_, onBranch := e.Branch()

	switch {
	case e.IsRevision:
		if e.RevisesThought != nil {
			return "revision of " + strconv.Itoa(*e.RevisesThought)
		}
		return "revision"
	case onBranch || e.BranchFromThought != nil:
		return "branch"
	default:
		return "thought"
	}
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= previewWidth {
		return s
	}

	return string(runes[:previewWidth-1]) + "…"
}
