package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/stepwise"
)

// ErrRejected reports that at least one scripted thought failed validation.
var ErrRejected = errors.New("replay had rejected thoughts")

// NewReplayCommand creates the replay command.
func NewReplayCommand(opts *Options) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Feed a scripted list of thoughts through a fresh ledger",
		Long: `Replay reads a YAML or JSON list of thought submissions and submits
them in order to a fresh, in-memory ledger. Each summary is printed to stdout
as one JSON line; rejected items are reported to stderr and skipped.

Example script:
  - thought: Break the problem down
    thoughtNumber: 1
    totalThoughts: 3
    nextThoughtNeeded: true
  - thought: Try the alternative
    thoughtNumber: 2
    totalThoughts: 3
    nextThoughtNeeded: true
    branchId: alt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			var renderer *stepwise.Renderer
			if !quiet && !cfg.Display.DisableThoughtLogging {
				renderer = stepwise.NewRenderer(cobraCmd.ErrOrStderr(), cfg.Display.Color)
			}

			return replay(cobraCmd.Context(), raw, stepwise.NewLedger(), renderer,
				cobraCmd.OutOrStdout(), cobraCmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not draw thought boxes")

	return cmd
}

// decodeScript parses a YAML (or JSON) list of submission documents. Each
// item is re-encoded as JSON so it is checked by DecodeSubmission exactly
// like a tool call.
func decodeScript(raw []byte) ([]json.RawMessage, error) {
	var items []map[string]any
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	docs := make([]json.RawMessage, len(items))
	for i, item := range items {
		doc, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		docs[i] = doc
	}

	return docs, nil
}

func replay(
	ctx context.Context,
	raw []byte,
	ledger *stepwise.Ledger,
	renderer *stepwise.Renderer,
	out, errOut io.Writer,
) error {
	docs, err := decodeScript(raw)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	rejected := 0

	for i, doc := range docs {
		submission, err := stepwise.DecodeSubmission(doc)
		if err == nil {
			var (
				entry   stepwise.Entry
				summary stepwise.Summary
			)

			entry, summary, err = ledger.Record(ctx, submission)
			if err == nil {
				if renderer != nil {
					if renderErr := renderer.Render(entry); renderErr != nil {
						return renderErr
					}
				}

				if encErr := enc.Encode(summary); encErr != nil {
					return fmt.Errorf("write summary: %w", encErr)
				}

				continue
			}
		}

		rejected++
		fmt.Fprintf(errOut, "item %d: %v\n", i+1, err)
	}

	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRejected, rejected, len(docs))
	}

	return nil
}
