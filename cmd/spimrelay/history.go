package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/mschirtzinger/spimrelay/internal/config"
	"github.com/mschirtzinger/spimrelay/internal/journal"
	"github.com/mschirtzinger/spimrelay/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently copied and failed files from the journal",
	Long: `List entries from the transfer journal, newest first.

--since accepts a duration ("90m"), an RFC 3339 timestamp, or natural
language such as "2 hours ago" or "yesterday".

Examples:
  spimrelay history
  spimrelay history --since "2 hours ago"
  spimrelay history --since 30m --limit 20
  spimrelay history --jsonl > transfers.jsonl`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sinceText, _ := cmd.Flags().GetString("since")
		limit, _ := cmd.Flags().GetInt("limit")
		jsonl, _ := cmd.Flags().GetBool("jsonl")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		since, err := parseSince(sinceText, time.Now())
		if err != nil {
			return err
		}
		if jsonl {
			return exportHistory(cmd.Context(), cmd.OutOrStdout(), cfg, since)
		}
		return runHistory(cmd.OutOrStdout(), cfg, since, limit)
	},
}

func init() {
	historyCmd.Flags().String("since", "", `only entries after this time, e.g. "2 hours ago"`)
	historyCmd.Flags().Int("limit", 50, "maximum number of entries (0 for all)")
	historyCmd.Flags().Bool("jsonl", false, "write every matching entry as JSON lines, oldest first")
	rootCmd.AddCommand(historyCmd)
}

var timeParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseSince turns user input into a lower time bound. Empty input means
// no bound.
func parseSince(text string, now time.Time) (time.Time, error) {
	if text == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(text); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}

	r, err := timeParser.Parse(text, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: %w", text, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: not a recognizable time", text)
	}
	return r.Time, nil
}

// openExistingJournal opens the configured journal. It returns nil without
// error when no journal file has been written yet.
func openExistingJournal(cfg *config.Config) (*journal.Journal, error) {
	if !cfg.JournalEnabled() {
		return nil, errors.New("journal is disabled (SPIMRELAY_JOURNAL=off)")
	}

	path := cfg.Journal
	if path == "" {
		var err error
		if path, err = journal.DefaultPath(); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	j, err := journal.Open(path)
	if err != nil {
		return nil, err
	}
	if err := j.InitSchema(); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func exportHistory(ctx context.Context, w io.Writer, cfg *config.Config, since time.Time) error {
	j, err := openExistingJournal(cfg)
	if err != nil || j == nil {
		return err
	}
	defer j.Close()

	_, err = j.ExportJSONL(ctx, w, since)
	return err
}

func runHistory(w io.Writer, cfg *config.Config, since time.Time, limit int) error {
	j, err := openExistingJournal(cfg)
	if err != nil {
		return err
	}
	if j == nil {
		fmt.Fprintln(w, "No transfers recorded yet")
		return nil
	}
	defer j.Close()

	entries, err := j.Recent(since, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No transfers recorded in this period")
		return nil
	}

	for _, e := range entries {
		ok := e.Status == journal.StatusCopied
		fmt.Fprintf(w, "%s %s %-9s %s\n",
			ui.StatusIcon(ok),
			ui.RenderMuted(e.RecordedAt.Format("2006-01-02 15:04:05")),
			e.Trigger,
			e.Source,
		)
		if ok {
			fmt.Fprintf(w, "    -> %s\n", ui.RenderAccent(e.Destination))
		} else {
			fmt.Fprintf(w, "    %s\n", ui.RenderFail(e.Error))
		}
	}

	copied, failed, err := j.Counts()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nJournal total: %s copied, %s failed\n",
		ui.RenderPass(fmt.Sprint(copied)), ui.RenderFail(fmt.Sprint(failed)))
	return nil
}
