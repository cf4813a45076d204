package main

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/morfo/internal/dictionary"
	"github.com/verte-zerg/morfo/internal/model"
	"github.com/verte-zerg/morfo/internal/stats"
	"github.com/verte-zerg/morfo/internal/workflow"
)

var (
	dictFilter string
	editWord   string

	historyKind  string
	historyLast  int
	historySince string

	statsTop  int
	statsDays int
)

func newDictCmd() *cobra.Command {
	dictCmd := &cobra.Command{
		Use:   "dict",
		Short: "Inspect and change the service dictionary",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List dictionary entries",
		Args:  cobra.NoArgs,
		RunE:  runDictListCmd,
	}
	listCmd.Flags().StringVar(&dictFilter, "filter", "", "only lexemes containing this text")

	addCmd := &cobra.Command{
		Use:   "add LEXEME",
		Short: "Add a lexeme using the service word info",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictAddCmd,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete LEXEME",
		Short: "Delete a lexeme",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictDeleteCmd,
	}

	editCmd := &cobra.Command{
		Use:   "edit LEXEME",
		Short: "Replace a lexeme with an inflected word",
		Long:  "Morphs --word (default LEXEME) by the given traits, fetches its word info and stores it in place of LEXEME.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictEditCmd,
	}
	editCmd.Flags().StringVar(&editWord, "word", "", "word to inflect (defaults to LEXEME)")
	addTraitFlags(editCmd)

	pullCmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull the service dictionary into the local mirror",
		Args:  cobra.NoArgs,
		RunE:  runDictPullCmd,
	}

	dictCmd.AddCommand(listCmd, addCmd, deleteCmd, editCmd, pullCmd)
	return dictCmd
}

func runDictListCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := openSession(ctx, cfg, log.Default())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.loadDictionary(ctx); err != nil {
		return err
	}
	view := s.orch.Search(dictFilter)
	if view.Len() == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No entries.")
		return err
	}
	writeEntries(cmd.OutOrStdout(), view.Items())
	return nil
}

func writeEntries(w io.Writer, items []dictionary.Item) {
	tbl := table.New("Lexeme", "Stem", "Ending", "Features").
		WithWriter(w).
		WithWidthFunc(runewidth.StringWidth)
	for _, item := range items {
		stem, ending := "-", "-"
		if item.Entry.HasStem() {
			stem, ending = *item.Entry.Stem, *item.Entry.Ending
		}
		tbl.AddRow(item.Lexeme, stem, ending, strings.Join(item.Entry.Features, ", "))
	}
	tbl.Print()
}

func runDictAddCmd(cmd *cobra.Command, args []string) error {
	return withLoadedSession(cmd, func(s *session) error {
		entry, err := s.orch.AddLexeme(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to add %q: %w", args[0], err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], dictionary.Describe(entry))
		return err
	})
}

func runDictDeleteCmd(cmd *cobra.Command, args []string) error {
	return withLoadedSession(cmd, func(s *session) error {
		if !s.orch.Store().Has(args[0]) {
			return fmt.Errorf("failed to delete %q: %w", args[0], workflow.ErrUnknownLexeme)
		}
		s.orch.DeleteLexeme(args[0])
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return err
	})
}

func runDictEditCmd(cmd *cobra.Command, args []string) error {
	sel, err := traitSelection()
	if err != nil {
		return err
	}
	word := editWord
	if word == "" {
		word = args[0]
	}
	return withLoadedSession(cmd, func(s *session) error {
		if err := s.orch.SelectLexeme(args[0]); err != nil {
			return fmt.Errorf("failed to select %q: %w", args[0], err)
		}
		res, err := s.orch.EditAndRegenerate(cmd.Context(), word, sel)
		if err != nil {
			return fmt.Errorf("failed to edit %q: %w", args[0], err)
		}
		entry, _ := s.orch.Store().Get(res.Morphed)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %s\n", args[0], res.Morphed, dictionary.Describe(entry))
		return err
	})
}

func runDictPullCmd(cmd *cobra.Command, _ []string) error {
	return withLoadedSession(cmd, func(s *session) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d entries\n", s.orch.Store().Len())
		return err
	})
}

// withLoadedSession runs fn after a successful pull. Mutations never start
// from the mirror so a push cannot overwrite newer service state.
func withLoadedSession(cmd *cobra.Command, fn func(*session) error) error {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := openSession(ctx, cfg, log.Default())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.orch.Load(ctx); err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}
	return fn(s)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded lookups",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyKind, "kind", "", "filter by kind (decompose, morph)")
	cmd.Flags().IntVar(&historyLast, "last", 20, "number of most recent lookups (0 for all)")
	cmd.Flags().StringVar(&historySince, "since", "", "only lookups on or after YYYY-MM-DD")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	hc, err := historyConfig()
	if err != nil {
		return err
	}
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := openSession(ctx, cfg, log.Default())
	if err != nil {
		return err
	}
	defer s.Close()

	lookups, err := s.store.ListLookups(ctx, hc)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(lookups) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No lookups recorded.")
		return err
	}
	writeLookups(cmd.OutOrStdout(), lookups)
	return nil
}

func historyConfig() (model.HistoryConfig, error) {
	switch historyKind {
	case "", model.LookupDecompose, model.LookupMorph:
	default:
		return model.HistoryConfig{}, fmt.Errorf("--kind must be %q or %q", model.LookupDecompose, model.LookupMorph)
	}
	if historyLast < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	hc := model.HistoryConfig{Kind: historyKind, Last: historyLast}
	if historySince != "" {
		since, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since %q: %w", historySince, err)
		}
		hc.Since = &since
	}
	return hc, nil
}

func writeLookups(w io.Writer, lookups []model.Lookup) {
	tbl := table.New("Time", "Kind", "Input", "Traits", "Result").
		WithWriter(w).
		WithWidthFunc(runewidth.StringWidth)
	for _, l := range lookups {
		result := l.Result
		if !l.OK {
			result = "error: " + result
		}
		tbl.AddRow(
			l.CreatedAt.Local().Format("2006-01-02 15:04"),
			l.Kind,
			runewidth.Truncate(l.Input, 40, "..."),
			strings.Join(l.Traits, ","),
			runewidth.Truncate(result, 40, "..."),
		)
	}
	tbl.Print()
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the dictionary and lookup history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsTop, "top", 10, "number of most frequent features")
	cmd.Flags().IntVar(&statsDays, "days", 14, "days of lookup activity (0 to hide)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsTop < 0 || statsDays < 0 {
		return fmt.Errorf("--top and --days must be >= 0")
	}
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := openSession(ctx, cfg, log.Default())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.loadDictionary(ctx); err != nil {
		logErrln("warning: dictionary unavailable; showing history only")
	}
	report, err := stats.BuildReport(ctx, s.store, s.orch.Store().Snapshot(), stats.ReportConfig{
		Top:  statsTop,
		Days: statsDays,
	})
	if err != nil {
		return fmt.Errorf("failed to build stats: %w", err)
	}
	return report.Render(cmd.OutOrStdout())
}
