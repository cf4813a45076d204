// Package main provides the CLI entrypoint for morfo.
package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/morfo/internal/config"
	"github.com/verte-zerg/morfo/internal/grammeme"
	"github.com/verte-zerg/morfo/internal/ingest"
	"github.com/verte-zerg/morfo/internal/model"
	"github.com/verte-zerg/morfo/internal/remote"
	"github.com/verte-zerg/morfo/internal/tui"
	"github.com/verte-zerg/morfo/internal/workflow"
)

const (
	defaultTimeout  = time.Duration(0)
	defaultAutoload = false
	defaultMirror   = true
)

var (
	serverURL     string
	serverTimeout time.Duration

	rootFile string
	rootLoad bool

	decomposeFile string

	traitGender string
	traitNumber string
	traitCase   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "morfo",
		Short:         "Client for a Russian morphology service",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runWorkbenchCmd,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", remote.DefaultURL, "morphology service base URL")
	rootCmd.PersistentFlags().DurationVar(&serverTimeout, "timeout", defaultTimeout, "request timeout (0 waits indefinitely)")
	rootCmd.Flags().StringVar(&rootFile, "file", "", "text file to prefill the sentence input")
	rootCmd.Flags().BoolVar(&rootLoad, "load", defaultAutoload, "pull the dictionary on start")

	rootCmd.AddCommand(newDecomposeCmd())
	rootCmd.AddCommand(newMorphCmd())
	rootCmd.AddCommand(newDictCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func runWorkbenchCmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the workbench needs a terminal; see morfo --help for scriptable commands")
	}
	cfg, fileCfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyBoolConfig(cmd, "load", &rootLoad, fileCfg.Dictionary.Autoload)
	cfg.Autoload = rootLoad

	sentence := ""
	if rootFile != "" {
		sentence, err = ingest.LoadText(rootFile)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", rootFile, err)
		}
	}

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "morfo")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			// Best-effort close for the log file.
			_ = cerr
		}
	}()

	ctx := cmd.Context()
	s, err := openSession(ctx, cfg, log.Default())
	if err != nil {
		return err
	}
	defer s.Close()

	m := tui.NewModel(ctx, s.orch, tui.Options{Sentence: sentence, Autoload: cfg.Autoload})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newDecomposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompose [SENTENCE]",
		Short: "Decompose a sentence into lexemes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDecomposeCmd,
	}
	cmd.Flags().StringVar(&decomposeFile, "file", "", "read the sentence from a text file")
	return cmd
}

func runDecomposeCmd(cmd *cobra.Command, args []string) error {
	sentence, err := sentenceInput(args)
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

	d, err := s.orch.Decompose(ctx, sentence)
	if len(d.Analyses) == 0 && err != nil {
		return fmt.Errorf("failed to decompose: %w", err)
	}
	if _, werr := fmt.Fprintln(cmd.OutOrStdout(), workflow.FormatDecomposition(d)); werr != nil {
		return fmt.Errorf("failed to write output: %w", werr)
	}
	if err != nil {
		logErrf("warning: dictionary reload failed: %v\n", err)
	}
	return nil
}

func sentenceInput(args []string) (string, error) {
	switch {
	case decomposeFile != "" && len(args) > 0:
		return "", fmt.Errorf("pass either a sentence or --file, not both")
	case decomposeFile != "":
		text, err := ingest.LoadText(decomposeFile)
		if err != nil {
			return "", fmt.Errorf("failed to load %s: %w", decomposeFile, err)
		}
		return text, nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("a sentence or --file is required")
	}
}

func newMorphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "morph WORD",
		Short: "Inflect a word by gender, number and case",
		Args:  cobra.ExactArgs(1),
		RunE:  runMorphCmd,
	}
	addTraitFlags(cmd)
	return cmd
}

func runMorphCmd(cmd *cobra.Command, args []string) error {
	sel, err := traitSelection()
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

	res, err := s.orch.Morph(ctx, args[0], sel)
	if err != nil {
		return fmt.Errorf("failed to morph: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), workflow.FormatMorph(res)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func addTraitFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&traitGender, "gender", "", "gender: "+traitHelp(grammeme.Gender))
	cmd.Flags().StringVar(&traitNumber, "number", "", "number: "+traitHelp(grammeme.Number))
	cmd.Flags().StringVar(&traitCase, "case", "", "case: "+traitHelp(grammeme.Case))
}

func traitHelp(c grammeme.Category) string {
	values := grammeme.Values(c)
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, v.Code)
	}
	return strings.Join(parts, ", ") + " (or the Russian label)"
}

func traitSelection() (model.TraitSelection, error) {
	sel := model.TraitSelection{Gender: traitGender, Number: traitNumber, Case: traitCase}
	if err := grammeme.Validate(sel); err != nil {
		return model.TraitSelection{}, err
	}
	return sel, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return err
		},
	}
}

func versionString() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "morfo dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				version = s.Value[:7]
				break
			}
		}
	}
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	return fmt.Sprintf("morfo %s", version)
}

// loadSettings merges the config file into flags that were not set explicitly.
func loadSettings(cmd *cobra.Command) (model.Config, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &serverURL, fileCfg.Server.URL)
	applyDurationConfig(cmd, "timeout", &serverTimeout, fileCfg.Server.Timeout)

	cfg := model.Config{
		ServerURL: serverURL,
		Timeout:   serverTimeout,
		Autoload:  defaultAutoload,
		Mirror:    defaultMirror,
	}
	if fileCfg.Dictionary.Autoload != nil {
		cfg.Autoload = *fileCfg.Dictionary.Autoload
	}
	if fileCfg.Dictionary.Mirror != nil {
		cfg.Mirror = *fileCfg.Dictionary.Mirror
	}
	if fileCfg.Log.File != nil {
		cfg.LogFile = *fileCfg.Log.File
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, config.FileConfig{}, err
	}
	return cfg, fileCfg, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target, value *time.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# morfo configuration
# Uncomment a value to enable it. CLI flags override config values.

[server]
# url = %q   # Morphology service base URL
# timeout = %q                    # Request timeout, "0s" waits indefinitely

[dictionary]
# autoload = %t   # Pull the dictionary when the workbench starts
# mirror = %t      # Keep a local SQLite copy of pulled and pushed dictionaries

[log]
# file = %q   # Workbench log file
`,
		remote.DefaultURL,
		defaultTimeout.String(),
		defaultAutoload,
		defaultMirror,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return fmt.Errorf("--server must not be empty")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
