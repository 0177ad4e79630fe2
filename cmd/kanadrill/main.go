// Package main provides the CLI entrypoint for kanadrill.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/kanadrill/internal/config"
	"github.com/verte-zerg/kanadrill/internal/model"
	"github.com/verte-zerg/kanadrill/internal/quiz"
	"github.com/verte-zerg/kanadrill/internal/shuffle"
	"github.com/verte-zerg/kanadrill/internal/stats"
	"github.com/verte-zerg/kanadrill/internal/statsui"
	"github.com/verte-zerg/kanadrill/internal/store"
	"github.com/verte-zerg/kanadrill/internal/tui"
	"github.com/verte-zerg/kanadrill/internal/vocab"
)

const (
	defaultSet         = "basic"
	defaultWeakTop     = 8
	defaultWeakWindow  = 20
	defaultCurveWindow = 10
)

var (
	practiceSet        string
	practiceVocabFile  string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakWindow int
	practiceSeed       int64

	statsSet         string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	resetYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kanadrill",
		Short:         "TUI hiragana flashcard trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceSet, "set", defaultSet, "built-in kana set (basic, dakuten, all)")
	rootCmd.Flags().StringVar(&practiceVocabFile, "vocab", "", "custom vocabulary file or name in the vocab directory")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "drill only the most missed kana")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak kana to focus on")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak kana")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "shuffle seed (0 = random)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSetsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "set", &practiceSet, fileCfg.Practice.Set)
	applyStringConfig(cmd, "vocab", &practiceVocabFile, fileCfg.Practice.VocabFile)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Practice.Seed)

	cfg := model.Config{
		Set:        strings.ToLower(strings.TrimSpace(practiceSet)),
		VocabFile:  strings.TrimSpace(practiceVocabFile),
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakWindow: practiceWeakWindow,
		Seed:       practiceSeed,
	}

	if err := validateConfig(cfg); err != nil {
		return err
	}

	v, err := loadVocabulary(cfg)
	if err != nil {
		return err
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m, err := tui.NewModel(tui.Deps{
		Config:   cfg,
		Vocab:    v,
		Order:    newShuffler(cfg.Seed),
		Log:      st,
		Recorder: st,
	})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newShuffler(seed int64) *shuffle.Shuffler {
	if seed == 0 {
		return shuffle.New()
	}
	return shuffle.NewSeeded(seed)
}

func loadVocabulary(cfg model.Config) (*vocab.Vocabulary, error) {
	if cfg.VocabFile == "" {
		return vocab.Builtin(cfg.Set)
	}
	path := resolveVocabPath(cfg.VocabFile)
	v, err := vocab.Load(path)
	if err != nil {
		return nil, vocabLoadError(path, err)
	}
	return v, nil
}

// resolveVocabPath maps a bare name to a file in the vocab directory.
func resolveVocabPath(name string) string {
	if strings.ContainsRune(name, filepath.Separator) || filepath.Ext(name) != "" {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(config.DefaultVocabDir(), name+".txt")
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

func newSetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sets",
		Short: "List built-in kana sets and custom vocabularies",
		Args:  cobra.NoArgs,
		RunE:  runSetsCmd,
	}
}

func runSetsCmd(cmd *cobra.Command, _ []string) error {
	return writeSets(cmd.OutOrStdout(), config.DefaultVocabDir())
}

func writeSets(w io.Writer, vocabDir string) error {
	for _, name := range vocab.SetNames() {
		v, err := vocab.Builtin(name)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\n", name, v.Len()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	entries, err := os.ReadDir(vocabDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read vocab directory: %w", err)
	}
	custom := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		custom = append(custom, strings.TrimSuffix(entry.Name(), ".txt"))
	}
	sort.Strings(custom)
	for _, name := range custom {
		if _, err := fmt.Fprintf(w, "%s\tcustom\n", name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSet, "set", "", "vocabulary set filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Set:         strings.ToLower(strings.TrimSpace(statsSet)),
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return writePlainStats(cmd.Context(), cmd.OutOrStdout(), st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writePlainStats(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.AccuracyLog, report.Sessions); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.AccuracyLog, cfg.CurveWindow); err != nil {
		return err
	}
	if len(report.AccuracyLog) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return stats.RenderKanaTable(w, report.KanaAggsWindow)
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the accuracy log and session history",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deletion of all stored stats")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		return fmt.Errorf("refusing to reset without --yes")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := st.ResetAll(ctx); err != nil {
		return fmt.Errorf("failed to reset stats: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s and session history\n", quiz.AccuracyKey); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
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

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
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
	return fmt.Sprintf(`# kanadrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# set = %q            # Built-in kana set: %s
# vocab-file = ""          # Custom vocabulary file (overrides set)
# focus-weak = false       # Drill only the most missed kana
# weak-top = %d             # Number of weak kana to focus on
# weak-window = %d         # Number of recent sessions to compute weak kana
# seed = 0                 # Shuffle seed (0 = random)

[stats]
# curve-window = %d        # Moving average window
`,
		defaultSet,
		strings.Join(vocab.SetNames(), ", "),
		defaultWeakTop,
		defaultWeakWindow,
		defaultCurveWindow,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.VocabFile == "" && cfg.Set == "" {
		return fmt.Errorf("--set must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	if cfg.FocusWeak && cfg.WeakTop == 0 {
		return fmt.Errorf("--weak-top must be > 0 with --focus-weak")
	}
	return nil
}

func vocabLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load vocabulary: %v", err),
		fmt.Sprintf("expected vocabulary at: %s", path),
		"Each line holds a kana and its romaji, e.g.: あ a",
		"Run: kanadrill sets",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
