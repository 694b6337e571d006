// Package main provides the CLI entrypoint for typeref.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeref/internal/config"
	"github.com/verte-zerg/typeref/internal/engine"
	"github.com/verte-zerg/typeref/internal/generator"
	"github.com/verte-zerg/typeref/internal/history"
	"github.com/verte-zerg/typeref/internal/logging"
	"github.com/verte-zerg/typeref/internal/metrics"
	"github.com/verte-zerg/typeref/internal/model"
	"github.com/verte-zerg/typeref/internal/server"
	"github.com/verte-zerg/typeref/internal/stats"
	"github.com/verte-zerg/typeref/internal/statsui"
	"github.com/verte-zerg/typeref/internal/store"
	"github.com/verte-zerg/typeref/internal/tui"
	"github.com/verte-zerg/typeref/internal/wordlist"
)

const (
	defaultCurveWindow = 5
	defaultLogLevel    = "info"
)

var (
	practiceMode        string
	practiceDuration    int
	practiceWords       int
	practiceCategory    string
	practiceNumbers     bool
	practicePunctuation bool
	practiceExpert      bool

	dbPath  string
	verbose bool

	statsLimit       int
	statsCurveWindow int

	serveAddr        string
	serveMaxSessions int

	loginUser string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typeref",
		Short:         "Typing practice on technical vocabulary",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.Flags().StringVar(&practiceMode, "mode", string(model.ModeTime), "test mode (time or words)")
	rootCmd.Flags().IntVar(&practiceDuration, "duration", model.DefaultDuration, "countdown length in seconds (time mode)")
	rootCmd.Flags().IntVar(&practiceWords, "words", model.DefaultWordTarget, "passage length in words (words mode)")
	rootCmd.Flags().StringVar(&practiceCategory, "category", "", "word bank to draw from")
	rootCmd.Flags().BoolVar(&practiceNumbers, "numbers", false, "append digits to some words")
	rootCmd.Flags().BoolVar(&practicePunctuation, "punct", false, "append punctuation to some words")
	rootCmd.Flags().BoolVar(&practiceExpert, "expert", false, "fail the session on the first wrong keystroke")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newCategoryCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// runtimeEnv holds what every command opens before doing its work.
type runtimeEnv struct {
	file   config.FileConfig
	store  *store.Store
	banks  generator.Banks
	logger *zap.Logger
}

// openEnv loads the config file, the logger, the word banks and the store.
// The interactive commands log to a file so the terminal stays clean.
func openEnv(cmd *cobra.Command, logToStderr bool) (*runtimeEnv, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(loggingOptions(fileCfg, logToStderr))
	if err != nil {
		return nil, err
	}

	custom, err := wordlist.LoadDir(config.DefaultCategoryDir(), logger)
	if err != nil {
		logger.Warn("custom categories unavailable", zap.Error(err))
	}

	path := config.DefaultDBPath()
	applyStringConfig(cmd, "db", &path, fileCfg.Practice.DB)
	if cmd.Flags().Changed("db") {
		path = dbPath
	}
	st, err := store.Open(path)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Debug("environment ready", zap.String("db", path), zap.Int("custom_categories", len(custom)))

	return &runtimeEnv{
		file:   fileCfg,
		store:  st,
		banks:  generator.DefaultBanks().With(custom),
		logger: logger,
	}, nil
}

func (e *runtimeEnv) Close() {
	if cerr := e.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	// Sync fails on terminals; nothing to report.
	_ = e.logger.Sync()
}

func loggingOptions(fileCfg config.FileConfig, logToStderr bool) logging.Options {
	opts := logging.Options{Level: defaultLogLevel}
	if fileCfg.Log.Level != nil {
		opts.Level = *fileCfg.Log.Level
	}
	if verbose {
		opts.Level = "debug"
	}
	if logToStderr {
		return opts
	}
	opts.Path = config.DefaultLogPath()
	if fileCfg.Log.Path != nil && *fileCfg.Log.Path != "" {
		opts.Path = *fileCfg.Log.Path
	}
	return opts
}

func (e *runtimeEnv) identity(ctx context.Context) (string, error) {
	userID, _, err := e.store.LoadIdentity(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load identity: %w", err)
	}
	return userID, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	settings, err := env.store.LoadSettings(ctx)
	if err != nil {
		env.logger.Warn("using default settings", zap.Error(err))
	}
	category, err := resolveCategory(ctx, cmd, env.store, env.banks)
	if err != nil {
		return err
	}
	cfg, err := resolveSessionConfig(cmd, env.file, settings, category)
	if err != nil {
		return err
	}
	userID, err := env.identity(ctx)
	if err != nil {
		return err
	}

	machine := engine.NewMachine(generator.New(env.banks), cfg)
	svc := history.NewService(env.store, history.WithLogger(env.logger))
	ui := tui.NewModel(machine, tui.Options{
		Theme:    settings.Theme,
		History:  svc,
		Records:  env.store,
		Identity: history.StaticIdentity(userID),
		Logger:   env.logger,
	})
	env.logger.Info("practice started",
		zap.String("mode", string(cfg.Mode)),
		zap.String("category", cfg.Category),
		zap.String("difficulty", string(cfg.Difficulty)))
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveCategory picks the --category flag, then the stored category. A
// stored category whose bank is gone falls back to the default bank.
func resolveCategory(ctx context.Context, cmd *cobra.Command, st *store.Store, banks generator.Banks) (string, error) {
	if cmd.Flags().Changed("category") {
		category := strings.ToLower(strings.TrimSpace(practiceCategory))
		if !banks.Has(category) {
			return "", fmt.Errorf("unknown category %q (run: typeref categories)", practiceCategory)
		}
		return category, nil
	}
	category, err := st.LoadCategory(ctx, generator.DefaultCategory)
	if err != nil {
		return generator.DefaultCategory, err
	}
	if !banks.Has(category) {
		logErrf("category %q is no longer available; using %s\n", category, generator.DefaultCategory)
		return generator.DefaultCategory, nil
	}
	return category, nil
}

// resolveSessionConfig layers flags over the config file over the stored
// settings.
func resolveSessionConfig(cmd *cobra.Command, fileCfg config.FileConfig, settings model.Settings, category string) (model.SessionConfig, error) {
	cfg := settings.SessionConfig(category)

	mode := string(cfg.Mode)
	applyStringConfig(cmd, "mode", &mode, fileCfg.Practice.Mode)
	applyFlag(cmd, "mode", &mode, practiceMode)
	cfg.Mode = model.Mode(strings.ToLower(strings.TrimSpace(mode)))

	applyIntConfig(cmd, "duration", &cfg.Duration, fileCfg.Practice.Duration)
	applyFlag(cmd, "duration", &cfg.Duration, practiceDuration)
	applyIntConfig(cmd, "words", &cfg.WordTarget, fileCfg.Practice.Words)
	applyFlag(cmd, "words", &cfg.WordTarget, practiceWords)
	applyFlag(cmd, "numbers", &cfg.Numbers, practiceNumbers)
	applyFlag(cmd, "punct", &cfg.Punctuation, practicePunctuation)
	if cmd.Flags().Changed("expert") {
		cfg.Difficulty = model.DifficultyNormal
		if practiceExpert {
			cfg.Difficulty = model.DifficultyExpert
		}
	}

	if err := validateSessionConfig(cfg); err != nil {
		return model.SessionConfig{}, err
	}
	return cfg, nil
}

func validateSessionConfig(cfg model.SessionConfig) error {
	switch cfg.Mode {
	case model.ModeTime, model.ModeWords:
	default:
		return fmt.Errorf("--mode must be time or words")
	}
	if cfg.Duration <= 0 || cfg.Duration > model.MaxDuration {
		return fmt.Errorf("--duration must be between 1 and %d", model.MaxDuration)
	}
	if cfg.WordTarget <= 0 || cfg.WordTarget > model.MaxWordTarget {
		return fmt.Errorf("--words must be between 1 and %d", model.MaxWordTarget)
	}
	return cfg.Validate()
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

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse your history and WPM curve",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLimit, "last", store.HistoryLimit, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	statsCfg, err := statsConfigFor(cmd.Context(), env)
	if err != nil {
		return err
	}
	ui := statsui.NewModel(env.store, statsCfg)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print your summary, WPM curve and recent sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&statsLimit, "last", store.HistoryLimit, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	statsCfg, err := statsConfigFor(ctx, env)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(ctx, env.store, statsCfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), 0)
}

func statsConfigFor(ctx context.Context, env *runtimeEnv) (model.StatsConfig, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if statsLimit < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	userID, err := env.identity(ctx)
	if err != nil {
		return model.StatsConfig{}, err
	}
	if userID == "" {
		return model.StatsConfig{}, fmt.Errorf("%w: run typeref login --user <id>", model.ErrSignInRequired)
	}
	return model.StatsConfig{UserID: userID, Limit: statsLimit, CurveWindow: statsCurveWindow}, nil
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stored settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsGetCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print stored settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsGetCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting (difficulty, sound, theme, numbers, punctuation, mode)",
		Args:  cobra.ExactArgs(2),
		RunE:  runSettingsSetCmd,
	})
	return cmd
}

func runSettingsGetCmd(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	settings, err := env.store.LoadSettings(cmd.Context())
	if err != nil {
		return err
	}
	for _, line := range settingsLines(settings) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runSettingsSetCmd(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	settings, err := env.store.LoadSettings(cmd.Context())
	if err != nil {
		return err
	}
	if err := applySetting(&settings, args[0], args[1]); err != nil {
		return err
	}
	if err := env.store.SaveSettings(cmd.Context(), settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	env.logger.Info("settings changed", zap.String("key", args[0]), zap.String("value", args[1]))
	return nil
}

func settingsLines(s model.Settings) []string {
	return []string{
		fmt.Sprintf("difficulty  %s", s.Difficulty),
		fmt.Sprintf("sound       %t", s.Sound),
		fmt.Sprintf("theme       %s", s.Theme),
		fmt.Sprintf("numbers     %t", s.IncludeNumbers),
		fmt.Sprintf("punctuation %t", s.IncludePunctuation),
		fmt.Sprintf("mode        %s", s.DefaultTestMode),
	}
}

// applySetting changes one field and validates the result.
func applySetting(s *model.Settings, key, value string) error {
	value = strings.ToLower(strings.TrimSpace(value))
	next := *s
	switch strings.ToLower(key) {
	case "difficulty":
		next.Difficulty = model.Difficulty(value)
	case "theme":
		next.Theme = model.Theme(value)
	case "mode":
		next.DefaultTestMode = model.Mode(value)
	case "sound", "numbers", "punctuation":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false", key)
		}
		switch strings.ToLower(key) {
		case "sound":
			next.Sound = b
		case "numbers":
			next.IncludeNumbers = b
		default:
			next.IncludePunctuation = b
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

func newCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "category [name]",
		Short: "Show or select the practice category",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCategoryCmd,
	}
}

func runCategoryCmd(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	if len(args) == 0 {
		category, err := env.store.LoadCategory(cmd.Context(), generator.DefaultCategory)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), category)
		return err
	}
	category := strings.ToLower(strings.TrimSpace(args[0]))
	if !env.banks.Has(category) {
		return fmt.Errorf("unknown category %q (run: typeref categories)", args[0])
	}
	return env.store.SaveCategory(cmd.Context(), category)
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List available word banks",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesCmd,
	}
}

func runCategoriesCmd(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	for _, name := range env.banks.Names() {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d words\n", name, len(env.banks.Lookup(name))); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in locally so results can be committed",
		Args:  cobra.NoArgs,
		RunE:  runLoginCmd,
	}
	cmd.Flags().StringVar(&loginUser, "user", "", "user id")
	return cmd
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(loginUser) == "" {
		return fmt.Errorf("--user must not be empty")
	}
	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.store.SaveIdentity(cmd.Context(), loginUser); err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	logErrf("Signed in as %s\n", strings.TrimSpace(loginUser))
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; results will no longer be committed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()
			return env.store.ClearIdentity(cmd.Context())
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the typing engine over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().IntVar(&serveMaxSessions, "max-sessions", server.DefaultMaxSessions, "maximum live sessions")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	applyStringConfig(cmd, "addr", &serveAddr, env.file.Server.Addr)
	applyIntConfig(cmd, "max-sessions", &serveMaxSessions, env.file.Server.MaxSessions)
	if serveMaxSessions <= 0 {
		return fmt.Errorf("--max-sessions must be > 0")
	}

	m := metrics.NewManager()
	gen := generator.New(env.banks)
	svc := history.NewService(env.store, history.WithLogger(env.logger), history.WithObserver(m))
	h := server.New(server.Options{
		Store:       env.store,
		Generator:   gen,
		History:     svc,
		Metrics:     m,
		Logger:      env.logger,
		MaxSessions: serveMaxSessions,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := wordlist.NewWatcher(config.DefaultCategoryDir(), func(custom map[string][]string) {
		gen.SetBanks(generator.DefaultBanks().With(custom))
	}, env.logger)
	if err != nil {
		env.logger.Warn("custom categories will not reload", zap.Error(err))
	} else {
		go watcher.Run(ctx)
	}
	if err := h.Serve(ctx, serveAddr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func applyFlag[T any](cmd *cobra.Command, name string, target *T, value T) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typeref configuration
# Uncomment a value to enable it. CLI flags override config values, which
# override the stored settings.

[practice]
# mode = %q             # Test mode: time or words
# duration = %d          # Countdown length in seconds
# words = %d             # Passage length in words mode
# db = %q

[server]
# addr = %q
# max-sessions = %d

[log]
# level = %q            # debug, info, warn or error
# path = %q
`,
		model.ModeTime,
		model.DefaultDuration,
		model.DefaultWordTarget,
		config.DefaultDBPath(),
		server.DefaultAddr,
		server.DefaultMaxSessions,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
