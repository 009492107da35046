// Package cli defines the punk_dash command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"punk_dash/internal/app"
	"punk_dash/internal/config"
	"punk_dash/internal/logging"
	"punk_dash/internal/screen"
)

// options holds the raw flag values. Only flags the user set override the
// loaded configuration.
type options struct {
	configPath string

	endpoint       string
	pollInterval   time.Duration
	requestTimeout time.Duration
	schedule       string
	fps            int
	tickInterval   time.Duration
	effect         string
	preset         string
	theme          string
	charSet        string
	locale         string
	logFile        string
	debug          bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	def := config.Default()

	root := &cobra.Command{
		Use:   "punk_dash",
		Short: "Cyberpunk economic dashboard over terminal digital rain",
		Long: `punk_dash draws a falling-glyph rain in the terminal and lays an economic
dashboard over it: live indicator cards fed by a JSON endpoint, three charts
and the data source attribution.

Keys: tab / shift-tab move focus, esc clears it, r refreshes now, q quits.
Edits to the theme or charset in the --config file apply while running.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&opts.endpoint, "endpoint", def.Endpoint, "economic data endpoint")
	pf.DurationVar(&opts.requestTimeout, "timeout", def.RequestTimeout, "per-request timeout")
	pf.StringVar(&opts.theme, "theme", def.Theme, "color theme (green, amber, red, etc.)")
	pf.StringVar(&opts.locale, "locale", def.Locale, "locale for number grouping")
	pf.StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	f := root.Flags()
	f.DurationVar(&opts.pollInterval, "poll-interval", def.PollInterval, "time between data polls")
	f.StringVar(&opts.schedule, "schedule", def.Schedule, "animation schedule (frame, fixed)")
	f.IntVar(&opts.fps, "fps", def.FPS, "frames per second for the frame schedule (1-60)")
	f.DurationVar(&opts.tickInterval, "tick-interval", def.TickInterval, "tick period for the fixed schedule")
	f.StringVar(&opts.effect, "effect", def.Effect, "rain effect (columns, particles)")
	f.StringVar(&opts.preset, "preset", def.Preset, "column parameters (auto, frame-synced, fixed-rate)")
	f.StringVar(&opts.charSet, "chars", def.CharSet, "character set name or custom string")

	root.AddCommand(newFetchCommand(opts), newChartsCommand(opts), newListCommand())
	return root
}

// loadConfig resolves defaults, file, environment and set flags, then validates.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	set("endpoint", func() { cfg.Endpoint = opts.endpoint })
	set("timeout", func() { cfg.RequestTimeout = opts.requestTimeout })
	set("theme", func() { cfg.Theme = opts.theme })
	set("locale", func() { cfg.Locale = opts.locale })
	set("log-file", func() { cfg.LogFile = opts.logFile })
	set("debug", func() { cfg.Debug = opts.debug })
	set("poll-interval", func() { cfg.PollInterval = opts.pollInterval })
	set("schedule", func() { cfg.Schedule = opts.schedule })
	set("fps", func() { cfg.FPS = opts.fps })
	set("tick-interval", func() { cfg.TickInterval = opts.tickInterval })
	set("effect", func() { cfg.Effect = opts.effect })
	set("preset", func() { cfg.Preset = opts.preset })
	set("chars", func() { cfg.CharSet = opts.charSet })

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds a logger for the one-shot commands.
func newLogger(cmd *cobra.Command, cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogFile, cfg.Debug, zapcore.AddSync(cmd.ErrOrStderr()))
}

func runDashboard(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	backlog := &logging.Backlog{}
	logger, err := logging.New(cfg.LogFile, cfg.Debug, backlog)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
		_ = backlog.FlushTo(cmd.ErrOrStderr())
	}()

	out := termenv.NewOutput(os.Stdout)
	terminal, err := screen.NewStdTerminal(out, os.Stdout, os.Stdin)
	if errors.Is(err, screen.ErrNotTerminal) {
		return fmt.Errorf("%w: use `punk_dash fetch` for plain output", err)
	}
	if err != nil {
		return err
	}

	dash, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: opts.configPath,
		Reload:     func() (config.Config, error) { return loadConfig(cmd, opts) },
		Output:     out,
		Terminal:   terminal,
		Input:      os.Stdin,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}
	return dash.Run(cmd.Context())
}
