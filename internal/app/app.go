// Package app wires the rain, the dashboard and the poller into one running
// terminal program.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"punk_dash/internal/config"
	"punk_dash/internal/dashboard"
	"punk_dash/internal/loop"
	"punk_dash/internal/poller"
	"punk_dash/internal/rain"
	"punk_dash/internal/screen"
)

var _ rain.Surface = (*screen.Canvas)(nil)

// Options carries the dependencies of an App. Input, Client, Random and Now
// are optional. When ConfigPath and Reload are both set the file is watched
// and edits to the theme and character set are applied live.
type Options struct {
	Config     config.Config
	ConfigPath string
	Reload     func() (config.Config, error)
	Output     *termenv.Output
	Terminal   screen.Terminal
	Input      io.Reader
	Client     *http.Client
	Logger     *zap.Logger
	Random     *rand.Rand
	Now        func() time.Time
}

// App is the running dashboard.
type App struct {
	cfg      config.Config
	path     string
	reload   func() (config.Config, error)
	comp     *compositor
	terminal screen.Terminal
	input    io.Reader
	loop     *loop.Loop
	poller   *poller.Poller
	view     *dashboard.View
	logger   *zap.Logger
	now      func() time.Time
}

// New builds the dashboard from a validated config.
func New(opts Options) (*App, error) {
	if opts.Output == nil || opts.Terminal == nil {
		return nil, errors.New("app needs an output and a terminal")
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Random == nil {
		opts.Random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	canvas, err := screen.NewCanvas(cfg.CellWidth, cfg.CellHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}
	effect, err := newEffect(cfg, canvas, opts.Random, opts.Now)
	if err != nil {
		return nil, err
	}

	p, err := poller.New(poller.Config{
		URL:      cfg.Endpoint,
		Interval: cfg.PollInterval,
		Timeout:  cfg.RequestTimeout,
	}, opts.Client, opts.Logger.Named("poller"))
	if err != nil {
		return nil, fmt.Errorf("failed to create poller: %w", err)
	}

	doc := dashboard.NewDocument(dashboard.Fields, dashboard.NewFormatter(cfg.Language()))
	view := dashboard.NewView(doc, dashboard.ViewOptions{
		Theme:    cfg.ColorTheme(),
		Palette:  cfg.Palette(),
		Random:   opts.Random,
		FPS:      cfg.FPS,
		NextPoll: p.NextPoll,
		Logger:   opts.Logger.Named("view"),
	})

	sched, err := cfg.Scheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	comp := &compositor{
		canvas: canvas,
		effect: effect,
		view:   view,
		screen: screen.NewScreen(opts.Output),
		now:    opts.Now,
	}
	l, err := loop.New(sched, opts.Terminal.GetSize, comp, opts.Logger.Named("loop"))
	if err != nil {
		sched.Stop()
		return nil, err
	}

	return &App{
		cfg:      cfg,
		path:     opts.ConfigPath,
		reload:   opts.Reload,
		comp:     comp,
		terminal: opts.Terminal,
		input:    opts.Input,
		loop:     l,
		poller:   p,
		view:     view,
		logger:   opts.Logger,
		now:      opts.Now,
	}, nil
}

func newEffect(cfg config.Config, canvas *screen.Canvas, random *rand.Rand, now func() time.Time) (rain.Animator, error) {
	if cfg.Effect == config.EffectParticles {
		return rain.NewParticles(canvas, cfg.Palette(), rain.DefaultParticleParams(), random, now)
	}
	params, err := cfg.RainParams()
	if err != nil {
		return nil, err
	}
	return rain.NewField(canvas, cfg.Palette(), params, cfg.ColorTheme(), random)
}

// Run takes over the terminal until ctx is done or the quit key is pressed.
func (a *App) Run(ctx context.Context) error {
	if err := a.terminal.Setup(); err != nil {
		a.terminal.Restore()
		return err
	}
	defer a.terminal.Restore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.view.Document().Seed(a.now())
	a.logger.Info("dashboard started")

	if a.input != nil {
		// Not joined: a read on a terminal cannot be interrupted.
		go a.readKeys(cancel)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.loop.Run(ctx)
	})
	g.Go(func() error {
		a.poller.Run(ctx, func(p poller.Payload) {
			a.loop.Post(func() { a.view.OnData(p) })
		})
		return nil
	})
	if a.path != "" && a.reload != nil {
		g.Go(func() error {
			err := config.Watch(ctx, a.path, a.reload, func(cfg config.Config) {
				a.loop.Post(func() { a.applyConfig(cfg) })
			}, a.logger.Named("config"))
			if err != nil {
				a.logger.Warn("live config reload disabled", zap.Error(err))
			}
			return nil
		})
	}
	err := g.Wait()
	a.logger.Info("dashboard stopped", zap.Uint64("frames", a.loop.Frames()))
	return err
}

// restyler is implemented by effects that can change look while running.
type restyler interface {
	SetPalette(rain.Palette)
}

// applyConfig applies the settings that can change while running. Anything
// else needs a restart.
func (a *App) applyConfig(cfg config.Config) {
	theme, palette := cfg.ColorTheme(), cfg.Palette()
	a.view.SetTheme(theme)
	a.view.SetPalette(palette)
	if r, ok := a.comp.effect.(restyler); ok {
		r.SetPalette(palette)
	}
	if f, ok := a.comp.effect.(*rain.Field); ok {
		f.SetTheme(theme)
	}

	live := a.cfg
	live.Theme, live.CharSet = cfg.Theme, cfg.CharSet
	if live != cfg {
		a.logger.Warn("config changes outside theme and charset apply after restart")
	}
	a.cfg = live
	a.logger.Info("config applied", zap.String("theme", theme.Name), zap.String("charset", cfg.CharSet))
}

func (a *App) readKeys(quit context.CancelFunc) {
	err := screen.ReadKeys(a.input, func(k screen.Key) {
		a.loop.Post(func() { a.handleKey(k, quit) })
	})
	if err != nil {
		a.logger.Debug("key input closed", zap.Error(err))
	}
}

func (a *App) handleKey(k screen.Key, quit context.CancelFunc) {
	switch k {
	case screen.KeyQuit:
		quit()
	case screen.KeyRefresh:
		a.poller.Trigger()
	default:
		a.view.HandleKey(k, a.now())
	}
}

// compositor draws the rain onto the canvas, copies it into the output
// frame, lays the dashboard over it and flushes the result to the screen.
type compositor struct {
	canvas *screen.Canvas
	effect rain.Animator
	view   *dashboard.View
	screen *screen.Screen
	frame  *screen.Frame
	now    func() time.Time
}

// Resize receives the terminal size in cells.
func (c *compositor) Resize(cols, rows int) {
	cw, ch := c.canvas.CellSize()
	c.effect.Resize(cols*cw, rows*ch)
	c.frame = screen.NewFrame(rows, cols)
	c.screen.Invalidate()
}

func (c *compositor) Tick() {
	if c.frame == nil {
		return
	}
	c.effect.Tick()
	c.frame.CopyFrom(c.canvas.Frame())
	c.view.Draw(c.frame, c.now())
	c.screen.Draw(c.frame)
}
