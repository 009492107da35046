package app

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"punk_dash/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

type fakeTerminal struct {
	mu              sync.Mutex
	width, height   int
	setup, restored int
}

func (t *fakeTerminal) Setup() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setup++
	return nil
}

func (t *fakeTerminal) Restore() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.restored++
}

func (t *fakeTerminal) GetSize() (int, int, error) {
	return t.width, t.height, nil
}

const payload = `{
	"status": "success",
	"data": {
		"is_fallback_data": false,
		"data_sources": {"world_bank": "World Bank API"},
		"world_bank": {"gdp": 1234567, "inflation_wb": 3.14159},
		"sectors": {"mining": 40, "tourism": 60}
	}
}`

func endpoint(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/api/data"
}

type harness struct {
	app    *App
	term   *fakeTerminal
	out    *bytes.Buffer
	keys   *io.PipeWriter
	logs   *observer.ObservedLogs
	result chan error
}

func start(t *testing.T, url string, effect string) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Endpoint = url
	cfg.FPS = 60
	cfg.Effect = effect
	return startWith(t, Options{Config: cfg})
}

func startWith(t *testing.T, opts Options) *harness {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	keysR, keysW := io.Pipe()
	out := &bytes.Buffer{}
	term := &fakeTerminal{width: 100, height: 40}
	opts.Output = termenv.NewOutput(out, termenv.WithProfile(termenv.Ascii))
	opts.Terminal = term
	opts.Input = keysR
	opts.Logger = zap.New(core)
	opts.Random = rand.New(rand.NewSource(1))
	a, err := New(opts)
	require.NoError(t, err)

	h := &harness{app: a, term: term, out: out, keys: keysW, logs: logs, result: make(chan error, 1)}
	go func() { h.result <- a.Run(context.Background()) }()
	return h
}

// text reads an element's text on the loop goroutine.
func (h *harness) text(id string) (string, bool) {
	ch := make(chan string, 1)
	if !h.app.loop.Post(func() {
		e, ok := h.app.view.Document().Element(id)
		if !ok {
			ch <- ""
			return
		}
		ch <- e.Text
	}) {
		return "", false
	}
	return <-ch, true
}

// frames reads the loop's frame count on the loop goroutine.
func (h *harness) frames() (uint64, bool) {
	ch := make(chan uint64, 1)
	if !h.app.loop.Post(func() { ch <- h.app.loop.Frames() }) {
		return 0, false
	}
	return <-ch, true
}

func (h *harness) quit(t *testing.T) {
	t.Helper()
	_, err := h.keys.Write([]byte("q"))
	require.NoError(t, err)
	select {
	case err := <-h.result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard did not stop on q")
	}
	require.NoError(t, h.keys.Close())
}

func TestRunAppliesPolledData(t *testing.T) {
	h := start(t, endpoint(t, http.StatusOK, payload), config.EffectColumns)

	require.Eventually(t, func() bool {
		text, ok := h.text("gdp-value")
		return ok && text == "1,234,567"
	}, 5*time.Second, 10*time.Millisecond)
	text, _ := h.text("inflation-value")
	assert.Equal(t, "3.1%", text)
	require.Eventually(t, func() bool {
		n, ok := h.frames()
		return ok && n > 0
	}, 5*time.Second, 10*time.Millisecond, "a frame is drawn")

	h.quit(t)
	assert.Equal(t, 1, h.term.setup)
	assert.Equal(t, 1, h.term.restored)
	assert.Contains(t, h.out.String(), "ECONOMIC TERMINAL")
	assert.Positive(t, h.app.loop.Frames())
	assert.Equal(t, "mining", h.app.view.Bindings()[1].Config.Data.Labels[0])
}

func TestRunKeepsSeedsOnFailure(t *testing.T) {
	h := start(t, endpoint(t, http.StatusInternalServerError, `{"status": "error", "message": "boom"}`), config.EffectParticles)

	require.Eventually(t, func() bool {
		return h.logs.FilterMessage("failed to load economic data").Len() > 0
	}, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		text, ok := h.text("gdp-value")
		return ok && text == "125,000"
	}, 5*time.Second, 10*time.Millisecond, "count-up finishes on the seed")

	h.quit(t)
}

func TestRefreshKeyTriggersPoll(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return hits
	}

	h := start(t, srv.URL+"/api/data", config.EffectColumns)
	require.Eventually(t, func() bool { return count() == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err := h.keys.Write([]byte("r"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return count() == 2 }, 5*time.Second, 10*time.Millisecond)

	h.quit(t)
}

func TestNewValidates(t *testing.T) {
	cfg := config.Default()
	cfg.FPS = 0
	_, err := New(Options{
		Config:   cfg,
		Output:   termenv.NewOutput(io.Discard),
		Terminal: &fakeTerminal{},
	})
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = New(Options{Config: config.Default()})
	assert.Error(t, err)
}

func TestConfigEditsApplyLive(t *testing.T) {
	url := endpoint(t, http.StatusOK, payload)
	path := filepath.Join(t.TempDir(), "punk_dash.yaml")
	write := func(content string) {
		require.NoError(t, os.WriteFile(path, []byte("endpoint: "+url+"\nfps: 60\n"+content), 0o600))
	}
	write("theme: green\n")
	reload := func() (config.Config, error) {
		cfg, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}
	cfg, err := reload()
	require.NoError(t, err)

	h := startWith(t, Options{Config: cfg, ConfigPath: path, Reload: reload})
	require.Eventually(t, func() bool {
		return h.logs.FilterMessage("watching config").Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	write("theme: amber\ncharset: binary\n")
	require.Eventually(t, func() bool {
		return h.logs.FilterMessage("config applied").Len() == 1
	}, 5*time.Second, 10*time.Millisecond)
	applied := h.logs.FilterMessage("config applied").All()[0].ContextMap()
	assert.Equal(t, "amber", applied["theme"])
	assert.Equal(t, "binary", applied["charset"])
	assert.Zero(t, h.logs.FilterMessage("config changes outside theme and charset apply after restart").Len())

	h.quit(t)
}

func TestApplyConfigWarnsAboutRestart(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	a, err := New(Options{
		Config:   config.Default(),
		Output:   termenv.NewOutput(io.Discard),
		Terminal: &fakeTerminal{},
		Logger:   zap.New(core),
	})
	require.NoError(t, err)

	next := config.Default()
	next.FPS = 12
	next.Theme = "cyan"
	a.applyConfig(next)
	assert.Equal(t, 1, logs.FilterMessage("config changes outside theme and charset apply after restart").Len())
	assert.Equal(t, "cyan", a.cfg.Theme)
	assert.Equal(t, config.Default().FPS, a.cfg.FPS)
}
