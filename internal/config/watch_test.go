package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWatchAppliesValidEdits(t *testing.T) {
	path := writeFile(t, "theme: green\n")
	core, logs := observer.New(zapcore.DebugLevel)
	reload := func() (Config, error) {
		cfg, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		return cfg, cfg.Validate()
	}

	applied := make(chan Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, reload, func(c Config) { applied <- c }, zap.New(core))
	}()
	require.Eventually(t, func() bool {
		return logs.FilterMessage("watching config").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("fps: 0\n"), 0o600))
	require.Eventually(t, func() bool {
		return logs.FilterMessage("config reload rejected").Len() > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, applied)

	require.NoError(t, os.WriteFile(path, []byte("theme: amber\n"), 0o600))
	select {
	case cfg := <-applied:
		assert.Equal(t, "amber", cfg.Theme)
	case <-time.After(2 * time.Second):
		t.Fatal("edit was not applied")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), "/nonexistent/punk_dash/config.yaml",
		func() (Config, error) { return Default(), nil }, func(Config) {}, nil)
	assert.Error(t, err)
}
