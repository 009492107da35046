// Package logging builds the zap loggers used by the commands.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger at info level, or debug when debug is set. It
// writes to the file at path, or to fallback when path is empty.
func New(path string, debug bool, fallback zapcore.WriteSyncer) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if path != "" {
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
		logger, err := config.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return logger, nil
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(config.EncoderConfig), fallback, config.Level)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(fallback)), nil
}

// Backlog holds log output while the terminal is taken over by the dashboard.
type Backlog struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements zapcore.WriteSyncer.
func (b *Backlog) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Sync implements zapcore.WriteSyncer.
func (b *Backlog) Sync() error {
	return nil
}

// FlushTo writes and discards everything held so far.
func (b *Backlog) FlushTo(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.buf.WriteTo(w)
	return err
}
