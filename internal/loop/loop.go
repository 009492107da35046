package loop

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// taskQueueSize bounds the tasks waiting for the loop goroutine.
const taskQueueSize = 64

// Animator is what the loop drives.
type Animator interface {
	Resize(width, height int)
	Tick()
}

// SizeFunc reports the current viewport size.
type SizeFunc func() (width, height int, err error)

// Loop runs frames and posted tasks on one goroutine. A resize always
// completes before the next frame sees the new state.
type Loop struct {
	sched    Scheduler
	size     SizeFunc
	animator Animator
	logger   *zap.Logger

	tasks   chan func()
	stopped chan struct{}

	width, height int
	sized         bool
	frames        uint64
}

// New creates a Loop.
func New(sched Scheduler, size SizeFunc, animator Animator, logger *zap.Logger) (*Loop, error) {
	if sched == nil || size == nil || animator == nil {
		return nil, errors.New("loop needs a scheduler, a size source and an animator")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		sched:    sched,
		size:     size,
		animator: animator,
		logger:   logger,
		tasks:    make(chan func(), taskQueueSize),
		stopped:  make(chan struct{}),
	}, nil
}

// Post queues fn to run on the loop goroutine. It returns false once the
// loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// Run resizes the animator once, then runs frames and tasks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	defer l.sched.Stop()

	l.syncSize()
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("animation loop stopped", zap.Uint64("frames", l.frames))
			return nil
		case fn := <-l.tasks:
			fn()
		case <-l.sched.C():
			l.frame()
			l.sched.Done()
		}
	}
}

// Frames returns how many frames have run. Only valid on the loop goroutine
// or after Run returned.
func (l *Loop) Frames() uint64 {
	return l.frames
}

func (l *Loop) frame() {
	l.syncSize()
	l.animator.Tick()
	l.frames++
}

// syncSize resizes the animator when the viewport changed. A failed size
// query keeps the previous size.
func (l *Loop) syncSize() {
	w, h, err := l.size()
	if err != nil {
		l.logger.Debug("viewport size unavailable", zap.Error(err))
		return
	}
	if l.sized && w == l.width && h == l.height {
		return
	}
	l.width, l.height, l.sized = w, h, true
	l.animator.Resize(w, h)
	l.logger.Debug("viewport resized", zap.Int("width", w), zap.Int("height", h))
}
