// Package memguard keeps a stub run alive on a small, fragmenting heap.
//
// The [Guard] places explicit collections around every expensive step
// (enumerating members, emitting a class body, closing an output file),
// refuses to start a module when the heap stays below a threshold, and
// turns an out-of-memory condition into a runtime reset followed by a
// [errors.RestartError]. It never retries in place: the driver's progress
// log is what makes the restart safe.
package memguard

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/object"
	"github.com/samskiter/micropython-stubber/pkg/observability"
)

// Defaults for a Guard.
const (
	DefaultThreshold int64 = 4 * 1024
	DefaultPause           = time.Second
)

// Guard wraps memory-intensive call sites.
type Guard struct {
	Heap      object.Heap
	Resetter  object.Resetter
	Logger    *log.Logger
	Threshold int64         // CheckLow fails below this many free bytes
	Pause     time.Duration // settle time before a reset
	Sleep     func(time.Duration)
}

// New creates a guard with default threshold and pause.
// If resetter is nil, Panic only reports the restart.
func New(heap object.Heap, resetter object.Resetter, logger *log.Logger) *Guard {
	if logger == nil {
		logger = log.Default()
	}
	return &Guard{
		Heap:      heap,
		Resetter:  resetter,
		Logger:    logger,
		Threshold: DefaultThreshold,
		Pause:     DefaultPause,
		Sleep:     time.Sleep,
	}
}

// Checkpoint collects garbage and reports the free heap.
func (g *Guard) Checkpoint(ctx context.Context, stage string) int64 {
	if g == nil || g.Heap == nil {
		return -1
	}
	g.Heap.Collect()
	free := g.Heap.MemFree()
	observability.Memory().OnCheckpoint(ctx, stage, free)
	g.logger().Debug("checkpoint", "stage", stage, "free", free)
	return free
}

// Wrap runs fn between two checkpoints.
func (g *Guard) Wrap(ctx context.Context, stage string, fn func() error) error {
	g.Checkpoint(ctx, stage)
	err := fn()
	g.Checkpoint(ctx, stage)
	return err
}

// CheckLow collects and returns LOW_MEMORY when free memory stays under
// the threshold.
func (g *Guard) CheckLow(ctx context.Context) error {
	if g == nil || g.Heap == nil || g.Threshold <= 0 {
		return nil
	}
	free := g.Checkpoint(ctx, "precheck")
	if free >= g.Threshold {
		return nil
	}
	observability.Memory().OnLowMemory(ctx, free, g.Threshold)
	return errors.New(errors.ErrCodeLowMemory, "only %d bytes free, need %d", free, g.Threshold)
}

// Panic handles memory exhaustion: it pauses, resets the runtime and
// returns a RestartError wrapping cause. The caller must stop and let the
// run resume from its progress log.
func (g *Guard) Panic(ctx context.Context, stage string, cause error) error {
	rerr := &errors.RestartError{Stage: stage, Cause: cause}
	if g == nil {
		return rerr
	}
	g.logger().Error("memory exhausted, restarting", "stage", stage, "err", cause)
	if g.Pause > 0 {
		sleep := g.Sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		sleep(g.Pause)
	}
	if g.Resetter != nil {
		if err := g.Resetter.Reset(); err != nil {
			g.logger().Error("reset failed", "err", err)
			rerr.Cause = errors.Wrap(errors.ErrCodeInternal, cause, "reset failed: %v", err)
		}
	}
	observability.Memory().OnRestart(ctx, stage, cause)
	return rerr
}

func (g *Guard) logger() *log.Logger {
	if g.Logger == nil {
		return log.Default()
	}
	return g.Logger
}
