// Package watch retrains the occupancy model when the desk-log file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/pkg/logger"
	"github.com/okian/busyspot/pkg/metrics"
)

const defaultDebounce = 2 * time.Second

// Trainer rebuilds the published frequency table.
type Trainer interface {
	Train(ctx context.Context) (model.TrainingSummary, error)
}

// Watcher watches one file through its directory, so replacing the file
// by rename is seen as well as in-place writes.
type Watcher struct {
	path     string
	trainer  Trainer
	debounce time.Duration
	logger   logger.Logger

	done chan struct{}
	once sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last change before training.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for path.
func New(path string, trainer Trainer, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		trainer:  trainer,
		debounce: defaultDebounce,
		logger:   logger.Nop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching in a goroutine that runs until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info(ctx, "watching desk logs", logger.String("path", w.path), logger.Duration("debounce", w.debounce))

	go w.loop(ctx, fw)
	return nil
}

// Done is closed when the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} { return w.done }

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.once.Do(func() { close(w.done) })
	defer fw.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-fw.Events:
			if !ok {
				return
			}
			if !w.relevant(evt) {
				continue
			}
			w.logger.Debug(ctx, "desk logs changed", logger.String("op", evt.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			w.retrain(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "watcher error", logger.Error(err))
		}
	}
}

func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if filepath.Clean(evt.Name) != w.path {
		return false
	}
	return evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) retrain(ctx context.Context) {
	metrics.RecordAutoTrainTrigger()
	sum, err := w.trainer.Train(ctx)
	if err != nil {
		w.logger.Error(ctx, "auto-train failed", logger.Error(err))
		return
	}
	w.logger.Info(ctx, "auto-train complete",
		logger.String("version", sum.Version),
		logger.Int("records_used", sum.RecordsUsed))
}
