// Package watcher periodically refreshes the content view and records a
// snapshot whenever the published schedule changes.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/raysh454/repview/internal/logging"
	"github.com/raysh454/repview/internal/replacements"
	"github.com/raysh454/repview/internal/store"
	"github.com/raysh454/repview/internal/view"
)

var ErrFetchFailed = errors.New("fetch failed")

const (
	MetaLastCheckedAt = "last_checked_at"
	MetaLastStatus    = "last_status"
)

// Updater runs one fetch-and-render cycle.
type Updater interface {
	Update(ctx context.Context) <-chan view.Outcome
}

type Store interface {
	Save(ctx context.Context, snap *store.Snapshot) error
	Latest(ctx context.Context) (*store.Snapshot, error)
	Diff(ctx context.Context, baseID, headID string) (*store.Diff, error)
	SetMeta(ctx context.Context, key, value string) error
}

// Notifier is told about every stored change.
type Notifier interface {
	Announce(ctx context.Context, snap *store.Snapshot, chunks []store.Chunk) error
}

type Watcher struct {
	cfg      Config
	updater  Updater
	store    Store
	notifier Notifier
	logger   logging.Logger
	cron     *cron.Cron
	now      func() time.Time

	// checks never overlap
	checkMu sync.Mutex
	// start-up check, outside cron's bookkeeping
	wg sync.WaitGroup

	mu      sync.Mutex
	history []*Result
}

// New validates cfg.Schedule and builds a stopped watcher. notifier may be nil.
func New(cfg Config, updater Updater, st Store, notifier Notifier, logger logging.Logger) (*Watcher, error) {
	if updater == nil || st == nil {
		return nil, errors.New("watcher: updater and store are required")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	return &Watcher{
		cfg:      cfg,
		updater:  updater,
		store:    st,
		notifier: notifier,
		logger:   logger.With(logging.Field{Key: "component", Value: "watcher"}),
		cron:     cron.New(),
		now:      time.Now,
	}, nil
}

// Start schedules periodic checks, plus an immediate one when configured.
// Checks run with ctx until Stop.
func (w *Watcher) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.cfg.Schedule, func() {
		_, _ = w.run(ctx, "schedule")
	})
	if err != nil {
		return fmt.Errorf("scheduling checks: %w", err)
	}
	w.cron.Start()
	w.logger.Info("watcher started", logging.Field{Key: "schedule", Value: w.cfg.Schedule})

	if w.cfg.CheckOnStart {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			_, _ = w.run(ctx, "start")
		}()
	}
	return nil
}

// Stop halts scheduling. The returned context is done once a running
// check has finished.
func (w *Watcher) Stop() context.Context {
	w.logger.Info("watcher stopping")
	cronDone := w.cron.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		w.wg.Wait()
		cancel()
	}()
	return ctx
}

// Check runs one check now.
func (w *Watcher) Check(ctx context.Context) (*Result, error) {
	return w.run(ctx, "manual")
}

// History returns copies of the kept results, newest first. A check in
// progress is listed with StatusRunning.
func (w *Watcher) History() []*Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Result, len(w.history))
	for i, r := range w.history {
		cp := *r
		out[len(w.history)-1-i] = &cp
	}
	return out
}

// Last returns a copy of the most recent result, or nil before the first check.
func (w *Watcher) Last() *Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.history) == 0 {
		return nil
	}
	cp := *w.history[len(w.history)-1]
	return &cp
}

func (w *Watcher) run(ctx context.Context, trigger string) (*Result, error) {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	res := &Result{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		Status:    StatusRunning,
		StartedAt: w.now().UTC(),
	}
	entry := w.begin(res)
	logger := w.logger.With(logging.Field{Key: "check_id", Value: res.ID})
	logger.Info("checking for updates", logging.Field{Key: "trigger", Value: trigger})

	err := w.check(ctx, res, logger)
	res.EndedAt = w.now().UTC()
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		logger.Warn("check failed", logging.Field{Key: "error", Value: err})
	} else {
		logger.Info("check finished", logging.Field{Key: "status", Value: string(res.Status)})
	}

	w.record(ctx, entry, res, logger)
	return res, err
}

func (w *Watcher) check(ctx context.Context, res *Result, logger logging.Logger) error {
	var outcome view.Outcome
	select {
	case o, ok := <-w.updater.Update(ctx):
		if !ok {
			return fmt.Errorf("%w: no outcome", ErrFetchFailed)
		}
		outcome = o
	case <-ctx.Done():
		return ctx.Err()
	}

	res.Reason = outcome.Reason
	if outcome.Failed() {
		return fmt.Errorf("%w: %s", ErrFetchFailed, outcome.Reason)
	}

	schedule, err := replacements.Parse(outcome.Text)
	if err != nil {
		return fmt.Errorf("parsing content: %w", err)
	}
	sum, err := store.Checksum(schedule)
	if err != nil {
		return err
	}

	latest, err := w.store.Latest(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("loading latest snapshot: %w", err)
	}
	if latest != nil && latest.Checksum == sum {
		res.Status = StatusUnchanged
		res.Snapshot = latest
		return nil
	}

	snap := &store.Snapshot{
		FetchedAt: w.now().UTC(),
		Checksum:  sum,
		Body:      outcome.Text,
		Schedule:  schedule,
	}
	if err := w.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	res.Status = StatusChanged
	res.Snapshot = snap

	diff, err := w.store.Diff(ctx, "", snap.ID)
	if err != nil {
		logger.Warn("diffing snapshot", logging.Field{Key: "error", Value: err})
	} else {
		res.Chunks = diff.Chunks
	}
	logger.Info("schedule changed",
		logging.Field{Key: "snapshot_id", Value: snap.ID},
		logging.Field{Key: "groups", Value: len(schedule.Groups)})

	if w.notifier != nil {
		if err := w.notifier.Announce(ctx, snap, res.Chunks); err != nil {
			logger.Warn("announcing update", logging.Field{Key: "error", Value: err})
		}
	}
	return nil
}

// begin adds a running copy of res to the history and returns it.
func (w *Watcher) begin(res *Result) *Result {
	entry := *res
	w.mu.Lock()
	defer w.mu.Unlock()
	w.history = append(w.history, &entry)
	if limit := w.cfg.History; limit > 0 && len(w.history) > limit {
		w.history = w.history[len(w.history)-limit:]
	}
	return &entry
}

// record publishes the finished res over its history entry.
func (w *Watcher) record(ctx context.Context, entry, res *Result, logger logging.Logger) {
	w.mu.Lock()
	*entry = *res
	w.mu.Unlock()

	if err := w.store.SetMeta(ctx, MetaLastCheckedAt, res.EndedAt.Format(time.RFC3339)); err != nil {
		logger.Warn("recording check time", logging.Field{Key: "error", Value: err})
	}
	if err := w.store.SetMeta(ctx, MetaLastStatus, string(res.Status)); err != nil {
		logger.Warn("recording check status", logging.Field{Key: "error", Value: err})
	}
}
