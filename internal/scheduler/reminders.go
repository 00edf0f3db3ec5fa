// Package scheduler polls for due reminders, hands them to a Notifier and
// moves each one to its next state.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"go.uber.org/zap"

	"memoryjournal/internal/metrics"
	"memoryjournal/internal/models"
	"memoryjournal/internal/recurrence"
)

type ReminderStore interface {
	FindDueReminders(ctx context.Context, now time.Time, horizon time.Duration) ([]models.Reminder, error)
	AdvanceReminder(ctx context.Context, id int, prev, next time.Time) (bool, error)
	DeactivateReminder(ctx context.Context, id int) (bool, error)
}

// Notifier delivers a due reminder to its owner.
type Notifier interface {
	Notify(ctx context.Context, r models.Reminder) error
}

// LogNotifier only logs. No delivery channel exists yet.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, r models.Reminder) error {
	n.Log.Info("reminder due",
		zap.Int("reminder_id", r.ID),
		zap.Int("user_id", r.UserID),
		zap.String("title", r.Title),
		zap.Time("reminder_date", r.ReminderDate),
	)
	return nil
}

// ErrScanInProgress is returned by Tick when the previous scan has not
// finished yet.
var ErrScanInProgress = errors.New("reminder scan already running")

type Options struct {
	// Interval between scans. gron works in whole seconds, so anything under
	// a second runs once a second.
	Interval time.Duration
	Horizon  time.Duration
	Now      func() time.Time
}

type Scheduler struct {
	store    ReminderStore
	notifier Notifier
	rec      metrics.Recorder
	log      *zap.Logger
	interval time.Duration
	horizon  time.Duration
	now      func() time.Time

	// mu is held for the length of a scan.
	mu sync.Mutex
}

func New(store ReminderStore, notifier Notifier, rec metrics.Recorder, log *zap.Logger, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Horizon <= 0 {
		opts.Horizon = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		rec:      rec,
		log:      log,
		interval: opts.Interval,
		horizon:  opts.Horizon,
		now:      opts.Now,
	}
}

// Run scans once immediately and then every interval until ctx is done.
// A tick that fires while the previous scan is still going is skipped.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("reminder scheduler started",
		zap.Duration("interval", s.interval), zap.Duration("horizon", s.horizon))

	s.scan(ctx)
	cron := gron.New()
	cron.AddFunc(gron.Every(s.interval), func() { s.scan(ctx) })
	cron.Start()

	<-ctx.Done()
	cron.Stop()
	// gron does not wait for running jobs.
	s.mu.Lock()
	s.mu.Unlock()
	s.log.Info("reminder scheduler stopped")
}

func (s *Scheduler) scan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	err := s.Tick(ctx)
	switch {
	case err == nil || ctx.Err() != nil:
	case errors.Is(err, ErrScanInProgress):
		s.log.Debug("previous reminder scan still running; tick skipped")
	default:
		s.log.Error("reminder scan failed", zap.Error(err))
	}
}

// Tick processes every reminder due within the horizon. Failures on a single
// reminder are logged and counted; only a failed scan is returned. Tick
// returns ErrScanInProgress rather than run two scans at once.
func (s *Scheduler) Tick(ctx context.Context) error {
	if !s.mu.TryLock() {
		return ErrScanInProgress
	}
	defer s.mu.Unlock()

	start := time.Now()
	due, err := s.store.FindDueReminders(ctx, s.now(), s.horizon)
	if err != nil {
		return err
	}
	for _, r := range due {
		if ctx.Err() != nil {
			break
		}
		s.process(ctx, r)
	}
	s.rec.ObserveReminderScan(len(due), time.Since(start))
	return nil
}

func (s *Scheduler) process(ctx context.Context, r models.Reminder) {
	log := s.log.With(zap.Int("reminder_id", r.ID), zap.Int("user_id", r.UserID))

	out := recurrence.Resolve(r.Schedule())
	if out.Err != nil {
		if errors.Is(out.Err, recurrence.ErrInvalidPattern) {
			log.Warn("reminder has no valid recurring pattern; left unchanged")
			s.rec.IncReminderOutcome(metrics.OutcomeInvalid)
			return
		}
		log.Error("resolve reminder failed", zap.Error(out.Err))
		s.rec.IncReminderOutcome(metrics.OutcomeFailed)
		return
	}
	if out.Action == recurrence.ActionNone {
		return
	}

	if err := s.notifier.Notify(ctx, r); err != nil {
		log.Error("notify failed", zap.Error(err))
	}

	var (
		ok  bool
		err error
	)
	switch out.Action {
	case recurrence.ActionAdvance:
		ok, err = s.store.AdvanceReminder(ctx, r.ID, r.ReminderDate, out.NextDate)
	case recurrence.ActionDeactivate:
		ok, err = s.store.DeactivateReminder(ctx, r.ID)
	}
	switch {
	case err != nil:
		log.Error("persist reminder failed", zap.String("action", out.Action.String()), zap.Error(err))
		s.rec.IncReminderOutcome(metrics.OutcomeFailed)
	case !ok:
		log.Debug("reminder already handled", zap.String("action", out.Action.String()))
		s.rec.IncReminderOutcome(metrics.OutcomeConflict)
	case out.Action == recurrence.ActionAdvance:
		log.Info("reminder advanced", zap.Time("next", out.NextDate))
		s.rec.IncReminderOutcome(metrics.OutcomeAdvanced)
	default:
		log.Info("reminder deactivated")
		s.rec.IncReminderOutcome(metrics.OutcomeDeactivated)
	}
}
