package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"memoryjournal/internal/metrics"
	"memoryjournal/internal/models"
	"memoryjournal/internal/recurrence"
)

// memStore keeps reminders in memory and applies the same conditional
// updates as the SQL store.
type memStore struct {
	mu        sync.Mutex
	reminders map[int]*models.Reminder
	findErr   error
}

func newMemStore(rs ...models.Reminder) *memStore {
	s := &memStore{reminders: map[int]*models.Reminder{}}
	for i := range rs {
		r := rs[i]
		s.reminders[r.ID] = &r
	}
	return s
}

func (s *memStore) FindDueReminders(_ context.Context, now time.Time, horizon time.Duration) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []models.Reminder
	for _, r := range s.reminders {
		if r.IsActive && !r.ReminderDate.Before(now) && !r.ReminderDate.After(now.Add(horizon)) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *memStore) AdvanceReminder(_ context.Context, id int, prev, next time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok || !r.IsActive || !r.ReminderDate.Equal(prev) {
		return false, nil
	}
	r.ReminderDate = next
	return true, nil
}

func (s *memStore) DeactivateReminder(_ context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok || !r.IsActive {
		return false, nil
	}
	r.IsActive = false
	return true, nil
}

func (s *memStore) get(id int) models.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.reminders[id]
}

type countingRecorder struct {
	metrics.Noop
	mu       sync.Mutex
	outcomes map[string]int
	scans    []int
}

func (c *countingRecorder) ObserveReminderScan(due int, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scans = append(c.scans, due)
}

func (c *countingRecorder) IncReminderOutcome(o string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[o]++
}

type recordingNotifier struct {
	ids []int
	err error
}

func (n *recordingNotifier) Notify(_ context.Context, r models.Reminder) error {
	n.ids = append(n.ids, r.ID)
	return n.err
}

var now = time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)

func pattern(p recurrence.Pattern) *recurrence.Pattern { return &p }

func newScheduler(st ReminderStore, n Notifier, rec metrics.Recorder) *Scheduler {
	return New(st, n, rec, zap.NewNop(), Options{Now: func() time.Time { return now }})
}

func TestTick_AdvancesRecurringReminder(t *testing.T) {
	due := now.Add(2 * time.Minute)
	st := newMemStore(models.Reminder{ID: 1, UserID: 7, ReminderDate: due, IsActive: true,
		IsRecurring: true, RecurringPattern: pattern(recurrence.Monthly)})
	n := &recordingNotifier{}
	rec := &countingRecorder{}

	require.NoError(t, newScheduler(st, n, rec).Tick(context.Background()))

	got := st.get(1)
	assert.True(t, got.IsActive)
	assert.Equal(t, due.AddDate(0, 1, 0), got.ReminderDate)
	assert.Equal(t, []int{1}, n.ids)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeAdvanced])
	assert.Equal(t, []int{1}, rec.scans)
}

func TestTick_DeactivatesOneTimeReminder(t *testing.T) {
	st := newMemStore(models.Reminder{ID: 2, ReminderDate: now.Add(time.Minute), IsActive: true})
	rec := &countingRecorder{}

	require.NoError(t, newScheduler(st, &recordingNotifier{}, rec).Tick(context.Background()))

	assert.False(t, st.get(2).IsActive)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeDeactivated])
}

func TestTick_IgnoresRemindersOutsideHorizon(t *testing.T) {
	st := newMemStore(
		models.Reminder{ID: 1, ReminderDate: now.Add(10 * time.Minute), IsActive: true},
		models.Reminder{ID: 2, ReminderDate: now.Add(-time.Minute), IsActive: true},
	)
	n := &recordingNotifier{}

	require.NoError(t, newScheduler(st, n, &countingRecorder{}).Tick(context.Background()))

	assert.Empty(t, n.ids)
	assert.True(t, st.get(1).IsActive)
	assert.True(t, st.get(2).IsActive)
}

func TestTick_InvalidPatternLeavesRowUntouched(t *testing.T) {
	due := now.Add(time.Minute)
	st := newMemStore(models.Reminder{ID: 3, ReminderDate: due, IsActive: true, IsRecurring: true})
	n := &recordingNotifier{}
	rec := &countingRecorder{}
	core, logs := observer.New(zap.WarnLevel)
	s := New(st, n, rec, zap.New(core), Options{Now: func() time.Time { return now }})

	require.NoError(t, s.Tick(context.Background()))

	got := st.get(3)
	assert.Equal(t, due, got.ReminderDate)
	assert.True(t, got.IsActive)
	assert.Empty(t, n.ids)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeInvalid])
	assert.Equal(t, 1, logs.Len())
}

func TestTick_RepeatedScanDoesNotDoubleAdvance(t *testing.T) {
	due := now.Add(time.Minute)
	st := newMemStore(models.Reminder{ID: 4, ReminderDate: due, IsActive: true,
		IsRecurring: true, RecurringPattern: pattern(recurrence.Daily)})
	s := newScheduler(st, &recordingNotifier{}, &countingRecorder{})

	require.NoError(t, s.Tick(context.Background()))
	require.NoError(t, s.Tick(context.Background()))

	assert.Equal(t, due.AddDate(0, 0, 1), st.get(4).ReminderDate)
}

func TestProcess_StaleReadCountsAsConflict(t *testing.T) {
	due := now.Add(time.Minute)
	st := newMemStore(models.Reminder{ID: 5, ReminderDate: due, IsActive: true,
		IsRecurring: true, RecurringPattern: pattern(recurrence.Weekly)})
	stale := st.get(5)
	rec := &countingRecorder{}
	s := newScheduler(st, &recordingNotifier{}, rec)

	s.process(context.Background(), stale)
	s.process(context.Background(), stale)

	assert.Equal(t, due.AddDate(0, 0, 7), st.get(5).ReminderDate)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeAdvanced])
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeConflict])
}

func TestTick_NotifierErrorStillPersists(t *testing.T) {
	st := newMemStore(models.Reminder{ID: 6, ReminderDate: now.Add(time.Minute), IsActive: true})
	n := &recordingNotifier{err: errors.New("smtp down")}

	require.NoError(t, newScheduler(st, n, &countingRecorder{}).Tick(context.Background()))

	assert.False(t, st.get(6).IsActive)
}

func TestTick_ReturnsScanError(t *testing.T) {
	st := newMemStore()
	st.findErr = errors.New("connection refused")

	err := newScheduler(st, &recordingNotifier{}, &countingRecorder{}).Tick(context.Background())
	assert.EqualError(t, err, "connection refused")
}

func TestTick_SkipsWhileScanRunning(t *testing.T) {
	st := newMemStore(models.Reminder{ID: 9, ReminderDate: now.Add(time.Minute), IsActive: true})
	rec := &countingRecorder{}
	s := newScheduler(st, &recordingNotifier{}, rec)

	s.mu.Lock()
	err := s.Tick(context.Background())
	s.mu.Unlock()

	assert.ErrorIs(t, err, ErrScanInProgress)
	assert.True(t, st.get(9).IsActive)

	require.NoError(t, s.Tick(context.Background()))
	assert.False(t, st.get(9).IsActive)
}

func TestRun_StopsOnCancel(t *testing.T) {
	st := newMemStore(models.Reminder{ID: 8, ReminderDate: now.Add(time.Minute), IsActive: true})
	s := New(st, &recordingNotifier{}, &countingRecorder{}, zap.NewNop(),
		Options{Interval: time.Millisecond, Now: func() time.Time { return now }})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return !st.get(8).IsActive }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	err := LogNotifier{Log: zap.New(core)}.Notify(context.Background(),
		models.Reminder{ID: 1, UserID: 2, Title: "Water plants", ReminderDate: now})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Water plants", logs.All()[0].ContextMap()["title"])
}
