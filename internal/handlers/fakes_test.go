package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memoryjournal/internal/metrics"
	mw "memoryjournal/internal/middleware"
	"memoryjournal/internal/models"
	"memoryjournal/internal/mood"
	"memoryjournal/internal/services"
	"memoryjournal/internal/store"
)

// memStore is an in-memory stand-in for *store.Store with the same
// ownership rules.
type memStore struct {
	mu        sync.Mutex
	seq       int
	clock     time.Time
	users     map[int]models.User
	journals  map[int]models.Journal
	media     map[int]models.Media
	reminders map[int]models.Reminder

	moodEntries []mood.Entry
	moodSince   *time.Time
	moodExclude []mood.Mood
}

func newMemStore() *memStore {
	return &memStore{
		clock:     time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
		users:     map[int]models.User{},
		journals:  map[int]models.Journal{},
		media:     map[int]models.Media{},
		reminders: map[int]models.Reminder{},
	}
}

func (s *memStore) next() (int, time.Time) {
	s.seq++
	s.clock = s.clock.Add(time.Minute)
	return s.seq, s.clock
}

func (s *memStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID, u.CreatedAt = s.next()
	s.users[u.ID] = *u
	return nil
}

func (s *memStore) UserByEmailIndex(_ context.Context, idx string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.EmailBlindIndex == idx {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *memStore) UserByID(_ context.Context, id int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *memStore) UpdateUserName(_ context.Context, id int, name *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Name = name
	s.users[id] = u
	return nil
}

func (s *memStore) DeleteUser(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memStore) CreateJournal(_ context.Context, j *models.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID, j.CreatedAt = s.next()
	j.UpdatedAt = j.CreatedAt
	stored := *j
	stored.Media = nil
	s.journals[j.ID] = stored
	return nil
}

func (s *memStore) ListJournals(_ context.Context, userID int, f store.JournalFilter) ([]models.Journal, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Journal
	for _, j := range s.journals {
		if j.UserID != userID {
			continue
		}
		if f.Mood != "" && j.Mood != f.Mood {
			continue
		}
		if f.Category != "" && j.Category != f.Category {
			continue
		}
		if f.Start != nil && f.End != nil && (j.CreatedAt.Before(*f.Start) || j.CreatedAt.After(*f.End)) {
			continue
		}
		if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(t string) bool { return slices.Contains(j.Tags, t) }) {
			continue
		}
		all = append(all, j)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].CreatedAt.After(all[b].CreatedAt) })
	total := len(all)
	lo := min(f.Offset(), total)
	hi := min(lo+f.Limit, total)
	return append([]models.Journal{}, all[lo:hi]...), total, nil
}

func (s *memStore) GetJournal(_ context.Context, userID, id int) (models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[id]
	if !ok || j.UserID != userID {
		return models.Journal{}, store.ErrNotFound
	}
	return j, nil
}

func (s *memStore) UpdateJournal(_ context.Context, j *models.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.journals[j.ID]
	if !ok || cur.UserID != j.UserID {
		return store.ErrNotFound
	}
	_, j.UpdatedAt = s.next()
	stored := *j
	stored.Media = nil
	s.journals[j.ID] = stored
	return nil
}

func (s *memStore) DeleteJournal(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[id]
	if !ok || j.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.journals, id)
	return nil
}

func (s *memStore) MediaByJournal(_ context.Context, userID int, ids []int) (map[int][]models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[int][]models.Media{}
	for _, m := range s.media {
		if m.UserID == userID && m.JournalID != nil && slices.Contains(ids, *m.JournalID) {
			out[*m.JournalID] = append(out[*m.JournalID], m)
		}
	}
	return out, nil
}

func (s *memStore) FindEntriesByUserAndWindow(_ context.Context, _ int, since *time.Time, exclude []mood.Mood) ([]mood.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moodSince, s.moodExclude = since, exclude
	return s.moodEntries, nil
}

func (s *memStore) CreateReminder(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID, r.CreatedAt = s.next()
	s.reminders[r.ID] = *r
	return nil
}

func (s *memStore) ListReminders(_ context.Context, userID int, f store.ReminderFilter) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Reminder{}
	for _, r := range s.reminders {
		if r.UserID != userID {
			continue
		}
		if f.IsActive != nil && r.IsActive != *f.IsActive {
			continue
		}
		if f.IsRecurring != nil && r.IsRecurring != *f.IsRecurring {
			continue
		}
		if f.Start != nil && f.End != nil && (r.ReminderDate.Before(*f.Start) || r.ReminderDate.After(*f.End)) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ReminderDate.Before(out[b].ReminderDate) })
	return out, nil
}

func (s *memStore) GetReminder(_ context.Context, userID, id int) (models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok || r.UserID != userID {
		return models.Reminder{}, store.ErrNotFound
	}
	return r, nil
}

func (s *memStore) UpdateReminder(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.reminders[r.ID]
	if !ok || cur.UserID != r.UserID {
		return store.ErrNotFound
	}
	s.reminders[r.ID] = *r
	return nil
}

func (s *memStore) DeleteReminder(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.reminders, id)
	return nil
}

func (s *memStore) CreateMedia(_ context.Context, m *models.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownsJournal(m.UserID, m.JournalID) {
		return store.ErrNotFound
	}
	m.ID, m.CreatedAt = s.next()
	s.media[m.ID] = *m
	return nil
}

// CreateMediaBatch checks every item before inserting any, which is what the
// transaction gives the real store.
func (s *memStore) CreateMediaBatch(_ context.Context, media []models.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range media {
		if !s.ownsJournal(m.UserID, m.JournalID) {
			return store.ErrNotFound
		}
	}
	for i := range media {
		media[i].ID, media[i].CreatedAt = s.next()
		s.media[media[i].ID] = media[i]
	}
	return nil
}

func (s *memStore) CreateJournalWithMedia(ctx context.Context, j *models.Journal, media []models.Media) error {
	if err := s.CreateJournal(ctx, j); err != nil {
		return err
	}
	for i := range media {
		media[i].UserID = j.UserID
		media[i].JournalID = &j.ID
	}
	return s.CreateMediaBatch(ctx, media)
}

func (s *memStore) ownsJournal(userID int, journalID *int) bool {
	if journalID == nil {
		return true
	}
	j, ok := s.journals[*journalID]
	return ok && j.UserID == userID
}

func (s *memStore) ListMedia(_ context.Context, userID int, f store.MediaFilter) ([]models.Media, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []models.Media{}
	for _, m := range s.media {
		if m.UserID != userID || (f.Type != "" && m.Type != f.Type) {
			continue
		}
		if f.JournalID != nil && (m.JournalID == nil || *m.JournalID != *f.JournalID) {
			continue
		}
		all = append(all, m)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].CreatedAt.After(all[b].CreatedAt) })
	total := len(all)
	lo := min(f.Offset(), total)
	hi := min(lo+f.Limit, total)
	return append([]models.Media{}, all[lo:hi]...), total, nil
}

func (s *memStore) DeleteMedia(_ context.Context, userID, id int) (models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[id]
	if !ok || m.UserID != userID {
		return models.Media{}, store.ErrNotFound
	}
	delete(s.media, id)
	return m, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

var (
	testSecret = []byte("handler-test-secret")
	testNow    = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
)

// harness serves the full router over a memStore.
type harness struct {
	t      *testing.T
	store  *memStore
	encSvc *services.EncryptionService
	router http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	encSvc, err := services.NewEncryptionService(bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)

	st := newMemStore()
	log := zap.NewNop()
	clock := func() time.Time { return testNow }
	router := NewRouter(RouterDeps{
		Auth:           NewAuthHandler(st, encSvc, testSecret, 24*time.Hour, clock, log),
		Users:          NewUserHandler(st, encSvc, log),
		Journals:       NewJournalHandler(st, encSvc, mood.DefaultLexicon(), log),
		Analytics:      NewAnalyticsHandler(st, mood.DefaultWeights(), clock, log),
		Reminders:      NewReminderHandler(st, log),
		Media:          NewMediaHandler(st, log),
		Health:         NewHealthHandler(fakePinger{}, log),
		AuthMW:         mw.NewAuthMiddleware(testSecret),
		Recorder:       metrics.Noop{},
		AllowedOrigins: []string{"*"},
		Logger:         log,
	})
	return &harness{t: t, store: st, encSvc: encSvc, router: router}
}

func (h *harness) token(userID int) string {
	h.t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	require.NoError(h.t, err)
	return s
}

// do sends a request as userID; 0 sends it without a token.
func (h *harness) do(method, path string, userID int, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+h.token(userID))
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func itoa(n int) string { return strconv.Itoa(n) }
