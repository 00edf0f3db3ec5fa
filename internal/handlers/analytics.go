package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"memoryjournal/internal/mood"
)

type AnalyticsHandler struct {
	entries MoodEntryStore
	weights mood.Weights
	now     func() time.Time
	log     *zap.Logger
}

func NewAnalyticsHandler(entries MoodEntryStore, weights mood.Weights, now func() time.Time, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{entries: entries, weights: weights, now: now, log: log}
}

// MoodAnalytics summarises the user's moods over a time window.
// Query params: timeFilter=week|month|all (default month) and tz, an IANA
// zone name that decides where calendar days start (default UTC).
func (h *AnalyticsHandler) MoodAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	q := r.URL.Query()

	window, err := mood.ParseWindow(q.Get("timeFilter"))
	if err != nil {
		http.Error(w, "invalid timeFilter; expected week, month or all", http.StatusBadRequest)
		return
	}
	loc := time.UTC
	if tz := q.Get("tz"); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			http.Error(w, "invalid tz", http.StatusBadRequest)
			return
		}
	}
	now := h.now().In(loc)

	var since *time.Time
	if t, ok := window.Since(now); ok {
		since = &t
	}
	entries, err := h.entries.FindEntriesByUserAndWindow(r.Context(), userID, since, []mood.Mood{mood.Other})
	if err != nil {
		h.log.Error("load mood entries failed", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not compute analytics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, mood.Analyze(entries, h.weights, window, now))
}
