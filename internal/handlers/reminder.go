package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"memoryjournal/internal/models"
	"memoryjournal/internal/recurrence"
	"memoryjournal/internal/store"
)

type ReminderHandler struct {
	reminders ReminderStore
	log       *zap.Logger
}

func NewReminderHandler(reminders ReminderStore, log *zap.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, log: log}
}

type reminderRequest struct {
	Title            string    `json:"title" validate:"required|maxLen:100"`
	Description      string    `json:"description"`
	ReminderDate     time.Time `json:"reminder_date"`
	IsRecurring      bool      `json:"is_recurring"`
	RecurringPattern *string   `json:"recurring_pattern"`
	IsActive         *bool     `json:"is_active"`
}

// checkSchedule enforces that a recurring reminder carries a known pattern
// and clears the pattern of a one-time reminder.
func checkSchedule(r *models.Reminder) error {
	if !r.IsRecurring {
		r.RecurringPattern = nil
		return nil
	}
	if r.RecurringPattern == nil || !r.RecurringPattern.Valid() {
		return errors.New("recurring reminders need recurring_pattern daily, weekly, monthly or yearly")
	}
	return nil
}

func patternPtr(s *string) *recurrence.Pattern {
	if s == nil || *s == "" {
		return nil
	}
	p := recurrence.Pattern(*s)
	return &p
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ReminderDate.IsZero() {
		http.Error(w, "reminder_date is required", http.StatusBadRequest)
		return
	}

	rem := models.Reminder{
		UserID:           currentUser(r),
		Title:            req.Title,
		Description:      strings.TrimSpace(req.Description),
		ReminderDate:     req.ReminderDate,
		IsRecurring:      req.IsRecurring,
		RecurringPattern: patternPtr(req.RecurringPattern),
		IsActive:         true,
	}
	if req.IsActive != nil {
		rem.IsActive = *req.IsActive
	}
	if err := checkSchedule(&rem); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.reminders.CreateReminder(r.Context(), &rem); err != nil {
		h.log.Error("create reminder failed", zap.Int("user_id", rem.UserID), zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

// List returns the user's reminders by due date.
// Query params: startDate, endDate, isActive, isRecurring.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	active, err := boolParam(r, "isActive")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	recurring, err := boolParam(r, "isRecurring")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := currentUser(r)
	out, err := h.reminders.ListReminders(r.Context(), userID, store.ReminderFilter{
		Start: start, End: end, IsActive: active, IsRecurring: recurring,
	})
	if err != nil {
		h.log.Error("list reminders failed", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[models.Reminder]{Count: len(out), Data: out})
}

func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	rem, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

type reminderUpdateRequest struct {
	Title            *string    `json:"title" validate:"minLen:1|maxLen:100"`
	Description      *string    `json:"description"`
	ReminderDate     *time.Time `json:"reminder_date"`
	IsRecurring      *bool      `json:"is_recurring"`
	RecurringPattern *string    `json:"recurring_pattern" validate:"in:daily,weekly,monthly,yearly"`
	IsActive         *bool      `json:"is_active"`
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req reminderUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		req.Title = &t
	}
	// An empty pattern clears it.
	clearPattern := req.RecurringPattern != nil && *req.RecurringPattern == ""
	if clearPattern {
		req.RecurringPattern = nil
	}
	if err := validateStruct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rem, ok := h.load(w, r)
	if !ok {
		return
	}

	if req.Title != nil {
		rem.Title = *req.Title
	}
	if req.Description != nil {
		rem.Description = strings.TrimSpace(*req.Description)
	}
	if req.ReminderDate != nil {
		if req.ReminderDate.IsZero() {
			http.Error(w, "invalid reminder_date", http.StatusBadRequest)
			return
		}
		rem.ReminderDate = *req.ReminderDate
	}
	if req.IsRecurring != nil {
		rem.IsRecurring = *req.IsRecurring
	}
	if req.RecurringPattern != nil || clearPattern {
		rem.RecurringPattern = patternPtr(req.RecurringPattern)
	}
	if req.IsActive != nil {
		rem.IsActive = *req.IsActive
	}
	if err := checkSchedule(&rem); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.reminders.UpdateReminder(r.Context(), &rem); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("update reminder failed", zap.Int("reminder_id", rem.ID), zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.reminders.DeleteReminder(r.Context(), currentUser(r), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("delete reminder failed", zap.Int("reminder_id", id), zap.Error(err))
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReminderHandler) load(w http.ResponseWriter, r *http.Request) (models.Reminder, bool) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return models.Reminder{}, false
	}
	rem, err := h.reminders.GetReminder(r.Context(), currentUser(r), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return models.Reminder{}, false
		}
		h.log.Error("load reminder failed", zap.Int("reminder_id", id), zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return models.Reminder{}, false
	}
	return rem, true
}
