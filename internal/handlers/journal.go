package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"memoryjournal/internal/crypto"
	"memoryjournal/internal/models"
	"memoryjournal/internal/mood"
	"memoryjournal/internal/services"
	"memoryjournal/internal/store"
)

const defaultJournalLimit = 10

type JournalHandler struct {
	journals JournalStore
	encSvc   *services.EncryptionService
	lexicon  mood.Lexicon
	log      *zap.Logger
}

func NewJournalHandler(journals JournalStore, encSvc *services.EncryptionService, lexicon mood.Lexicon, log *zap.Logger) *JournalHandler {
	return &JournalHandler{journals: journals, encSvc: encSvc, lexicon: lexicon, log: log}
}

type journalRequest struct {
	Title    string   `json:"title" validate:"required|maxLen:100"`
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"required|in:personal,professional"`
	Mood     string   `json:"mood" validate:"in:happy,sad,angry,anxious,neutral,excited,calm,other"`
	Tags     []string `json:"tags"`
	Location *string  `json:"location"`
	Password string   `json:"password" validate:"maxLen:56"`
}

type journalWithMediaRequest struct {
	journalRequest
	Media []mediaRequest `json:"media"`
}

// Create stores a new entry. Without an explicit mood one is detected from
// the content; with a password the content is sealed under it.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	j, ok := h.newJournal(w, r, &req)
	if !ok {
		return
	}
	if err := h.journals.CreateJournal(r.Context(), &j); err != nil {
		h.log.Error("create journal failed", zap.Int("user_id", j.UserID), zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	h.writeCreated(w, j, req.Content)
}

// CreateWithMedia stores an entry together with up to ten already hosted
// media files. Either everything is saved or nothing is.
func (h *JournalHandler) CreateWithMedia(w http.ResponseWriter, r *http.Request) {
	var req journalWithMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(req.Media) > maxMediaPerRequest {
		http.Error(w, fmt.Sprintf("at most %d media per entry", maxMediaPerRequest), http.StatusBadRequest)
		return
	}
	userID := currentUser(r)
	media := make([]models.Media, 0, len(req.Media))
	for i := range req.Media {
		m, err := req.Media[i].toMedia(userID)
		if err != nil {
			http.Error(w, fmt.Sprintf("media[%d]: %s", i, err), http.StatusBadRequest)
			return
		}
		media = append(media, m)
	}
	j, ok := h.newJournal(w, r, &req.journalRequest)
	if !ok {
		return
	}
	if err := h.journals.CreateJournalWithMedia(r.Context(), &j, media); err != nil {
		h.log.Error("create journal with media failed", zap.Int("user_id", j.UserID), zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	j.Media = media
	h.writeCreated(w, j, req.Content)
}

// newJournal validates req and returns the sealed entry ready to insert.
func (h *JournalHandler) newJournal(w http.ResponseWriter, r *http.Request, req *journalRequest) (models.Journal, bool) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return models.Journal{}, false
	}

	j := models.Journal{
		UserID:   currentUser(r),
		Title:    req.Title,
		Content:  req.Content,
		Category: models.Category(req.Category),
		Mood:     mood.Mood(req.Mood),
		Tags:     cleanTags(req.Tags),
		Location: trimmedPtr(req.Location),
	}
	if j.Mood == "" {
		j.Mood = mood.Detect(req.Content, h.lexicon)
	}
	if err := h.encSvc.SealJournal(&j, req.Password); err != nil {
		h.log.Error("seal journal failed", zap.Error(err))
		http.Error(w, "could not encrypt content", http.StatusInternalServerError)
		return models.Journal{}, false
	}
	return j, true
}

func (h *JournalHandler) writeCreated(w http.ResponseWriter, j models.Journal, plain string) {
	if j.IsProtected {
		j.Content = ""
	} else {
		j.Content = plain
	}
	writeJSON(w, http.StatusCreated, j)
}

// List returns one page of entries, newest first, with their media.
// Query params: page, limit, startDate, endDate, mood, category, tags.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	q := r.URL.Query()

	page, err := pageParams(r, defaultJournalLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := store.JournalFilter{Start: start, End: end, Page: page}
	if m := q.Get("mood"); m != "" {
		if !mood.Mood(m).Valid() {
			http.Error(w, "invalid mood", http.StatusBadRequest)
			return
		}
		f.Mood = mood.Mood(m)
	}
	if c := q.Get("category"); c != "" {
		if !validCategory(c) {
			http.Error(w, "invalid category", http.StatusBadRequest)
			return
		}
		f.Category = models.Category(c)
	}
	if t := q.Get("tags"); t != "" {
		f.Tags = cleanTags(strings.Split(t, ","))
	}

	entries, total, err := h.journals.ListJournals(r.Context(), userID, f)
	if err != nil {
		h.log.Error("list journals failed", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	if err := h.attachMedia(r, userID, entries); err != nil {
		h.log.Error("load journal media failed", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	for i := range entries {
		if err := h.encSvc.OpenJournal(&entries[i]); err != nil {
			h.log.Error("decrypt journal failed", zap.Int("journal_id", entries[i].ID), zap.Error(err))
			http.Error(w, "could not decrypt content", http.StatusInternalServerError)
			return
		}
	}

	p := paginate(page.Page, page.Limit, total)
	writeJSON(w, http.StatusOK, listResponse[models.Journal]{
		Count:      len(entries),
		Total:      total,
		Pagination: &p,
		Data:       entries,
	})
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.encSvc.OpenJournal(&j); err != nil {
		h.log.Error("decrypt journal failed", zap.Int("journal_id", j.ID), zap.Error(err))
		http.Error(w, "could not decrypt content", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// Unlock returns a protected entry with its content after checking the
// entry password.
func (h *JournalHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &body); err != nil || body.Password == "" {
		http.Error(w, "password required", http.StatusBadRequest)
		return
	}
	j, ok := h.load(w, r)
	if !ok {
		return
	}
	if !h.unlock(w, &j, body.Password) {
		return
	}
	writeJSON(w, http.StatusOK, j)
}

type journalUpdateRequest struct {
	Title    *string   `json:"title" validate:"minLen:1|maxLen:100"`
	Content  *string   `json:"content" validate:"minLen:1"`
	Category *string   `json:"category" validate:"in:personal,professional"`
	Mood     *string   `json:"mood" validate:"in:happy,sad,angry,anxious,neutral,excited,calm,other"`
	Tags     *[]string `json:"tags"`
	Location *string   `json:"location"`
	// Password sets a new entry password; an empty string removes protection.
	Password *string `json:"password" validate:"maxLen:56"`
	// CurrentPassword is needed to change content or protection of a
	// protected entry.
	CurrentPassword string `json:"current_password"`
}

// Update changes the given fields of an entry.
func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req journalUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		req.Title = &t
	}
	if err := validateStruct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	j, ok := h.load(w, r)
	if !ok {
		return
	}

	reseal := req.Content != nil || req.Password != nil
	password := ""
	if j.IsProtected {
		if reseal {
			if req.CurrentPassword == "" {
				http.Error(w, "current_password required", http.StatusForbidden)
				return
			}
			if !h.unlock(w, &j, req.CurrentPassword) {
				return
			}
			password = req.CurrentPassword
		}
	} else {
		if err := h.encSvc.OpenJournal(&j); err != nil {
			h.log.Error("decrypt journal failed", zap.Int("journal_id", j.ID), zap.Error(err))
			http.Error(w, "could not decrypt content", http.StatusInternalServerError)
			return
		}
		reseal = true
	}

	if req.Title != nil {
		j.Title = *req.Title
	}
	if req.Content != nil {
		j.Content = *req.Content
	}
	if req.Category != nil {
		j.Category = models.Category(*req.Category)
	}
	if req.Mood != nil {
		j.Mood = mood.Mood(*req.Mood)
	}
	if req.Tags != nil {
		j.Tags = cleanTags(*req.Tags)
	}
	if req.Location != nil {
		j.Location = trimmedPtr(req.Location)
	}
	if req.Password != nil {
		password = *req.Password
	}

	plain := j.Content
	if reseal {
		if err := h.encSvc.SealJournal(&j, password); err != nil {
			h.log.Error("seal journal failed", zap.Error(err))
			http.Error(w, "could not encrypt content", http.StatusInternalServerError)
			return
		}
	}
	if err := h.journals.UpdateJournal(r.Context(), &j); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("update journal failed", zap.Int("journal_id", j.ID), zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}

	if j.IsProtected {
		j.Content = ""
	} else {
		j.Content = plain
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.journals.DeleteJournal(r.Context(), currentUser(r), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("delete journal failed", zap.Int("journal_id", id), zap.Error(err))
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load fetches the entry named in the path, with media, and writes the
// error response itself when it cannot.
func (h *JournalHandler) load(w http.ResponseWriter, r *http.Request) (models.Journal, bool) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return models.Journal{}, false
	}
	userID := currentUser(r)
	j, err := h.journals.GetJournal(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return models.Journal{}, false
		}
		h.log.Error("load journal failed", zap.Int("journal_id", id), zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return models.Journal{}, false
	}
	entries := []models.Journal{j}
	if err := h.attachMedia(r, userID, entries); err != nil {
		h.log.Error("load journal media failed", zap.Int("journal_id", id), zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return models.Journal{}, false
	}
	return entries[0], true
}

func (h *JournalHandler) unlock(w http.ResponseWriter, j *models.Journal, password string) bool {
	err := h.encSvc.UnlockJournal(j, password)
	switch {
	case err == nil:
		return true
	case errors.Is(err, services.ErrNotProtected):
		http.Error(w, "journal is not protected", http.StatusBadRequest)
	case errors.Is(err, crypto.ErrWrongPassword):
		http.Error(w, "wrong password", http.StatusForbidden)
	default:
		h.log.Error("unlock journal failed", zap.Int("journal_id", j.ID), zap.Error(err))
		http.Error(w, "could not decrypt content", http.StatusInternalServerError)
	}
	return false
}

func (h *JournalHandler) attachMedia(r *http.Request, userID int, entries []models.Journal) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]int, len(entries))
	for i, j := range entries {
		ids[i] = j.ID
	}
	media, err := h.journals.MediaByJournal(r.Context(), userID, ids)
	if err != nil {
		return err
	}
	for i := range entries {
		entries[i].Media = media[entries[i].ID]
	}
	return nil
}

func validCategory(c string) bool {
	return models.Category(c) == models.CategoryPersonal || models.Category(c) == models.CategoryProfessional
}

func cleanTags(in []string) models.Tags {
	out := models.Tags{}
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
