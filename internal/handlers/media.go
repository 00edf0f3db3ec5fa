package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memoryjournal/internal/models"
	"memoryjournal/internal/store"
)

const (
	defaultMediaLimit  = 20
	maxMediaPerRequest = 10
)

type MediaHandler struct {
	media MediaStore
	log   *zap.Logger
}

func NewMediaHandler(media MediaStore, log *zap.Logger) *MediaHandler {
	return &MediaHandler{media: media, log: log}
}

type mediaRequest struct {
	Type      string  `json:"type" validate:"required|in:image,audio,video"`
	URL       string  `json:"url" validate:"required|url"`
	Caption   string  `json:"caption" validate:"maxLen:200"`
	JournalID *int    `json:"journal_id"`
	FileSize  int64   `json:"file_size" validate:"min:0"`
	MimeType  *string `json:"mime_type"`
}

// toMedia validates the request and returns the row to insert, with a fresh
// public id.
func (req *mediaRequest) toMedia(userID int) (models.Media, error) {
	req.URL = strings.TrimSpace(req.URL)
	req.Caption = strings.TrimSpace(req.Caption)
	if err := validateStruct(req); err != nil {
		return models.Media{}, err
	}
	return models.Media{
		UserID:    userID,
		JournalID: req.JournalID,
		Type:      models.MediaType(req.Type),
		URL:       req.URL,
		PublicID:  uuid.NewString(),
		Caption:   req.Caption,
		FileSize:  req.FileSize,
		MimeType:  req.MimeType,
	}, nil
}

// Create registers an uploaded file. The bytes live with the storage
// provider; only the reference is kept here.
func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req mediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	m, err := req.toMedia(currentUser(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.media.CreateMedia(r.Context(), &m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "journal not found", http.StatusNotFound)
			return
		}
		h.log.Error("create media failed", zap.Int("user_id", m.UserID), zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type mediaBatchRequest struct {
	// JournalID applies to every item that does not name its own.
	JournalID *int           `json:"journal_id"`
	Media     []mediaRequest `json:"media"`
}

// CreateBatch registers up to ten files in one transaction.
func (h *MediaHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req mediaBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(req.Media) == 0 || len(req.Media) > maxMediaPerRequest {
		http.Error(w, fmt.Sprintf("media must hold 1 to %d items", maxMediaPerRequest), http.StatusBadRequest)
		return
	}

	userID := currentUser(r)
	out := make([]models.Media, 0, len(req.Media))
	for i := range req.Media {
		if req.Media[i].JournalID == nil {
			req.Media[i].JournalID = req.JournalID
		}
		m, err := req.Media[i].toMedia(userID)
		if err != nil {
			http.Error(w, fmt.Sprintf("media[%d]: %s", i, err), http.StatusBadRequest)
			return
		}
		out = append(out, m)
	}
	if err := h.media.CreateMediaBatch(r.Context(), out); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "journal not found", http.StatusNotFound)
			return
		}
		h.log.Error("create media batch failed", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, listResponse[models.Media]{Count: len(out), Data: out})
}

// List returns one page of the user's media, newest first.
// Query params: type, journalId, page, limit.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := pageParams(r, defaultMediaLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := store.MediaFilter{Page: page}
	if t := q.Get("type"); t != "" {
		f.Type = models.MediaType(t)
		if !f.Type.Valid() {
			http.Error(w, "invalid type", http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("journalId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			http.Error(w, "invalid journalId", http.StatusBadRequest)
			return
		}
		f.JournalID = &id
	}

	userID := currentUser(r)
	out, total, err := h.media.ListMedia(r.Context(), userID, f)
	if err != nil {
		h.log.Error("list media failed", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	p := paginate(page.Page, page.Limit, total)
	writeJSON(w, http.StatusOK, listResponse[models.Media]{Count: len(out), Total: total, Pagination: &p, Data: out})
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	m, err := h.media.DeleteMedia(r.Context(), currentUser(r), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("delete media failed", zap.Int("media_id", id), zap.Error(err))
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	h.log.Info("media removed", zap.Int("media_id", m.ID), zap.String("public_id", m.PublicID))
	w.WriteHeader(http.StatusNoContent)
}
