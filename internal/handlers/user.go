package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"memoryjournal/internal/services"
	"memoryjournal/internal/store"
)

type UserHandler struct {
	users  UserStore
	encSvc *services.EncryptionService
	log    *zap.Logger
}

func NewUserHandler(users UserStore, encSvc *services.EncryptionService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, encSvc: encSvc, log: log}
}

// GetMe returns the current user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.UserByID(r.Context(), currentUser(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("load user failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if err := h.encSvc.DecryptUser(&u); err != nil {
		h.log.Error("decrypt user failed", zap.Int("user_id", u.ID), zap.Error(err))
		http.Error(w, "could not decrypt user data", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(u))
}

// UpdateMe changes the display name. An empty name clears it.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name *string `json:"name"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Name == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	name := body.Name
	if trimmed := strings.TrimSpace(*name); trimmed == "" {
		name = nil
	} else {
		name = &trimmed
	}
	if err := h.users.UpdateUserName(r.Context(), currentUser(r), name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("update user failed", zap.Error(err))
		http.Error(w, "could not update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMe removes the account and, through cascading deletes, all of its
// entries, media and reminders.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), currentUser(r)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("delete user failed", zap.Error(err))
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
