package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"memoryjournal/internal/models"
	"memoryjournal/internal/services"
	"memoryjournal/internal/store"
)

type AuthHandler struct {
	users     UserStore
	encSvc    *services.EncryptionService
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
	log       *zap.Logger
}

func NewAuthHandler(users UserStore, encSvc *services.EncryptionService, jwtSecret []byte, tokenTTL time.Duration, now func() time.Time, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, encSvc: encSvc, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: now, log: log}
}

type credentials struct {
	Email    string  `json:"email" validate:"required|email"`
	Password string  `json:"password" validate:"required|minLen:6|maxLen:72"`
	Name     *string `json:"name"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	if err := validateStruct(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err := h.users.UserByEmailIndex(r.Context(), h.encSvc.GenerateEmailBlindIndex(c.Email))
	switch {
	case err == nil:
		http.Error(w, "email already registered", http.StatusBadRequest)
		return
	case !errors.Is(err, store.ErrNotFound):
		h.log.Error("lookup user failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "could not hash password", http.StatusInternalServerError)
		return
	}

	user := models.User{Email: c.Email, PasswordHash: string(hashed), Name: c.Name}
	if err := h.encSvc.EncryptUser(&user); err != nil {
		h.log.Error("encrypt user failed", zap.Error(err))
		http.Error(w, "could not create user", http.StatusInternalServerError)
		return
	}
	if err := h.users.CreateUser(r.Context(), &user); err != nil {
		h.log.Error("create user failed", zap.Error(err))
		http.Error(w, "could not create user", http.StatusBadRequest)
		return
	}

	token, err := h.issueJWT(user.ID)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	if c.Email == "" || c.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	user, err := h.users.UserByEmailIndex(r.Context(), h.encSvc.GenerateEmailBlindIndex(c.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.log.Error("lookup user failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := h.issueJWT(user.ID)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

func (h *AuthHandler) issueJWT(userID int) (string, error) {
	now := h.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(h.tokenTTL).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
