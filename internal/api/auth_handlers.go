package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/intern-engine/internal/models"
)

const minPasswordLen = 8

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "a valid email is required")
		return
	}

	if len(req.Password) < minPasswordLen {
		respondError(w, http.StatusBadRequest, "validation_error", "password must be at least 8 characters")
		return
	}

	existing, err := s.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		slog.Error("failed to check existing user", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register")
		return
	}

	if existing != nil {
		respondError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
		return
	}

	hash, err := s.authManager.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register")
		return
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hash,
		Name:           strings.TrimSpace(req.Name),
		Role:           "intern",
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.CreateUser(r.Context(), user); err != nil {
		slog.Error("failed to create user", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register")
		return
	}

	token, err := s.authManager.IssueToken(user.ID)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register")
		return
	}

	slog.Info("user registered", "user_id", user.ID)

	respondJSON(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to log in")
		return
	}

	if user == nil || !s.authManager.CheckPassword(user.HashedPassword, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	token, err := s.authManager.IssueToken(user.ID)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to log in")
		return
	}

	if err := s.repo.UpdateUserLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("failed to stamp last login", "error", err, "user_id", user.ID)
	}

	respondJSON(w, http.StatusOK, tokenResponse{Token: token, User: user})
}
