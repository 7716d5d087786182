package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"TuneFM/core/auth"
	"TuneFM/logger"
	"TuneFM/model"
	"TuneFM/repository"
)

type contextKey string

const userIDKey contextKey = "userID"

// GetUserIDFromContext extracts the authenticated user ID placed in the
// request context by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// AuthMiddleware rejects requests without a valid session cookie and makes
// the user ID available on the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.TokenCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := auth.ParseToken(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next(w, r.WithContext(ctx))
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and signs the new user in immediately.
func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("failed to hash password", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user := &model.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	id, err := h.userRepo.CreateUser(user)
	if err != nil {
		if err == repository.ErrDuplicateUser {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		logger.Error("failed to create user", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	user.ID = id

	h.issueSession(w, user)
	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and sets the session cookie.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userRepo.GetUserByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		logger.Error("failed to look up user", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.issueSession(w, user)
	writeJSON(w, http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the signed-in user.
func (h *APIHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		logger.Error("failed to load user", logger.Int64("userID", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "session user no longer exists")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) issueSession(w http.ResponseWriter, user *model.User) {
	token, err := auth.GenerateToken(user.ID, user.Name)
	if err != nil {
		logger.Error("failed to generate session token",
			logger.Int64("userID", user.ID), logger.ErrorField(err))
		return
	}
	auth.SetAuthCookie(w, token)
}
