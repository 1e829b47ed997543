package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"lyricclash/internal/models"
	"lyricclash/internal/service"
)

// AuthHandler serves the token exchange endpoint
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		AccessCode string `json:"accessCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.AccessCode == "" {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	token, user, err := h.authService.Login(req.Email, req.AccessCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or access code", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "login failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":   user.ID,
			"name": user.Name,
			"role": user.Role,
		},
	})
}

// CreateUser handles POST /api/users. Authors register learner accounts (or
// fellow authors) and hand out the access code themselves.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Role       string `json:"role"`
		AccessCode string `json:"accessCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Email == "" || req.AccessCode == "" {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleLearner
	}
	if req.Role != models.RoleLearner && req.Role != models.RoleAuthor {
		respondWithError(w, http.StatusBadRequest, "Role must be author or learner", "", nil)
		return
	}

	user, err := h.authService.CreateUser(req.Name, req.Email, req.Role, req.AccessCode)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, "Email already registered", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "user creation failed", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}
