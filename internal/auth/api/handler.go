package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eventify/internal/auth"
	"eventify/internal/config"
	"eventify/internal/logger"
	"eventify/internal/models"
	"eventify/internal/users"
	"eventify/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users  *users.DB
	Cfg    config.JWTConfig
	Logger *logger.Logger
}

func NewHandler(db *users.DB, cfg config.JWTConfig, log *logger.Logger) *Handler {
	return &Handler{Users: db, Cfg: cfg, Logger: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "name, email and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}

	role := models.RoleUser
	if req.Role == string(models.RoleOrganizer) {
		role = models.RoleOrganizer
	}

	if existing, err := h.Users.GetByEmail(r.Context(), req.Email); err == nil && existing != nil {
		http.Error(w, "email already in use", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Register: failed to hash password: %v", err))
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := h.Users.CreateUser(r.Context(), user); err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Register: failed to create user: %v", err))
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	token, err := auth.IssueToken(h.Cfg, user)
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Register: failed to issue token: %v", err))
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("User %s registered as %s", user.ID, user.Role))
	utils.WriteJSON(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Same answer as a bad password, so emails cannot be probed.
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.IssueToken(h.Cfg, user)
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Login: failed to issue token: %v", err))
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("User %s logged in", user.ID))
	utils.WriteJSON(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetUser(r.Context(), ident.UserID)
	if err != nil {
		http.Error(w, "User not found", utils.StatusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}
