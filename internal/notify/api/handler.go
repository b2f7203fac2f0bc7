package api

import (
	"fmt"
	"net/http"

	"eventify/internal/auth"
	"eventify/internal/logger"
	"eventify/internal/notify"
	"eventify/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Notifier *notify.Notifier
	Logger   *logger.Logger
}

func NewHandler(notifier *notify.Notifier, log *logger.Logger) *Handler {
	return &Handler{Notifier: notifier, Logger: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.Notifier.ListByUser(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("List notifications: %v", err))
		http.Error(w, "Failed to list notifications", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, notifications)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	count, err := h.Notifier.UnreadCount(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UnreadCount: %v", err))
		http.Error(w, "Failed to count notifications", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, struct {
		Unread int `json:"unread"`
	}{Unread: count})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "notificationId")
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Notifier.MarkRead(r.Context(), notificationID, ident.UserID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("MarkRead: %v", err))
		http.Error(w, "Failed to mark notification read", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Notifier.MarkAllRead(r.Context(), ident.UserID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("MarkAllRead: %v", err))
		http.Error(w, "Failed to mark notifications read", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "notificationId")
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Notifier.Delete(r.Context(), notificationID, ident.UserID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Delete notification: %v", err))
		http.Error(w, "Failed to delete notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
