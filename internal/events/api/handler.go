package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"eventify/internal/auth"
	"eventify/internal/events"
	"eventify/internal/logger"
	"eventify/internal/models"
	"eventify/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *events.Service
	Logger  *logger.Logger
}

func NewHandler(service *events.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.Service.Create(r.Context(), ident, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event submitted for review", event))
	h.Logger.Info("API", fmt.Sprintf("CreateEvent: event %s created", event.ID))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	h.Logger.Info("API", fmt.Sprintf("GetEvent: eventId=%s", eventID))

	ident, _ := auth.FromContext(r.Context())
	event, err := h.Service.Get(r.Context(), ident, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEvent: %v", err))
		http.Error(w, "Event not found", utils.StatusForError(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := models.EventFilter{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
		Date:     r.URL.Query().Get("date"),
	}

	list, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.Service.Update(r.Context(), ident, eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event updated, pending re-approval", event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.Delete(r.Context(), ident, eventID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
	h.Logger.Info("API", fmt.Sprintf("DeleteEvent: event %s deleted", eventID))
}

// ---------------- ADMIN REVIEW ----------------

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListPending(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPending: %v", err))
		http.Error(w, "Failed to list pending events", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ident, _ := auth.FromContext(r.Context())

	event, err := h.Service.Approve(r.Context(), ident, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ApproveEvent: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event approved", event))
}

func (h *Handler) RejectEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ident, _ := auth.FromContext(r.Context())

	var body struct {
		Reason string `json:"reason"`
	}
	// A missing body means rejection without a reason.
	_ = json.NewDecoder(r.Body).Decode(&body)

	event, err := h.Service.Reject(r.Context(), ident, eventID, body.Reason)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RejectEvent: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event rejected", event))
}

func (h *Handler) ApproveAll(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.FromContext(r.Context())

	count, err := h.Service.ApproveAll(r.Context(), ident)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ApproveAll: %v", err))
		http.Error(w, "Failed to approve pending events", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("Approved %d events", count), nil))
}
