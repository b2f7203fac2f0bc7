package api

import (
	"fmt"
	"net/http"

	"eventify/internal/auth"
	"eventify/internal/checkout"
	"eventify/internal/logger"
	"eventify/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *checkout.Service
	Logger  *logger.Logger
}

func NewHandler(service *checkout.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// StartCheckout opens a payment session for a paid event and hands the
// session URL back to the client for redirection.
func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("StartCheckout: user=%s event=%s", ident.UserID, eventID))

	session, err := h.Service.StartCheckout(r.Context(), ident.UserID, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("StartCheckout: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}

	response := struct {
		SessionID string `json:"session_id"`
		URL       string `json:"url"`
	}{
		SessionID: session.SessionID,
		URL:       session.URL,
	}
	utils.WriteJSON(w, http.StatusCreated, response)
	h.Logger.Info("API", fmt.Sprintf("StartCheckout: session %s created", session.SessionID))
}

// PaymentSuccess is the redirect target after a completed Stripe
// checkout. Settlement verifies with Stripe before changing anything, so
// hitting this endpoint with an unpaid session id does nothing.
func (h *Handler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("PaymentSuccess: session=%s", sessionID))

	payment, err := h.Service.ConfirmPayment(r.Context(), sessionID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PaymentSuccess: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment settled", payment))
}

// PaymentCancel is the redirect target when the user backs out of the
// Stripe page. The pending reservation is released.
func (h *Handler) PaymentCancel(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		http.Error(w, "eventId is required", http.StatusBadRequest)
		return
	}
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	removed, err := h.Service.CancelCheckout(r.Context(), ident.UserID, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PaymentCancel: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}

	message := "Nothing to cancel"
	if removed {
		message = "Checkout cancelled, seat released"
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(message, nil))
}

func (h *Handler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	payments, err := h.Service.Payments.ListByUser(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyPayments: %v", err))
		http.Error(w, "Failed to list payments", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, payments)
}
