package api

import (
	"fmt"
	"net/http"

	"eventify/internal/auth"
	"eventify/internal/logger"
	"eventify/internal/utils"
	"eventify/internal/wallet"
)

type Handler struct {
	Ledger *wallet.Ledger
	Logger *logger.Logger
}

func NewHandler(ledger *wallet.Ledger, log *logger.Logger) *Handler {
	return &Handler{Ledger: ledger, Logger: log}
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	balance, err := h.Ledger.Balance(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Balance: %v", err))
		http.Error(w, "Failed to load balance", utils.StatusForError(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, struct {
		Balance float64 `json:"balance"`
	}{Balance: balance})
}
