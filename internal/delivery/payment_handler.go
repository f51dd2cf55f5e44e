package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/dream_interpreter/internal/payment"
)

type PaymentHandler struct {
	payments payment.Service
	log      *logger.ZapLogger
}

func NewPaymentHandler(payments payment.Service, log *logger.ZapLogger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

// POST /api/v1/payment/create_invoice
func (h *PaymentHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      int64   `json:"user_id"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	inv, err := h.payments.CreateInvoice(r.Context(), payment.InvoiceRequest{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	switch {
	case errors.Is(err, payment.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.log.Log(logger.LogEntry{Level: "error", Message: "create invoice", Error: err, Service: "payment"})
		writeError(w, http.StatusInternalServerError, "payment error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"payment_url": inv.PaymentURL})
}
