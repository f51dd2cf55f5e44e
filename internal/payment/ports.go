package payment

import (
	"context"
	"errors"
)

const (
	DefaultAmount      = 100.0
	DefaultDescription = "Расширенное толкование сна"
)

var ErrInvalidAmount = errors.New("amount must be positive")

type InvoiceRequest struct {
	UserID      int64
	Amount      float64
	Description string
}

type Invoice struct {
	InvoiceID  int64
	OutSum     string
	PaymentURL string
}

type Service interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
}
