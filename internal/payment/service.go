package payment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const robokassaURL = "https://auth.robokassa.ru/Merchant/Index.aspx"

type Config struct {
	MerchantLogin string
	Password1     string
	// BaseURL пустой — боевой адрес робокассы
	BaseURL string
}

type robokassa struct {
	cfg Config
	now func() time.Time
	log *zap.SugaredLogger
}

func NewRobokassa(cfg Config, log *zap.SugaredLogger) Service {
	return newRobokassa(cfg, time.Now, log)
}

func newRobokassa(cfg Config, now func() time.Time, log *zap.SugaredLogger) *robokassa {
	if cfg.BaseURL == "" {
		cfg.BaseURL = robokassaURL
	}
	return &robokassa{cfg: cfg, now: now, log: log}
}

// CreateInvoice — ссылка на тестовую оплату, реальный платёж по ней не пройдёт
func (r *robokassa) CreateInvoice(_ context.Context, req InvoiceRequest) (*Invoice, error) {
	if req.Amount == 0 {
		req.Amount = DefaultAmount
	}
	if req.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(req.Description) == "" {
		req.Description = DefaultDescription
	}

	invoiceID := r.now().Unix()
	outSum := strconv.FormatFloat(req.Amount, 'f', 2, 64)

	q := url.Values{}
	q.Set("MerchantLogin", r.cfg.MerchantLogin)
	q.Set("OutSum", outSum)
	q.Set("InvoiceID", strconv.FormatInt(invoiceID, 10))
	q.Set("Description", req.Description)
	q.Set("SignatureValue", signature(r.cfg.MerchantLogin, outSum, invoiceID, r.cfg.Password1))
	q.Set("IsTest", "1")

	inv := &Invoice{
		InvoiceID:  invoiceID,
		OutSum:     outSum,
		PaymentURL: r.cfg.BaseURL + "?" + q.Encode(),
	}

	r.log.Infow("[payment] invoice created", "user", req.UserID, "invoice", invoiceID, "sum", outSum)
	return inv, nil
}

// signature — md5("login:OutSum:InvoiceID:password1") в hex
func signature(login, outSum string, invoiceID int64, password string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%d:%s", login, outSum, invoiceID, password)))
	return hex.EncodeToString(sum[:])
}
