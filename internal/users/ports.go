package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrPhoneTaken   = errors.New("phone already registered")
	ErrInvalidName  = errors.New("invalid first name")
	ErrInvalidPhone = errors.New("invalid phone")
	ErrInvalidDOB   = errors.New("invalid date of birth")
)

type User struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"name"`
	LastName   *string   `json:"last_name,omitempty"`
	DOB        time.Time `json:"dob"`
	Phone      *string   `json:"phone,omitempty"`
	TelegramID *int64    `json:"telegram_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Registration — итог диалога регистрации в боте
type Registration struct {
	FirstName  string
	DOB        time.Time
	Phone      string
	TelegramID int64
}

// Infra — работа с БД
type Infra interface {
	Get(ctx context.Context, id int64) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	FindByNameDOB(ctx context.Context, name string, dob time.Time) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)

	// в рамках транзакции регистрации
	PhoneExistsTx(ctx context.Context, tx *sql.Tx, phone string) (bool, error)
	CreateTx(ctx context.Context, tx *sql.Tx, u *User) (*User, error)
}

// Service — бизнес-операции
type Service interface {
	LoginOrCreate(ctx context.Context, name string, dob time.Time) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	RegisterTelegram(ctx context.Context, reg Registration) (*User, error)
}
