package dreams

import (
	"context"
	"errors"
	"time"

	"github.com/Vovarama1992/dream_interpreter/internal/users"
)

// MinDreamLength — минимальная длина текста сна в символах
const MinDreamLength = 10

var (
	ErrDreamTooShort  = errors.New("dream text is too short")
	ErrExportDisabled = errors.New("history export is not configured")
)

type Dream struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	RequestText  string    `json:"request_text"`
	ResponseText *string   `json:"response_text"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChatMessage — сообщение в ленте чата на фронте
type ChatMessage struct {
	Role      string    `json:"role"` // user | bot
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Repo — Postgres / SQLite
type Repo interface {
	Create(ctx context.Context, userID int64, requestText, responseText string) (*Dream, error)
	// от новых к старым
	LastN(ctx context.Context, userID int64, n int) ([]Dream, error)
	// от старых к новым
	ListByUser(ctx context.Context, userID int64) ([]Dream, error)
}

type UserReader interface {
	Get(ctx context.Context, id int64) (*users.User, error)
}

// Exporter — выгрузка файла во внешнее хранилище, возвращает ссылку на скачивание
type Exporter interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Service interface {
	Interpret(ctx context.Context, userID int64, text string) (*Dream, error)
	History(ctx context.Context, userID int64) ([]ChatMessage, error)
	Export(ctx context.Context, userID int64) (string, error)
}
