package interpret

import "context"

// DefaultHistoryLimit — сколько последних снов уходит в контекст модели
const DefaultHistoryLimit = 3

// GuestName подставляется, если у пользователя нет имени
const GuestName = "Гость"

// Persona — как обращаться к пользователю в системном промпте
type Persona struct {
	DisplayName string
}

// DreamRecord — прошлый сон и его толкование.
// ResponseText == nil означает, что толкования ещё нет.
type DreamRecord struct {
	RequestText  string
	ResponseText *string
}

// Request — вход пайплайна.
// History передаётся от новых к старым, как её отдаёт репозиторий.
type Request struct {
	Dream   string
	Persona Persona
	History []DreamRecord
}

// Prompt — готовая пара сообщений для модели
type Prompt struct {
	System string
	User   string
}

// Completer — один запрос к внешней модели, возвращает сырой текст
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Interpreter — единая точка входа для API и бота
type Interpreter interface {
	Interpret(ctx context.Context, req Request) (string, error)
}
