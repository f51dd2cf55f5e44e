package interpret

import (
	"errors"
	"fmt"
)

var (
	ErrClientRequest      = errors.New("interpret: upstream rejected request")
	ErrServiceUnavailable = errors.New("interpret: upstream unavailable")
	ErrTimeout            = errors.New("interpret: upstream timeout")
	ErrNetwork            = errors.New("interpret: network error")
	ErrEmptyResult        = errors.New("interpret: empty interpretation")
)

const (
	msgServiceUnavailable = "Сервер, отвечающий за толкование снов, сейчас перегружен или недоступен."
	msgTimeout            = "Модель слишком долго думала и не ответила вовремя. Пожалуйста, попробуйте еще раз."
	msgNetwork            = "Произошла ошибка сети при попытке связаться с ИИ."
	msgEmptyResult        = "ИИ задумался и вернул пустой ответ. Пожалуйста, попробуйте отправить запрос еще раз."
)

// Error — ошибка пайплайна. Message можно показывать пользователю как есть.
type Error struct {
	Kind       error
	Message    string
	StatusCode int
	cause      error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// IsFailure — относится ли ошибка к таксономии пайплайна
func IsFailure(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

func clientRequestError(status int, body string) *Error {
	return &Error{
		Kind:       ErrClientRequest,
		Message:    fmt.Sprintf("Ошибка клиента от API: %d - %s", status, body),
		StatusCode: status,
	}
}

func serviceUnavailableError(status int, cause error) *Error {
	return &Error{Kind: ErrServiceUnavailable, Message: msgServiceUnavailable, StatusCode: status, cause: cause}
}

func timeoutError(cause error) *Error {
	return &Error{Kind: ErrTimeout, Message: msgTimeout, cause: cause}
}

func networkError(cause error) *Error {
	return &Error{Kind: ErrNetwork, Message: msgNetwork, cause: cause}
}

func emptyResultError() *Error {
	return &Error{Kind: ErrEmptyResult, Message: msgEmptyResult}
}
