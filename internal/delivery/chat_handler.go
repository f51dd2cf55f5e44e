package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/dream_interpreter/internal/dreams"
	"github.com/Vovarama1992/dream_interpreter/internal/interpret"
	"github.com/Vovarama1992/dream_interpreter/internal/users"
)

type ChatHandler struct {
	dreams dreams.Service
	log    *logger.ZapLogger
}

func NewChatHandler(dreams dreams.Service, log *logger.ZapLogger) *ChatHandler {
	return &ChatHandler{dreams: dreams, log: log}
}

// POST /api/v1/chat/interpret
func (h *ChatHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   string `json:"text"`
		UserID int64  `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	d, err := h.dreams.Interpret(r.Context(), req.UserID, req.Text)
	if err != nil {
		h.writeInterpretError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"interpretation": *d.ResponseText})
}

func (h *ChatHandler) writeInterpretError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *interpret.Error

	switch {
	case errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, "Пользователь не найден")
	case errors.Is(err, dreams.ErrDreamTooShort):
		writeError(w, http.StatusUnprocessableEntity, "Опишите сон подробнее, хотя бы несколько слов")
	case errors.As(err, &ie):
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "interpretation failed, request " + RequestIDFrom(r.Context()),
			Error:   err,
			Service: "chat",
		})
		writeError(w, http.StatusServiceUnavailable, ie.Message)
	default:
		h.log.Log(logger.LogEntry{Level: "error", Message: "interpret", Error: err, Service: "chat"})
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
