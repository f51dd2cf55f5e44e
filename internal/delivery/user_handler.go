package delivery

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/dream_interpreter/internal/dreams"
	"github.com/Vovarama1992/dream_interpreter/internal/users"
)

type UserHandler struct {
	users  users.Service
	dreams dreams.Service
	log    *logger.ZapLogger
}

func NewUserHandler(users users.Service, dreams dreams.Service, log *logger.ZapLogger) *UserHandler {
	return &UserHandler{users: users, dreams: dreams, log: log}
}

type userResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	DOB  string `json:"dob"`
}

// POST /api/v1/users/ — вход по имени и дате рождения, новый пользователь создаётся
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		DOB  string `json:"dob"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	dob, err := time.Parse(time.DateOnly, req.DOB)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "dob must be YYYY-MM-DD")
		return
	}

	u, err := h.users.LoginOrCreate(r.Context(), req.Name, dob)
	switch {
	case errors.Is(err, users.ErrInvalidName), errors.Is(err, users.ErrInvalidDOB):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.log.Log(logger.LogEntry{Level: "error", Message: "login", Error: err, Service: "users"})
		writeError(w, http.StatusInternalServerError, "db error")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:   u.ID,
		Name: u.FirstName,
		DOB:  u.DOB.Format(time.DateOnly),
	})
}

// GET /api/v1/users/{id}/history
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	msgs, err := h.dreams.History(r.Context(), id)
	switch {
	case errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, "Пользователь не найден")
		return
	case err != nil:
		h.log.Log(logger.LogEntry{Level: "error", Message: "history", Error: err, Service: "users"})
		writeError(w, http.StatusInternalServerError, "db error")
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

// GET /api/v1/users/{id}/history/export
func (h *UserHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	url, err := h.dreams.Export(r.Context(), id)
	switch {
	case errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, "Пользователь не найден")
		return
	case errors.Is(err, dreams.ErrExportDisabled):
		writeError(w, http.StatusNotImplemented, "Выгрузка истории не настроена")
		return
	case err != nil:
		h.log.Log(logger.LogEntry{Level: "error", Message: "export", Error: err, Service: "users"})
		writeError(w, http.StatusBadGateway, "export failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
