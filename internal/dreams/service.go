package dreams

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vovarama1992/dream_interpreter/internal/error_notificator"
	"github.com/Vovarama1992/dream_interpreter/internal/interpret"
)

type service struct {
	repo         Repo
	users        UserReader
	interpreter  interpret.Interpreter
	exporter     Exporter
	notifier     error_notificator.Notificator
	historyLimit int
	log          *zap.SugaredLogger
}

// NewService — exporter может быть nil, тогда выгрузка отключена.
// historyLimit <= 0 означает значение по умолчанию, как и в ContextBuilder.
func NewService(
	repo Repo,
	users UserReader,
	interpreter interpret.Interpreter,
	exporter Exporter,
	notifier error_notificator.Notificator,
	historyLimit int,
	log *zap.SugaredLogger,
) Service {
	if historyLimit <= 0 {
		historyLimit = interpret.DefaultHistoryLimit
	}
	return &service{
		repo:         repo,
		users:        users,
		interpreter:  interpreter,
		exporter:     exporter,
		notifier:     notifier,
		historyLimit: historyLimit,
		log:          log,
	}
}

// === главный метод ===
func (s *service) Interpret(ctx context.Context, userID int64, text string) (*Dream, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinDreamLength {
		return nil, ErrDreamTooShort
	}

	// 1) пользователь
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 2) последние сны для контекста (от новых к старым)
	past, err := s.repo.LastN(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	history := make([]interpret.DreamRecord, 0, len(past))
	for _, d := range past {
		history = append(history, interpret.DreamRecord{
			RequestText:  d.RequestText,
			ResponseText: d.ResponseText,
		})
	}

	// 3) модель — ровно один вызов
	reply, err := s.interpreter.Interpret(ctx, interpret.Request{
		Dream:   text,
		Persona: interpret.Persona{DisplayName: u.FirstName},
		History: history,
	})
	if err != nil {
		s.log.Warnw("[dreams] interpretation failed", "user", userID, "err", err)
		_ = s.notifier.Notify(ctx, err,
			fmt.Sprintf("Толкование не получено\nПользователь: %d\nТекст: %q", userID, text))
		return nil, err
	}

	// 4) сохраняем только успешный непустой ответ
	d, err := s.repo.Create(ctx, userID, text, reply)
	if err != nil {
		_ = s.notifier.Notify(ctx, err, fmt.Sprintf("Ошибка записи сна: user=%d", userID))
		return nil, fmt.Errorf("save dream: %w", err)
	}

	s.log.Infow("[dreams] saved", "user", userID, "dream", d.ID, "history", len(history))
	return d, nil
}

func (s *service) History(ctx context.Context, userID int64) ([]ChatMessage, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}

	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toChat(list), nil
}

// toChat — каждый сон превращается в сообщение пользователя и, если есть, ответ бота
func toChat(list []Dream) []ChatMessage {
	out := make([]ChatMessage, 0, len(list)*2)
	for _, d := range list {
		out = append(out, ChatMessage{Role: "user", Text: d.RequestText, CreatedAt: d.CreatedAt})
		if d.ResponseText != nil && *d.ResponseText != "" {
			out = append(out, ChatMessage{Role: "bot", Text: *d.ResponseText, CreatedAt: d.CreatedAt})
		}
	}
	return out
}

type exportFile struct {
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	ExportedAt time.Time `json:"exported_at"`
	Dreams     []Dream   `json:"dreams"`
}

func (s *service) Export(ctx context.Context, userID int64) (string, error) {
	if s.exporter == nil {
		return "", ErrExportDisabled
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if list == nil {
		list = []Dream{}
	}

	data, err := json.MarshalIndent(exportFile{
		UserID:     u.ID,
		Name:       u.FirstName,
		ExportedAt: time.Now().UTC(),
		Dreams:     list,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%d/%s.json", userID, uuid.NewString())
	url, err := s.exporter.Upload(ctx, key, data, "application/json")
	if err != nil {
		_ = s.notifier.Notify(ctx, err, fmt.Sprintf("Ошибка выгрузки истории: user=%d", userID))
		return "", err
	}
	return url, nil
}
