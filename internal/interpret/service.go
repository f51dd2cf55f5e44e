package interpret

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	builder *ContextBuilder
	client  Completer
	log     *zap.SugaredLogger
}

func NewService(builder *ContextBuilder, client Completer, log *zap.SugaredLogger) *Service {
	return &Service{
		builder: builder,
		client:  client,
		log:     log,
	}
}

// Interpret — контекст → модель (один вызов) → очистка → проверка на пустоту.
// Ошибки клиента пробрасываются без изменений.
func (s *Service) Interpret(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	prompt := s.builder.Build(req.Persona, req.Dream, req.History)

	raw, err := s.client.Complete(ctx, prompt)
	if err != nil {
		s.log.Warnw("[interpret] model call failed",
			"history", len(req.History),
			"elapsed", time.Since(start),
			"err", err,
		)
		return "", err
	}

	text := Sanitize(raw)
	if text == "" {
		s.log.Warnw("[interpret] empty answer after sanitize",
			"raw_len", len(raw),
			"elapsed", time.Since(start),
		)
		return "", emptyResultError()
	}

	s.log.Infow("[interpret] done",
		"history", len(req.History),
		"chars", len(text),
		"elapsed", time.Since(start),
	)
	return text, nil
}
