package error_notificator

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender — то, что нужно от *tgbotapi.BotAPI
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Infra struct {
	mu          sync.RWMutex
	bot         Sender
	adminChatID int64
	log         *zap.SugaredLogger
}

func NewInfra(bot Sender, adminChatID int64, log *zap.SugaredLogger) *Infra {
	return &Infra{bot: bot, adminChatID: adminChatID, log: log}
}

// SetBot — позволяет передать бота ПОСЛЕ того, как он инициализировался
func (i *Infra) SetBot(bot Sender) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.bot = bot
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	i.mu.RLock()
	bot := i.bot
	i.mu.RUnlock()

	if bot == nil || i.adminChatID == 0 {
		i.log.Warnw("[error_notificator] admin chat not configured", "err", err, "details", details)
		return nil
	}

	text := fmt.Sprintf(
		"❗ Ошибка в Соннике\n\nОшибка: %v\n\nДетали: %s",
		err,
		details,
	)

	if _, sendErr := bot.Send(tgbotapi.NewMessage(i.adminChatID, text)); sendErr != nil {
		i.log.Errorw("[error_notificator] send fail", "chat", i.adminChatID, "err", sendErr)
		return sendErr
	}
	return nil
}
