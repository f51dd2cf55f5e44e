package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/dream_interpreter/internal/dreams"
	"github.com/Vovarama1992/dream_interpreter/internal/users"
)

// BotAPI — часть *tgbotapi.BotAPI, которой пользуется бот
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type BotApp struct {
	bot      BotAPI
	users    users.Service
	dreams   dreams.Service
	sessions *sessions
	log      *zap.SugaredLogger

	wg sync.WaitGroup
}

func NewBotApp(bot BotAPI, users users.Service, dreams dreams.Service, log *zap.SugaredLogger) *BotApp {
	return &BotApp{
		bot:      bot,
		users:    users,
		dreams:   dreams,
		sessions: newSessions(),
		log:      log,
	}
}

// Run — long polling до отмены ctx, затем дожидается начатых обработчиков
func (app *BotApp) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := app.bot.GetUpdatesChan(u)
	app.log.Infow("[bot_loop] started")

	defer app.wg.Wait()

	// начатые обработчики доводятся до конца и после остановки
	hctx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			app.bot.StopReceivingUpdates()
			app.log.Infow("[bot_loop] stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			app.wg.Add(1)
			go func() {
				defer app.wg.Done()
				app.handleUpdate(hctx, update)
			}()
		}
	}
}
