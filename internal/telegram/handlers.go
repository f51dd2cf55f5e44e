package telegram

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vovarama1992/dream_interpreter/internal/dreams"
	"github.com/Vovarama1992/dream_interpreter/internal/interpret"
	"github.com/Vovarama1992/dream_interpreter/internal/users"
)

const (
	msgWelcomeBack = "С возвращением, %s! Жду ваш новый сон."
	msgRegistered  = "Регистрация завершена! Рад знакомству, %s. Теперь вы можете присылать мне свои сны."
	msgUnknownUser = "Кажется, мы еще не знакомы. Пожалуйста, отправьте команду /start"
	msgTooShort    = "Опишите сон подробнее, хотя бы несколько слов."
	msgFailed      = "Произошла ошибка при толковании: %s"
	msgInternal    = "⚠️ Ошибка при обработке запроса. Попробуйте позже."

	msgForeignContact = "Это не ваш контакт. Нажмите кнопку ниже, чтобы отправить свой номер, или введите его вручную."
)

// лимит Telegram на длину сообщения
const maxMessageLen = 4096

func (app *BotApp) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	tgID := msg.From.ID

	unlock := app.sessions.lock(tgID)
	defer unlock()

	app.log.Debugw("[bot_touch]", "tg", tgID, "update", update.UpdateID)

	if msg.IsCommand() && msg.Command() == "start" {
		app.handleStart(ctx, msg)
		return
	}

	if sess := app.sessions.get(tgID); sess.State != StateIdle {
		app.handleRegistration(ctx, msg, sess)
		return
	}

	if msg.Text != "" {
		app.handleDream(ctx, msg)
	}
}

func (app *BotApp) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	tgID := msg.From.ID

	u, err := app.users.GetByTelegramID(ctx, tgID)
	switch {
	case err == nil:
		app.sessions.clear(tgID)
		app.send(msg.Chat.ID, fmt.Sprintf(msgWelcomeBack, u.FirstName))
	case errors.Is(err, users.ErrNotFound):
		app.sessions.set(tgID, Begin())
		app.send(msg.Chat.ID, msgAskFirstName)
	default:
		app.log.Errorw("[start] user lookup failed", "tg", tgID, "err", err)
		app.send(msg.Chat.ID, msgInternal)
	}
}

func (app *BotApp) handleRegistration(ctx context.Context, msg *tgbotapi.Message, sess Session) {
	tgID := msg.From.ID
	chatID := msg.Chat.ID

	input := msg.Text
	if msg.Contact != nil && sess.State == StateAwaitPhone {
		// принимаем только собственный контакт отправителя
		if msg.Contact.UserID != tgID {
			out := tgbotapi.NewMessage(chatID, msgForeignContact)
			out.ReplyMarkup = phoneKeyboard()
			app.sendMessage(out)
			return
		}
		input = msg.Contact.PhoneNumber
	}

	next, reply, complete := sess.Advance(input)
	if !complete {
		app.sessions.set(tgID, next)

		out := tgbotapi.NewMessage(chatID, reply)
		if next.State == StateAwaitPhone {
			out.ReplyMarkup = phoneKeyboard()
		}
		app.sendMessage(out)
		return
	}

	u, err := app.users.RegisterTelegram(ctx, next.Registration(tgID))
	switch {
	case errors.Is(err, users.ErrPhoneTaken):
		out := tgbotapi.NewMessage(chatID, msgPhoneTaken)
		out.ReplyMarkup = phoneKeyboard()
		app.sendMessage(out)
		return
	case err != nil:
		app.log.Errorw("[register] failed", "tg", tgID, "state", sess.State, "err", err)
		app.send(chatID, msgInternal)
		return
	}

	app.sessions.clear(tgID)
	app.log.Infow("[register] done", "tg", tgID, "user", u.ID)

	out := tgbotapi.NewMessage(chatID, fmt.Sprintf(msgRegistered, u.FirstName))
	out.ReplyMarkup = removeKeyboard()
	app.sendMessage(out)
}

func (app *BotApp) handleDream(ctx context.Context, msg *tgbotapi.Message) {
	tgID := msg.From.ID
	chatID := msg.Chat.ID

	u, err := app.users.GetByTelegramID(ctx, tgID)
	if errors.Is(err, users.ErrNotFound) {
		app.send(chatID, msgUnknownUser)
		return
	}
	if err != nil {
		app.log.Errorw("[text] user lookup failed", "tg", tgID, "err", err)
		app.send(chatID, msgInternal)
		return
	}

	if _, err := app.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		app.log.Debugw("[text] typing action failed", "err", err)
	}

	d, err := app.dreams.Interpret(ctx, u.ID, msg.Text)
	if err != nil {
		app.reply(msg, failureText(err))
		return
	}

	app.reply(msg, *d.ResponseText)
	app.log.Infow("[text] done", "tg", tgID, "dream", d.ID)
}

func failureText(err error) string {
	var ie *interpret.Error
	switch {
	case errors.Is(err, dreams.ErrDreamTooShort):
		return msgTooShort
	case errors.As(err, &ie):
		return fmt.Sprintf(msgFailed, ie.Message)
	default:
		return msgInternal
	}
}

func (app *BotApp) send(chatID int64, text string) {
	app.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// reply — ответ на исходное сообщение, длинный текст режется на части
func (app *BotApp) reply(msg *tgbotapi.Message, text string) {
	for i, part := range splitMessage(text, maxMessageLen) {
		out := tgbotapi.NewMessage(msg.Chat.ID, part)
		if i == 0 {
			out.ReplyToMessageID = msg.MessageID
		}
		app.sendMessage(out)
	}
}

func (app *BotApp) sendMessage(out tgbotapi.MessageConfig) {
	if _, err := app.bot.Send(out); err != nil {
		app.log.Warnw("[send] failed", "chat", out.ChatID, "err", err)
	}
}

func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		// режем по последнему переводу строки, если он не слишком близко к началу
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
