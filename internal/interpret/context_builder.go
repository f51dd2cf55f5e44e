package interpret

import (
	"fmt"
	"strings"
)

const (
	systemPromptTmpl = "Ты — мудрый толкователь снов. К тебе обращается пользователь по имени %s. " +
		"Твои ответы должны быть глубокими и поэтичными. " +
		"Учитывай предыдущие сны пользователя, чтобы найти связи и закономерности."

	firstDreamFraming = "Это первый сон, который пользователь тебе рассказывает. Постарайся произвести хорошее впечатление."
	historyHeader     = "Вот предыдущие сны этого пользователя и их толкования (от старых к новым):\n"
	historyFooter     = "А теперь, учитывая этот контекст, растолкуй новый сон."
)

type ContextBuilder struct {
	MaxHistory int
}

func NewContextBuilder(maxHistory int) *ContextBuilder {
	if maxHistory <= 0 {
		maxHistory = DefaultHistoryLimit
	}
	return &ContextBuilder{MaxHistory: maxHistory}
}

// Build собирает системный промпт и пользовательское сообщение.
// history приходит от новых к старым; в промпт попадает от старых к новым.
func (b *ContextBuilder) Build(p Persona, dream string, history []DreamRecord) Prompt {
	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		name = GuestName
	}

	window := history
	if len(window) > b.MaxHistory {
		window = window[:b.MaxHistory]
	}

	var past strings.Builder
	for i := len(window) - 1; i >= 0; i-- {
		rec := window[i]
		// в историю попадают только растолкованные сны
		if rec.ResponseText == nil || strings.TrimSpace(*rec.ResponseText) == "" {
			continue
		}
		if strings.TrimSpace(rec.RequestText) == "" {
			continue
		}
		fmt.Fprintf(&past, "- Сон: '%s'\n- Толкование: '%s'\n\n", rec.RequestText, *rec.ResponseText)
	}

	var framing string
	if past.Len() == 0 {
		framing = firstDreamFraming
	} else {
		framing = historyHeader + past.String() + historyFooter
	}

	return Prompt{
		System: fmt.Sprintf(systemPromptTmpl, name),
		User:   framing + "\n\nНовый сон: " + dream,
	}
}
