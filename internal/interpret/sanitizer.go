package interpret

import (
	"regexp"
	"strings"
)

var (
	// <s>, </s>, <observation>, а также блоки рассуждений вместе с содержимым
	controlTagsRe = regexp.MustCompile(`(?is)<thought>.*?</thought>|<think>.*?</think>|</?s>|</?observation>`)
	// [INST], [/INST], [OUT] ...
	bracketMarkerRe = regexp.MustCompile(`\[/?[\p{L}\p{N}_]+\]`)
	// всё, что осталось в угловых скобках
	angleMarkupRe = regexp.MustCompile(`<[^>]+>`)
)

// Sanitize очищает ответ модели от служебных токенов и тегов.
// Проходы повторяются, пока текст меняется: удаление одного маркера
// может склеить новый, например "[[a]b]".
func Sanitize(raw string) string {
	text := raw
	for {
		next := sanitizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func sanitizeOnce(text string) string {
	text = controlTagsRe.ReplaceAllString(text, "")
	text = bracketMarkerRe.ReplaceAllString(text, "")
	text = angleMarkupRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
