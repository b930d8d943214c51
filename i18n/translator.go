// Package i18n provides the default messages attached to issues.
package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for issue codes.
// data provides values for the {name} placeholders of a message (for
// example "min" or "expected").
type Translator interface {
	Message(code string, data map[string]string) string
}

var (
	english  = language.English
	japanese = language.Japanese
	matcher  = language.NewMatcher([]language.Tag{english, japanese})
)

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang language.Tag }

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict := messagesEN
	if t.lang == japanese {
		dict = messagesJA
	}
	msg, ok := dict[code]
	if !ok {
		msg, ok = messagesEN[code]
	}
	if !ok {
		return code
	}
	return fill(msg, data)
}

// fill replaces {key} placeholders; unknown placeholders are left intact.
func fill(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu      sync.RWMutex
	current Translator = dictTranslator{lang: english}
)

// SetLanguage switches the built-in Translator to the best match for a BCP 47
// tag ("en", "ja", "ja-JP", ...). Unsupported or malformed tags select English.
func SetLanguage(tag string) {
	lang := english
	if t, err := language.Parse(tag); err == nil {
		_, idx, conf := matcher.Match(t)
		if conf != language.No && idx == 1 {
			lang = japanese
		}
	}
	mu.Lock()
	current = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation. nil restores the
// English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: english}
	}
	mu.Lock()
	current = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := current
	mu.RUnlock()
	return tr.Message(code, data)
}
