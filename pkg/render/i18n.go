package render

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when labels are
// localised without a Translator.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the text shown when a key cannot be
// translated.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

// Labeler produces the section and field labels shown in the sidebar and
// picker. Keys follow "sections.<type>.label" and
// "sections.<type>.fields.<field>.label"; the schema text is the fallback.
type Labeler struct {
	Translator Translator
	Locale     string
	OnMissing  MissingTranslationHandler
}

// Section returns the label for a section type.
func (l Labeler) Section(sectionType, fallback string) string {
	return l.translate("sections."+sectionType+".label", fallback)
}

// Field returns the label for a field of a section type.
func (l Labeler) Field(sectionType, path, fallback string) string {
	return l.translate("sections."+sectionType+".fields."+path+".label", fallback)
}

func (l Labeler) translate(key, fallback string) string {
	if l.Translator == nil {
		if l.OnMissing != nil {
			return l.OnMissing(l.Locale, key, fallback, ErrMissingTranslator)
		}
		return fallback
	}
	result, err := l.Translator.Translate(l.Locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if l.OnMissing != nil {
		return l.OnMissing(l.Locale, key, fallback, err)
	}
	return fallback
}

// MapTranslator is a Translator backed by locale -> key -> message maps.
type MapTranslator map[string]map[string]string

// Translate implements Translator.
func (m MapTranslator) Translate(locale, key string, _ ...any) (string, error) {
	if messages, ok := m[locale]; ok {
		if msg, ok := messages[key]; ok {
			return msg, nil
		}
	}
	return "", errors.New("render: missing translation " + locale + ":" + key)
}
