// Package i18n translates feed vocabulary (Italian) into the notification
// language using a flat lookup table.
//
// Table file layout (JSON or YAML):
//
//	{ "en": { "Settore": "Sector", "Trasporto": "Transport" }, "de": { ... } }
package i18n

import (
	"strings"

	"scioperibot/internal/config"
)

// SourceLanguage is the language the feed is published in.
const SourceLanguage = "it"

// Translator maps source-language text to a target language.
type Translator interface {
	Translate(text, lang string) string
}

// Table is a lang -> text -> translation lookup. The zero value translates nothing.
type Table map[string]map[string]string

// Load reads a translation table from path.
func Load(path string) (Table, error) {
	var t Table
	if err := config.DecodeFile(path, &t, false); err != nil {
		return Table{}, err
	}
	if t == nil {
		t = Table{}
	}
	return t, nil
}

// Translate returns text in lang. Source-language requests and missing keys
// return text unchanged.
func (t Table) Translate(text, lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == SourceLanguage {
		return text
	}
	if v, ok := t[lang][text]; ok && v != "" {
		return v
	}
	return text
}

// Bind fixes the target language.
func Bind(t Translator, lang string) func(string) string {
	if t == nil {
		return func(s string) string { return s }
	}
	return func(s string) string { return t.Translate(s, lang) }
}
