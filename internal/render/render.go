// Package render produces localized user-facing text.
package render

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/mmynk/secretsanta/internal/models"
)

// DisplayDateLayout is how event dates are shown to users.
const DisplayDateLayout = "02.01.2006"

var tags = map[models.Language]language.Tag{
	models.LanguagePrimary:   language.Russian,
	models.LanguageSecondary: language.English,
}

// Renderer looks up catalog entries by key for a user's language.
type Renderer struct {
	printers map[models.Language]*message.Printer
	fallback models.Language
}

// New builds a Renderer over the embedded ru and en catalogs.
// fallback is used for languages without a catalog.
func New(fallback models.Language) (*Renderer, error) {
	if !fallback.Valid() {
		fallback = models.LanguagePrimary
	}

	builder := catalog.NewBuilder(catalog.Fallback(tags[fallback]))
	for lang, entries := range catalogs {
		tag := tags[lang]
		for key, msg := range entries {
			if err := builder.SetString(tag, string(key), msg); err != nil {
				return nil, fmt.Errorf("failed to register %s/%s: %w", lang, key, err)
			}
		}
	}

	printers := make(map[models.Language]*message.Printer, len(tags))
	for lang, tag := range tags {
		printers[lang] = message.NewPrinter(tag, message.Catalog(builder))
	}

	return &Renderer{printers: printers, fallback: fallback}, nil
}

// Text renders key in lang with args substituted.
func (r *Renderer) Text(lang models.Language, key Key, args ...any) string {
	p, ok := r.printers[lang]
	if !ok {
		p = r.printers[r.fallback]
	}
	return p.Sprintf(string(key), args...)
}

// Stars renders a rating as a row of stars.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	return strings.Repeat("⭐", rating)
}

// Date formats an event date for display.
func Date(t time.Time) string {
	return t.Format(DisplayDateLayout)
}
