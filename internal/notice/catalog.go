// ABOUTME: Localized notice texts backed by a go-i18n bundle of embedded TOML files
// ABOUTME: Renders a Notice into the message shown to the operator in their language

package notice

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

var localeFiles = []string{
	"locales/active.en.toml",
	"locales/active.ru.toml",
}

// Catalog renders notices in one language. A nil *Catalog renders English
// fallback texts.
type Catalog struct {
	localizer *i18n.Localizer
	lang      string
}

// NewCatalog loads the embedded locale files and returns a catalog for lang
// (a BCP 47 tag such as "ru" or "en-US"). Unknown languages fall back to English.
func NewCatalog(lang string) (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, name := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, name); err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
	}

	if lang == "" {
		lang = language.English.String()
	}

	return &Catalog{
		localizer: i18n.NewLocalizer(bundle, lang, language.English.String()),
		lang:      lang,
	}, nil
}

// Lang returns the requested language tag.
func (c *Catalog) Lang() string {
	if c == nil {
		return language.English.String()
	}
	return c.lang
}

// Message returns the localized text for n.
func (c *Catalog) Message(n Notice) string {
	if c == nil {
		return fallbackText(n)
	}

	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID: messageID(n.Kind),
		TemplateData: map[string]interface{}{
			"Status": n.Status,
			"Detail": n.Detail,
		},
	})
	if err != nil {
		return fallbackText(n)
	}
	return msg
}

func messageID(k Kind) string {
	return "notice_" + string(k)
}
