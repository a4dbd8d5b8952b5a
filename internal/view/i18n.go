package view

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"slices"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed translation/*.toml
var translationFS embed.FS

const langCookie = "lang"

// Translator holds the message bundle and the configured fallback locale.
type Translator struct {
	bundle        *i18n.Bundle
	defaultLocale string
}

func NewTranslator(defaultLocale string) (*Translator, error) {
	bundle := i18n.NewBundle(language.AmericanEnglish)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	err := fs.WalkDir(translationFS, "translation", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := translationFS.ReadFile(p)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	if _, err := language.Parse(defaultLocale); err != nil {
		defaultLocale = language.AmericanEnglish.String()
	}
	return &Translator{bundle: bundle, defaultLocale: defaultLocale}, nil
}

// Localizer resolves the request language: lang cookie, then Accept-Language,
// then the configured default. It also returns the matched tag for <html lang>.
func (t *Translator) Localizer(r *http.Request) (*i18n.Localizer, string) {
	langs := make([]string, 0, 3)
	if c, err := r.Cookie(langCookie); err == nil && c.Value != "" {
		langs = append(langs, c.Value)
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		langs = append(langs, al)
	}
	langs = append(langs, t.defaultLocale)

	loc := i18n.NewLocalizer(t.bundle, langs...)
	_, tag, err := loc.LocalizeWithTag(&i18n.LocalizeConfig{MessageID: "app.name"})
	if err != nil {
		return loc, language.AmericanEnglish.String()
	}
	return loc, tag.String()
}

func (t *Translator) Languages() []string {
	tags := t.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}

// SetLanguage pins tag in the lang cookie. Tags outside Languages are refused.
func (t *Translator) SetLanguage(w http.ResponseWriter, tag string) bool {
	if !slices.Contains(t.Languages(), tag) {
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     langCookie,
		Value:    tag,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}
