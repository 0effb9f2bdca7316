// Package i18n provides the operator-facing message catalogue.
// It loads the embedded YAML locale files with go-i18n and resolves message
// IDs for a requested language, falling back to English.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// localeFS embeds the YAML translation files.
//
//go:embed locales/*.yaml
var localeFS embed.FS

// Catalog resolves message IDs for one language.
type Catalog struct {
	localizer *i18n.Localizer
}

// Locales returns the tags of every embedded locale, sorted.
func Locales() []string {
	files, _ := fs.Glob(localeFS, "locales/*.yaml")
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, strings.TrimSuffix(path.Base(f), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// New loads every embedded locale and returns a catalog for lang.
// Unknown languages resolve to English.
func New(lang string) (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	for _, tag := range Locales() {
		name := tag + ".yaml"
		data, err := localeFS.ReadFile("locales/" + name)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", name, err)
		}
	}

	return &Catalog{localizer: i18n.NewLocalizer(bundle, lang)}, nil
}

// T translates messageID, substituting data into the message template.
// If the ID is not found in any locale, the ID itself is returned.
func (c *Catalog) T(messageID string, data map[string]any) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil && msg == "" {
		return messageID
	}
	return msg
}
