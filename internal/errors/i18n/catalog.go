// Package i18n provides localized user-facing messages for billing error
// codes. Catalogs are keyed by BCP 47 locale tags and matched with the
// golang.org/x/text language matcher, falling back to en-US.
package i18n

import (
	"bytes"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is the string form of an error code. It mirrors the codes defined in
// internal/errors/codes.go without importing that package.
type Code = string

// Catalog holds the localized messages for a single locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// Locale returns the BCP 47 tag this catalog was built for.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code, substituting metadata values into
// {{.Key}} placeholders. Unknown codes fall back to a generic message, and a
// message that fails to render is returned unformatted.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	msg, ok := c.messages[code]
	if !ok {
		return "An unexpected error occurred"
	}

	if len(metadata) == 0 {
		return msg
	}

	tmpl, err := template.New("msg").Parse(msg)
	if err != nil {
		return msg
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return msg
	}

	return buf.String()
}

var (
	registryOnce sync.Once
	matcher      language.Matcher
	catalogs     []*Catalog
)

func registry() (language.Matcher, []*Catalog) {
	registryOnce.Do(func() {
		catalogs = []*Catalog{enUSCatalog, ptBRCatalog}
		tags := make([]language.Tag, len(catalogs))
		for i, c := range catalogs {
			tags[i] = language.MustParse(c.locale)
		}
		matcher = language.NewMatcher(tags)
	})
	return matcher, catalogs
}

// GetCatalog returns the catalog best matching the requested locale. The
// en-US catalog is returned when no better match exists.
func GetCatalog(locale string) *Catalog {
	m, cats := registry()

	tag, err := language.Parse(locale)
	if err != nil {
		return cats[0]
	}

	_, idx, _ := m.Match(tag)
	return cats[idx]
}
