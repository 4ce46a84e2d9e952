package host

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

func buildCatalog(defaultLanguage string, translations map[string]map[string]string) (*catalog.Builder, error) {
	builder := catalog.NewBuilder()
	// a catalog without any entry has no languages to fall back on
	if err := builder.SetString(language.Make(defaultLanguage), "_", "_"); err != nil {
		return nil, fmt.Errorf("failed to add placeholder translation: %w", err)
	}

	for lang, messages := range translations {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("invalid translation language %q: %w", lang, err)
		}
		for key, text := range messages {
			if err := builder.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("failed to add translation %q for %s: %w", key, lang, err)
			}
		}
	}
	return builder, nil
}

func (hh *HostHandler) printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(hh.translations))
}
