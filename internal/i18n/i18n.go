// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// package i18n translates user-facing CLI messages. The crypto packages
// only return sentinel errors; turning them into text happens here.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// localeFS embeds the YAML translation files.
//
//go:embed locales/*.yaml
var localeFS embed.FS

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      string
)

// Init loads every embedded locale and selects lang. Unknown languages fall
// back to English.
func Init(l string) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			continue
		}
		_, _ = b.ParseMessageFileBytes(data, f.Name())
	}

	mu.Lock()
	bundle = b
	localizer = i18n.NewLocalizer(b, l)
	lang = l
	mu.Unlock()
}

// SetLang changes the active language.
func SetLang(l string) { Init(l) }

// GetLang returns the language passed to the last Init.
func GetLang() string {
	mu.RLock()
	defer mu.RUnlock()
	return lang
}

// AvailableLocales lists the languages that have a translation file.
func AvailableLocales() []string {
	ensureInit()
	mu.RLock()
	defer mu.RUnlock()
	tags := bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}

// T translates messageID. A single map argument is used as template data;
// any other arguments are applied fmt-style to the translated text. Unknown
// ids are returned unchanged.
func T(messageID string, args ...any) string {
	ensureInit()
	mu.RLock()
	loc := localizer
	mu.RUnlock()

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(args) == 1 {
		if data, ok := args[0].(map[string]any); ok {
			cfg.TemplateData = data
			args = nil
		}
	}

	msg, err := loc.Localize(cfg)
	if err != nil {
		msg = messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func ensureInit() {
	mu.RLock()
	ready := localizer != nil
	mu.RUnlock()
	if !ready {
		Init("en")
	}
}
