// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is the fallback locale used when a sender has no stored
// preference and when a message key is missing from another locale.
var DefaultLanguage = language.English

// SupportedLanguages lists every locale shipped in the embedded catalog.
var SupportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.German,
}

var matcher = language.NewMatcher(SupportedLanguages)

// Key identifies a single translatable message.
type Key string

//go:embed locales/*.yaml
var localeFS embed.FS

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog is an immutable set of localized message templates, indexed by
// (language, key). It is loaded once at startup and injected into anything
// that renders user-visible text; there is no ambient global catalog.
type Catalog struct {
	messages map[language.Tag]map[Key]string
}

// NewCatalog loads the embedded locale files and validates that every locale
// defines exactly the key set of the default locale.
func NewCatalog() (*Catalog, error) {
	paths, err := fs.Glob(localeFS, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale files: %w", err)
	}
	sort.Strings(paths)
	c := &Catalog{
		messages: make(map[language.Tag]map[Key]string),
	}
	for _, path := range paths {
		data, err := fs.ReadFile(localeFS, path)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", path, err)
		}
		var lf localeFile
		if err := yaml.Unmarshal(data, &lf); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", path, err)
		}
		tag, err := language.Parse(lf.Locale)
		if err != nil {
			return nil, fmt.Errorf("locale %s: bad tag %q: %w", path, lf.Locale, err)
		}
		if _, exists := c.messages[tag]; exists {
			return nil, fmt.Errorf("locale %s: duplicate locale %q", path, lf.Locale)
		}
		msgs := make(map[Key]string, len(lf.Messages))
		for k, v := range lf.Messages {
			msgs[Key(k)] = v
		}
		c.messages[tag] = msgs
	}
	base, ok := c.messages[DefaultLanguage]
	if !ok {
		return nil, fmt.Errorf("default locale %s missing from catalog", DefaultLanguage)
	}
	for tag, msgs := range c.messages {
		if tag == DefaultLanguage {
			continue
		}
		for k := range base {
			if _, ok := msgs[k]; !ok {
				return nil, fmt.Errorf("locale %s: missing key %q", tag, k)
			}
		}
		for k := range msgs {
			if _, ok := base[k]; !ok {
				return nil, fmt.Errorf("locale %s: unknown key %q", tag, k)
			}
		}
	}
	return c, nil
}

// Render returns the message for the given language and key, formatted with
// args. Unknown languages and missing keys fall back to the default locale.
func (c *Catalog) Render(lang language.Tag, key Key, args ...any) string {
	msgs, ok := c.messages[lang]
	if !ok {
		msgs = c.messages[DefaultLanguage]
	}
	tmpl, ok := msgs[key]
	if !ok {
		tmpl, ok = c.messages[DefaultLanguage][key]
		if !ok {
			// A missing key in the base locale is a programming error, but
			// user-visible output must never leak internals
			return string(key)
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Match resolves a stored language code to a supported locale, defaulting to
// English for unknown or empty codes.
func Match(code string) language.Tag {
	if code == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	return SupportedLanguages[idx]
}

// WelcomeBodies returns the stripped admin-welcome message in every locale
// for the given channel name. The trust workflow compares stripped outbound
// message bodies against these to recognize a failed welcome delivery. The
// adder's phone number interpolates to nothing after stripping, so only the
// channel name needs to be supplied.
func (c *Catalog) WelcomeBodies(channelName string) []string {
	out := make([]string, 0, len(c.messages))
	for _, tag := range SupportedLanguages {
		body := c.Render(tag, KeyAddWelcome, "", channelName)
		out = append(out, StripVariableText(body))
	}
	return out
}

// StripVariableText removes phone numbers, hotline ids, bracketed headers
// and whitespace from a message body so that two renderings of the same
// template compare equal regardless of interpolated values.
func StripVariableText(body string) string {
	var b strings.Builder
	skipBracket := false
	for _, r := range body {
		switch {
		case r == '[':
			skipBracket = true
		case r == ']':
			skipBracket = false
		case skipBracket:
		case r == '+' || r == '#':
		case r >= '0' && r <= '9':
		case r == ' ' || r == '\n' || r == '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
