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

package i18n_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/crier-io/crier/i18n"
)

func TestNewCatalogLoadsAllLocales(t *testing.T) {
	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)
	// Every supported locale must render every key without falling back;
	// spot-check one key per locale for distinct translations
	en := catalog.Render(language.English, i18n.KeyJoinAlready)
	es := catalog.Render(language.Spanish, i18n.KeyJoinAlready)
	fr := catalog.Render(language.French, i18n.KeyJoinAlready)
	de := catalog.Render(language.German, i18n.KeyJoinAlready)
	require.NotEmpty(t, en)
	require.NotEqual(t, en, es)
	require.NotEqual(t, en, fr)
	require.NotEqual(t, en, de)
}

func TestRenderFallsBackToDefault(t *testing.T) {
	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)
	want := catalog.Render(i18n.DefaultLanguage, i18n.KeyHelpBody)
	got := catalog.Render(language.Japanese, i18n.KeyHelpBody)
	require.Equal(t, want, got)
}

func TestRenderInterpolatesArgs(t *testing.T) {
	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)
	msg := catalog.Render(
		language.English,
		i18n.KeyChannelHeader,
		"test channel",
	)
	require.Equal(t, "[test channel]", msg)
	msg = catalog.Render(language.English, i18n.KeyHotlineHeader, 42)
	require.Contains(t, msg, "#42")
}

func TestMatch(t *testing.T) {
	require.Equal(t, language.English, i18n.Match(""))
	require.Equal(t, language.English, i18n.Match("en"))
	require.Equal(t, language.Spanish, i18n.Match("es"))
	require.Equal(t, language.French, i18n.Match("fr"))
	require.Equal(t, language.German, i18n.Match("de"))
	require.Equal(t, language.English, i18n.Match("not-a-tag"))
	// Regional variants resolve to their base locale
	require.Equal(t, language.Spanish, i18n.Match("es-MX"))
}

func TestStripVariableText(t *testing.T) {
	// Two renderings of the same template with different interpolations
	// must strip to the same value
	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)
	a := catalog.Render(
		language.English,
		i18n.KeyAddWelcome,
		"+15551234567",
		"night owls",
	)
	b := catalog.Render(
		language.English,
		i18n.KeyAddWelcome,
		"+4915512345678",
		"night owls",
	)
	require.Equal(
		t,
		i18n.StripVariableText(a),
		i18n.StripVariableText(b),
	)
}

func TestWelcomeBodies(t *testing.T) {
	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)
	bodies := catalog.WelcomeBodies("night owls")
	require.Len(t, bodies, len(i18n.SupportedLanguages))
	welcome := catalog.Render(
		language.Spanish,
		i18n.KeyAddWelcome,
		"+15551234567",
		"night owls",
	)
	require.Contains(t, bodies, i18n.StripVariableText(welcome))
	// A different channel name must not match
	other := catalog.WelcomeBodies("book club")
	require.NotContains(t, other, i18n.StripVariableText(welcome))
}

func TestStripVariableTextRemovesBracketedHeaders(t *testing.T) {
	stripped := i18n.StripVariableText("[HOTLINE #12]\nhello there")
	require.False(t, strings.ContainsAny(stripped, "[]#0123456789 \n"))
	require.Contains(t, stripped, "hellothere")
}
