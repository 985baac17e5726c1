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

package command_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/crier-io/crier/command"
	"github.com/crier-io/crier/i18n"
)

func TestParseVariants(t *testing.T) {
	testDefs := []struct {
		text        string
		wantCommand command.Command
		wantLang    language.Tag
	}{
		{"JOIN", command.CommandJoin, language.English},
		{"HELLO", command.CommandJoin, language.English},
		{"hola", command.CommandJoin, language.Spanish},
		{"Bonjour", command.CommandJoin, language.French},
		{"HALLO", command.CommandJoin, language.German},
		{"LEAVE", command.CommandLeave, language.English},
		{"GOODBYE", command.CommandLeave, language.English},
		{"adios", command.CommandLeave, language.Spanish},
		{"AU REVOIR", command.CommandLeave, language.French},
		{"TSCHÜSS", command.CommandLeave, language.German},
		{"ACCEPT", command.CommandAccept, language.English},
		{"ACEPTAR", command.CommandAccept, language.Spanish},
		{"ACCEPTER", command.CommandAccept, language.French},
		{"ANNEHMEN", command.CommandAccept, language.German},
		{"DECLINE", command.CommandDecline, language.English},
		{"HELP", command.CommandHelp, language.English},
		{"AYUDA", command.CommandHelp, language.Spanish},
		{"AIDE", command.CommandHelp, language.French},
		{"HILFE", command.CommandHelp, language.German},
		{"INFO", command.CommandInfo, language.English},
		{"INFO!", command.CommandInfo, language.English},
		{"HOTLINE ON", command.CommandHotlineOn, language.English},
		{"HOTLINE AUS", command.CommandHotlineOff, language.German},
		{"VOUCHING ON", command.CommandVouchingOn, language.English},
		{"VOUCHING OFF", command.CommandVouchingOff, language.English},
	}
	for _, testDef := range testDefs {
		exec, parseErr := command.Parse(testDef.text)
		require.Nil(t, parseErr, "unexpected parse error for %q", testDef.text)
		require.Equal(t, testDef.wantCommand, exec.Command, "text %q", testDef.text)
		require.Equal(t, testDef.wantLang, exec.Language, "text %q", testDef.text)
	}
}

func TestParseNonCommandText(t *testing.T) {
	for _, text := range []string{
		"",
		"Meeting at 6pm tonight, bring friends",
		"what is this number?",
	} {
		exec, parseErr := command.Parse(text)
		require.Nil(t, parseErr)
		require.Equal(t, command.CommandNone, exec.Command, "text %q", text)
		require.Equal(t, i18n.DefaultLanguage, exec.Language)
	}
}

func TestParseLongestVariantWins(t *testing.T) {
	// INVITER shares the INVITE prefix; the longer surface must win
	exec, parseErr := command.Parse("INVITER +33612345678")
	require.Nil(t, parseErr)
	require.Equal(t, command.CommandInvite, exec.Command)
	require.Equal(t, language.French, exec.Language)
	require.Equal(t, []string{"+33612345678"}, exec.Payload.Phones)
}

func TestParsePhonePayloads(t *testing.T) {
	exec, parseErr := command.Parse("ADD +1 (555) 123-4567")
	require.Nil(t, parseErr)
	require.Equal(t, command.CommandAdd, exec.Command)
	require.Equal(t, []string{"+15551234567"}, exec.Payload.Phones)

	_, parseErr = command.Parse("ADD not-a-number")
	require.NotNil(t, parseErr)
	require.Equal(t, command.CommandAdd, parseErr.Command)
	require.Equal(t, i18n.KeyParseInvalidPhone, parseErr.Key)

	_, parseErr = command.Parse("REMOVE 555")
	require.NotNil(t, parseErr)
	require.Equal(t, i18n.KeyParseInvalidPhone, parseErr.Key)
}

func TestParseInviteList(t *testing.T) {
	exec, parseErr := command.Parse(
		"INVITE +15551234567, +1 555 987 6543",
	)
	require.Nil(t, parseErr)
	require.Equal(t, command.CommandInvite, exec.Command)
	require.Equal(
		t,
		[]string{"+15551234567", "+15559876543"},
		exec.Payload.Phones,
	)

	_, parseErr = command.Parse("INVITE foo, bar")
	require.NotNil(t, parseErr)
	require.Equal(t, i18n.KeyParseInvalidPhones, parseErr.Key)

	_, parseErr = command.Parse("INVITE foo")
	require.NotNil(t, parseErr)
	require.Equal(t, i18n.KeyParseInvalidPhone, parseErr.Key)
}

func TestParseUnnecessaryPayload(t *testing.T) {
	for _, text := range []string{
		"HELP me please",
		"INFO now",
		"HOTLINE ON please",
		"HELLO everyone at the meeting",
	} {
		_, parseErr := command.Parse(text)
		require.NotNil(t, parseErr, "text %q", text)
		require.Equal(t, i18n.KeyParseUnnecessary, parseErr.Key, "text %q", text)
	}
}

func TestParseVouchLevel(t *testing.T) {
	exec, parseErr := command.Parse("VOUCH LEVEL 3")
	require.Nil(t, parseErr)
	require.Equal(t, command.CommandVouchLevel, exec.Command)
	require.Equal(t, 3, exec.Payload.VouchLevel)

	for _, text := range []string{
		"VOUCH LEVEL 15",
		"VOUCH LEVEL 0",
		"VOUCH LEVEL many",
	} {
		_, parseErr = command.Parse(text)
		require.NotNil(t, parseErr, "text %q", text)
		require.Equal(
			t,
			i18n.KeyParseInvalidVouchLevel,
			parseErr.Key,
			"text %q", text,
		)
	}
}

func TestParseReply(t *testing.T) {
	exec, parseErr := command.Parse("REPLY #1312 thanks for writing in")
	require.Nil(t, parseErr)
	require.Equal(t, command.CommandReply, exec.Command)
	require.Equal(t, 1312, exec.Payload.MessageID)
	require.Equal(t, "thanks for writing in", exec.Payload.Text)

	_, parseErr = command.Parse("REPLY thanks")
	require.NotNil(t, parseErr)
	require.Equal(t, i18n.KeyParseInvalidReply, parseErr.Key)
}

func TestParseFreeTextPayloads(t *testing.T) {
	exec, parseErr := command.Parse("RENAME my new channel name")
	require.Nil(t, parseErr)
	require.Equal(t, command.CommandRename, exec.Command)
	require.Equal(t, "my new channel name", exec.Payload.Text)

	_, parseErr = command.Parse("RENAME")
	require.NotNil(t, parseErr)
	require.Equal(t, i18n.KeyParseMissingPayload, parseErr.Key)

	exec, parseErr = command.Parse("DESCRIPTION a channel about things")
	require.Nil(t, parseErr)
	require.Equal(t, command.CommandSetDescription, exec.Command)
	require.Equal(t, "a channel about things", exec.Payload.Text)
}

func TestParseSetLanguage(t *testing.T) {
	testDefs := []struct {
		text       string
		wantTarget language.Tag
	}{
		{"ENGLISH", language.English},
		{"INGLES", language.English},
		{"ESPAÑOL", language.Spanish},
		{"SPANISH", language.Spanish},
		{"FRANÇAIS", language.French},
		{"FRENCH", language.French},
		{"DEUTSCH", language.German},
		{"ALLEMAND", language.German},
	}
	for _, testDef := range testDefs {
		exec, parseErr := command.Parse(testDef.text)
		require.Nil(t, parseErr, "text %q", testDef.text)
		require.Equal(t, command.CommandSetLanguage, exec.Command)
		require.Equal(
			t,
			testDef.wantTarget,
			exec.Payload.TargetLanguage,
			"text %q", testDef.text,
		)
	}
}

func TestNormalizePhone(t *testing.T) {
	phone, ok := command.NormalizePhone("+1 (555) 123-4567")
	require.True(t, ok)
	require.Equal(t, "+15551234567", phone)

	for _, raw := range []string{
		"5551234567",
		"+0123456789",
		"+1555",
		"+1555123456789012345",
		"words",
	} {
		_, ok := command.NormalizePhone(raw)
		require.False(t, ok, "raw %q", raw)
	}
}
