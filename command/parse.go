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

package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/crier-io/crier/i18n"
)

type matcher struct {
	re    *regexp.Regexp
	entry variantEntry
}

var matchers []matcher

func init() {
	matchers = make([]matcher, 0, len(variantTable))
	for _, entry := range variantTable {
		matchers = append(matchers, matcher{
			entry: entry,
			re: regexp.MustCompile(
				`(?i)^` + regexp.QuoteMeta(entry.Surface) + `[.!]*\s?(.*)$`,
			),
		})
	}
}

var replyPayloadRe = regexp.MustCompile(`^#(\d+)\s?(.*)$`)

// Parse turns a message body into an Executable or a ParseError. Text that
// matches no command variant parses as CommandNone in the default language;
// the absence of a command is itself meaningful (a broadcast attempt or a
// hotline message, depending on the sender's role).
func Parse(text string) (Executable, *ParseError) {
	trimmed := strings.TrimSpace(text)
	// Collect all matches and keep the one whose surface string is longest,
	// so multi-word commands beat their single-word prefixes
	var best *matcher
	var bestRemainder string
	for i := range matchers {
		m := &matchers[i]
		groups := m.re.FindStringSubmatch(trimmed)
		if groups == nil {
			continue
		}
		if best == nil ||
			len(m.entry.Surface) > len(best.entry.Surface) {
			best = m
			bestRemainder = groups[1]
		}
	}
	if best == nil {
		return Executable{
			Command:  CommandNone,
			Language: i18n.DefaultLanguage,
		}, nil
	}
	entry := best.entry
	remainder := strings.TrimSpace(bestRemainder)
	exe := Executable{
		Command:  entry.Command,
		Language: entry.Lang,
	}
	switch entry.Command {
	case CommandAccept, CommandDecline, CommandHelp, CommandInfo,
		CommandJoin, CommandLeave, CommandHotlineOn, CommandHotlineOff,
		CommandVouchingOn, CommandVouchingOff:
		if remainder != "" {
			return exe, &ParseError{
				Command:  entry.Command,
				Language: entry.Lang,
				Key:      i18n.KeyParseUnnecessary,
				Args:     []any{entry.Surface},
			}
		}
	case CommandSetLanguage:
		if remainder != "" {
			return exe, &ParseError{
				Command:  entry.Command,
				Language: entry.Lang,
				Key:      i18n.KeyParseUnnecessary,
				Args:     []any{entry.Surface},
			}
		}
		exe.Payload.TargetLanguage = entry.Target
	case CommandAdd, CommandRemove:
		phone, ok := NormalizePhone(remainder)
		if !ok {
			return exe, &ParseError{
				Command:  entry.Command,
				Language: entry.Lang,
				Key:      i18n.KeyParseInvalidPhone,
				Args:     []any{remainder},
			}
		}
		exe.Payload.Phones = []string{phone}
	case CommandInvite:
		phones, invalid := normalizePhoneList(remainder)
		switch {
		case len(invalid) >= 2:
			return exe, &ParseError{
				Command:  entry.Command,
				Language: entry.Lang,
				Key:      i18n.KeyParseInvalidPhones,
				Args:     []any{strings.Join(invalid, ", ")},
			}
		case len(invalid) == 1:
			return exe, &ParseError{
				Command:  entry.Command,
				Language: entry.Lang,
				Key:      i18n.KeyParseInvalidPhone,
				Args:     []any{invalid[0]},
			}
		}
		exe.Payload.Phones = phones
	case CommandVouchLevel:
		level, err := strconv.Atoi(remainder)
		if err != nil || level < 1 || level > MaxVouchLevel {
			return exe, &ParseError{
				Command:  entry.Command,
				Language: entry.Lang,
				Key:      i18n.KeyParseInvalidVouchLevel,
				Args:     []any{remainder, MaxVouchLevel},
			}
		}
		exe.Payload.VouchLevel = level
	case CommandReply:
		groups := replyPayloadRe.FindStringSubmatch(remainder)
		if groups == nil {
			return exe, &ParseError{
				Command:  entry.Command,
				Language: entry.Lang,
				Key:      i18n.KeyParseInvalidReply,
			}
		}
		id, err := strconv.Atoi(groups[1])
		if err != nil {
			return exe, &ParseError{
				Command:  entry.Command,
				Language: entry.Lang,
				Key:      i18n.KeyParseInvalidReply,
			}
		}
		exe.Payload.MessageID = id
		exe.Payload.Text = strings.TrimSpace(groups[2])
	case CommandRename, CommandSetDescription:
		if remainder == "" {
			return exe, &ParseError{
				Command:  entry.Command,
				Language: entry.Lang,
				Key:      i18n.KeyParseMissingPayload,
				Args:     []any{entry.Surface},
			}
		}
		exe.Payload.Text = remainder
	}
	return exe, nil
}

// normalizePhoneList splits a comma-separated list, normalizing each entry.
// Duplicate inputs are preserved in the returned slice; downstream consumers
// process each number once.
func normalizePhoneList(raw string) (phones []string, invalid []string) {
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		phone, ok := NormalizePhone(tok)
		if !ok {
			invalid = append(invalid, tok)
			continue
		}
		phones = append(phones, phone)
	}
	if len(phones) == 0 && len(invalid) == 0 {
		invalid = append(invalid, raw)
	}
	return phones, invalid
}
