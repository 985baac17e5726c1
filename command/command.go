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
	"golang.org/x/text/language"

	"github.com/crier-io/crier/i18n"
)

// Command identifies an in-band chat command.
type Command string

const (
	CommandNone           Command = "none"
	CommandAccept         Command = "accept"
	CommandAdd            Command = "add"
	CommandDecline        Command = "decline"
	CommandHelp           Command = "help"
	CommandInfo           Command = "info"
	CommandInvite         Command = "invite"
	CommandJoin           Command = "join"
	CommandLeave          Command = "leave"
	CommandRemove         Command = "remove"
	CommandRename         Command = "rename"
	CommandReply          Command = "reply"
	CommandSetDescription Command = "setDescription"
	CommandSetLanguage    Command = "setLanguage"
	CommandHotlineOn      Command = "hotlineOn"
	CommandHotlineOff     Command = "hotlineOff"
	CommandVouchingOn     Command = "vouchingOn"
	CommandVouchingOff    Command = "vouchingOff"
	CommandVouchLevel     Command = "vouchLevel"
)

// MaxVouchLevel bounds the VOUCH LEVEL payload.
const MaxVouchLevel = 10

// Payload carries the validated arguments of a parsed command. Only the
// fields relevant to the command are populated.
type Payload struct {
	// Phones holds normalized E.164 numbers for ADD/REMOVE/INVITE
	Phones []string
	// Text holds free text for RENAME/DESCRIPTION and the reply body
	Text string
	// VouchLevel holds the VOUCH LEVEL argument
	VouchLevel int
	// MessageID holds the hotline id for REPLY
	MessageID int
	// TargetLanguage holds the selected locale for SET_LANGUAGE
	TargetLanguage language.Tag
}

// Executable is a successfully parsed, payload-validated command ready for
// execution. Language is the locale the command was issued in, which may
// differ from the sender's stored preference.
type Executable struct {
	Command  Command
	Language language.Tag
	Payload  Payload
}

// ParseError describes a malformed or missing payload. It carries a catalog
// key rather than rendered text so the executor can localize it.
type ParseError struct {
	Command  Command
	Language language.Tag
	Key      i18n.Key
	Args     []any
}
