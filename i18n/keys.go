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

// Message keys. Each key must be defined in every embedded locale file.
const (
	// Command responses
	KeyAcceptSuccess      Key = "accept.success"
	KeyAcceptAlready      Key = "accept.alreadyMember"
	KeyAcceptBelowVouch   Key = "accept.belowVouchLevel"
	KeyAddSuccess         Key = "add.success"
	KeyAddWelcome         Key = "add.welcome"
	KeyAddNotice          Key = "add.notice"
	KeyDeclineSuccess     Key = "decline.success"
	KeyHelpBody           Key = "help.body"
	KeyInfoBody           Key = "info.body"
	KeyInviteSuccess      Key = "invite.success"
	KeyInviteNotification Key = "invite.notification"
	KeyJoinSuccess        Key = "join.success"
	KeyJoinAlready        Key = "join.alreadyMember"
	KeyJoinInviteRequired Key = "join.inviteRequired"
	KeyLeaveSuccess       Key = "leave.success"
	KeyLeaveNotMember     Key = "leave.notMember"
	KeyLeaveAdminNotice   Key = "leave.adminNotice"
	KeyRemoveSuccess      Key = "remove.success"
	KeyRemoveNotMember    Key = "remove.targetNotMember"
	KeyRemoveDemoted      Key = "remove.demoted"
	KeyRemoveNotice       Key = "remove.notice"
	KeyRenameSuccess      Key = "rename.success"
	KeyRenameNotice       Key = "rename.notice"
	KeyReplySuccess       Key = "reply.success"
	KeyReplyNotFound      Key = "reply.notFound"
	KeyReplyHeader        Key = "reply.header"
	KeyReplyPrivateHeader Key = "reply.privateHeader"
	KeyDescriptionSuccess Key = "description.success"
	KeyDescriptionNotice  Key = "description.notice"
	KeyLanguageSuccess    Key = "language.success"
	KeyHotlineOn          Key = "hotline.on"
	KeyHotlineOff         Key = "hotline.off"
	KeyHotlineNotice      Key = "hotline.notice"
	KeyVouchingOn         Key = "vouching.on"
	KeyVouchingOff        Key = "vouching.off"
	KeyVouchingNotice     Key = "vouching.notice"
	KeyVouchLevelSuccess  Key = "vouchLevel.success"
	KeyVouchLevelNotice   Key = "vouchLevel.notice"

	// Hotline plumbing
	KeyHotlineReceived Key = "hotline.received"
	KeyHotlineDisabled Key = "hotline.disabled"
	KeyHotlineHeader   Key = "hotline.header"

	// Headers
	KeyChannelHeader  Key = "header.channel"
	KeyCommandsHeader Key = "header.commands"

	// Expiry reconciliation
	KeyExpiryReverted Key = "expiry.reverted"

	// Parse errors
	KeyParseInvalidPhone      Key = "parse.invalidPhone"
	KeyParseInvalidPhones     Key = "parse.invalidPhones"
	KeyParseUnnecessary       Key = "parse.unnecessaryPayload"
	KeyParseInvalidVouchLevel Key = "parse.invalidVouchLevel"
	KeyParseInvalidReply      Key = "parse.invalidReply"
	KeyParseMissingPayload    Key = "parse.missingPayload"

	// Generic failures
	KeyErrorNotAdmin     Key = "error.notAdmin"
	KeyErrorNotMember    Key = "error.notMember"
	KeyErrorPersist      Key = "error.tryAgain"
	KeyErrorUnrecognized Key = "error.unrecognized"

	// Trust workflow
	KeyTrustDeauthorized Key = "trust.deauthorized"

	// Words interpolated into other messages
	KeyWordOn  Key = "word.on"
	KeyWordOff Key = "word.off"
)
