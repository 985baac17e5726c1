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

package execute

import (
	"context"
	"errors"

	"github.com/crier-io/crier/command"
	"github.com/crier-io/crier/database"
	"github.com/crier-io/crier/database/hotline"
	"github.com/crier-io/crier/database/models"
	"github.com/crier-io/crier/i18n"
	"golang.org/x/text/language"
)

func (e *Executor) handleAccept(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleNone {
		return e.failure(exec.Command, exec.Language, i18n.KeyAcceptAlready)
	}
	if env.Channel.VouchingOn {
		count, err := e.config.DB.CountInvites(
			env.Channel.PhoneNumber,
			env.Sender,
		)
		if err != nil {
			return e.persistFailure(exec.Command, exec.Language, err)
		}
		if count < int64(env.Channel.VouchLevel) {
			return e.failure(
				exec.Command,
				exec.Language,
				i18n.KeyAcceptBelowVouch,
				env.Channel.VouchLevel,
				count,
			)
		}
	}
	if err := e.config.DB.AcceptInvite(
		env.Channel.PhoneNumber,
		env.Sender,
		exec.Language.String(),
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyAcceptSuccess,
			env.Channel.Name,
		),
	}
}

func (e *Executor) handleAdd(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleAdmin {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotAdmin)
	}
	target := exec.Payload.Phones[0]
	// A pending deauthorization must be re-trusted and removed before the
	// new admin membership exists, so stale trust state never coexists with
	// active admin rights
	deauth, err := e.config.DB.FindDeauthorization(
		env.Channel.PhoneNumber,
		target,
	)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if deauth != nil {
		if err := e.config.Gateway.Trust(
			ctx,
			env.Channel.PhoneNumber,
			target,
			deauth.Fingerprint,
		); err != nil {
			return e.persistFailure(exec.Command, exec.Language, err)
		}
		if err := e.config.DB.DeleteDeauthorization(
			env.Channel.PhoneNumber,
			target,
		); err != nil {
			return e.persistFailure(exec.Command, exec.Language, err)
		}
	}
	targetLang := i18n.DefaultLanguage
	existing, err := e.config.DB.FindMembership(env.Channel.PhoneNumber, target)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if existing != nil {
		if existing.Role == models.RoleAdmin {
			// Already an admin; repeat ADDs stay idempotent with no
			// duplicate welcome
			return Result{
				Command: exec.Command,
				Status:  StatusSuccess,
				Message: e.config.Catalog.Render(
					exec.Language,
					i18n.KeyAddSuccess,
					target,
				),
			}
		}
		targetLang = i18n.Match(existing.Language)
		// Promotion is delete+create, never in-place role mutation
		if _, err := e.config.DB.DestroyMembership(
			env.Channel.PhoneNumber,
			target,
		); err != nil {
			return e.persistFailure(exec.Command, exec.Language, err)
		}
	}
	if _, _, err := e.config.DB.CreateMembership(
		env.Channel.PhoneNumber,
		target,
		models.RoleAdmin,
		targetLang.String(),
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	notifications := []Notification{
		{
			Recipient: target,
			Message: e.config.Catalog.Render(
				targetLang,
				i18n.KeyAddWelcome,
				env.Sender,
				env.Channel.Name,
			),
		},
	}
	notifications = append(notifications, e.adminNotices(
		env.Channel,
		map[string]bool{env.Sender: true, target: true},
		func(lang language.Tag) string {
			return e.config.Catalog.Render(lang, i18n.KeyAddNotice, target)
		},
	)...)
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyAddSuccess,
			target,
		),
		Notifications: notifications,
	}
}

func (e *Executor) handleDecline(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	if err := e.config.DB.DeclineInvite(
		env.Channel.PhoneNumber,
		env.Sender,
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(exec.Language, i18n.KeyDeclineSuccess),
	}
}

func (e *Executor) handleHelp(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role == models.RoleNone {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotMember)
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(exec.Language, i18n.KeyHelpBody),
	}
}

func (e *Executor) handleInfo(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role == models.RoleNone {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotMember)
	}
	word := func(on bool) string {
		if on {
			return e.config.Catalog.Render(exec.Language, i18n.KeyWordOn)
		}
		return e.config.Catalog.Render(exec.Language, i18n.KeyWordOff)
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyInfoBody,
			env.Channel.Name,
			env.Channel.Description,
			len(env.Channel.Subscribers()),
			len(env.Channel.Admins()),
			word(env.Channel.HotlineOn),
			word(env.Channel.VouchingOn),
			env.Channel.VouchLevel,
			env.Channel.MessageExpiry,
			env.Channel.MessageCount.BroadcastOut,
			env.Channel.MessageCount.CommandIn,
		),
	}
}

func (e *Executor) handleInvite(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role == models.RoleNone {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotMember)
	}
	// Duplicates in the payload are echoed but processed once
	seen := make(map[string]bool)
	var notifications []Notification
	for _, invitee := range exec.Payload.Phones {
		if seen[invitee] {
			continue
		}
		seen[invitee] = true
		// An existing member or an existing invite reports plain success
		// with no notification, so repeated INVITEs cannot be used as an
		// oracle for membership
		if env.Channel.Role(invitee) != models.RoleNone {
			continue
		}
		created, err := e.config.DB.IssueInvite(
			env.Channel.PhoneNumber,
			env.Sender,
			invitee,
		)
		if err != nil {
			return e.persistFailure(exec.Command, exec.Language, err)
		}
		if !created {
			continue
		}
		notifications = append(notifications, Notification{
			Recipient: invitee,
			Message: e.config.Catalog.Render(
				i18n.DefaultLanguage,
				i18n.KeyInviteNotification,
				env.Channel.Name,
			),
		})
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyInviteSuccess,
			len(exec.Payload.Phones),
		),
		Notifications: notifications,
	}
}

func (e *Executor) handleJoin(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleNone {
		return e.failure(exec.Command, exec.Language, i18n.KeyJoinAlready)
	}
	if env.Channel.VouchingOn {
		return e.failure(exec.Command, exec.Language, i18n.KeyJoinInviteRequired)
	}
	if _, _, err := e.config.DB.CreateMembership(
		env.Channel.PhoneNumber,
		env.Sender,
		models.RoleSubscriber,
		exec.Language.String(),
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyJoinSuccess,
			env.Channel.Name,
		),
	}
}

func (e *Executor) handleLeave(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role == models.RoleNone {
		return e.failure(exec.Command, exec.Language, i18n.KeyLeaveNotMember)
	}
	if _, err := e.config.DB.DestroyMembership(
		env.Channel.PhoneNumber,
		env.Sender,
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	var notifications []Notification
	if role == models.RoleAdmin {
		// Membership and any related deauthorization go together; the
		// store only guarantees single-row atomicity
		if err := e.config.DB.DeleteDeauthorization(
			env.Channel.PhoneNumber,
			env.Sender,
		); err != nil {
			e.config.Logger.Error(
				"failed to clean up deauthorization",
				"channel", env.Channel.PhoneNumber,
				"error", err,
			)
		}
		notifications = e.adminNotices(
			env.Channel,
			map[string]bool{env.Sender: true},
			func(lang language.Tag) string {
				return e.config.Catalog.Render(
					lang,
					i18n.KeyLeaveAdminNotice,
					env.Sender,
				)
			},
		)
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyLeaveSuccess,
			env.Channel.Name,
		),
		Notifications: notifications,
	}
}

func (e *Executor) handleRemove(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleAdmin {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotAdmin)
	}
	target := exec.Payload.Phones[0]
	targetRole, err := e.freshRole(env.Channel.PhoneNumber, target)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if targetRole == models.RoleNone {
		return e.failure(
			exec.Command,
			exec.Language,
			i18n.KeyRemoveNotMember,
			target,
		)
	}
	targetLang := memberLanguage(env.Channel, target)
	if _, err := e.config.DB.DestroyMembership(
		env.Channel.PhoneNumber,
		target,
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	var notifications []Notification
	if targetRole == models.RoleAdmin {
		if err := e.config.DB.DeleteDeauthorization(
			env.Channel.PhoneNumber,
			target,
		); err != nil {
			e.config.Logger.Error(
				"failed to clean up deauthorization",
				"channel", env.Channel.PhoneNumber,
				"error", err,
			)
		}
		// A removed admin is told they were demoted; subscribers are not
		// notified of their own removal
		notifications = append(notifications, Notification{
			Recipient: target,
			Message: e.config.Catalog.Render(
				targetLang,
				i18n.KeyRemoveDemoted,
			),
		})
	}
	notifications = append(notifications, e.adminNotices(
		env.Channel,
		map[string]bool{env.Sender: true, target: true},
		func(lang language.Tag) string {
			return e.config.Catalog.Render(lang, i18n.KeyRemoveNotice, target)
		},
	)...)
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyRemoveSuccess,
			target,
		),
		Notifications: notifications,
	}
}

func (e *Executor) handleRename(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleAdmin {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotAdmin)
	}
	oldName := env.Channel.Name
	newName := exec.Payload.Text
	if err := e.config.DB.UpdateChannel(
		env.Channel.PhoneNumber,
		map[string]any{"name": newName},
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyRenameSuccess,
			oldName,
			newName,
		),
		Notifications: e.adminNotices(
			env.Channel,
			map[string]bool{env.Sender: true},
			func(lang language.Tag) string {
				return e.config.Catalog.Render(
					lang,
					i18n.KeyRenameNotice,
					oldName,
					newName,
				)
			},
		),
	}
}

func (e *Executor) handleReply(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleAdmin {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotAdmin)
	}
	id := exec.Payload.MessageID
	recipient, err := e.config.Hotline.Resolve(
		env.Channel.PhoneNumber,
		uint64(id), //nolint:gosec // parser bounds the id to positive ints
	)
	if err != nil {
		if errors.Is(err, hotline.ErrUnknownID) {
			return e.failure(
				exec.Command,
				exec.Language,
				i18n.KeyReplyNotFound,
				id,
			)
		}
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	recipientLang := memberLanguage(env.Channel, recipient)
	notifications := []Notification{
		{
			Recipient: recipient,
			Message: e.config.Catalog.Render(
				recipientLang,
				i18n.KeyReplyPrivateHeader,
			) + "\n" + exec.Payload.Text,
		},
	}
	notifications = append(notifications, e.adminNotices(
		env.Channel,
		map[string]bool{env.Sender: true, recipient: true},
		func(lang language.Tag) string {
			return e.config.Catalog.Render(
				lang,
				i18n.KeyReplyHeader,
				id,
			) + "\n" + exec.Payload.Text
		},
	)...)
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyReplySuccess,
			id,
		),
		Notifications: notifications,
	}
}

func (e *Executor) handleSetDescription(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleAdmin {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotAdmin)
	}
	if err := e.config.DB.UpdateChannel(
		env.Channel.PhoneNumber,
		map[string]any{"description": exec.Payload.Text},
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyDescriptionSuccess,
		),
		Notifications: e.adminNotices(
			env.Channel,
			map[string]bool{env.Sender: true},
			func(lang language.Tag) string {
				return e.config.Catalog.Render(
					lang,
					i18n.KeyDescriptionNotice,
					exec.Payload.Text,
				)
			},
		),
	}
}

func (e *Executor) handleSetLanguage(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	target := exec.Payload.TargetLanguage
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, target, err)
	}
	if role != models.RoleNone {
		if err := e.config.DB.UpdateMemberLanguage(
			env.Channel.PhoneNumber,
			env.Sender,
			target.String(),
		); err != nil {
			return e.persistFailure(exec.Command, target, err)
		}
	}
	// Confirmation is rendered in the newly selected language so the sender
	// can see the switch took effect
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(target, i18n.KeyLanguageSuccess),
	}
}

func (e *Executor) handleHotlineToggle(
	ctx context.Context,
	env Env,
	exec command.Executable,
	on bool,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleAdmin {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotAdmin)
	}
	if err := e.config.DB.UpdateChannel(
		env.Channel.PhoneNumber,
		map[string]any{"hotline_on": on},
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	key := i18n.KeyHotlineOff
	if on {
		key = i18n.KeyHotlineOn
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(exec.Language, key),
		Notifications: e.adminNotices(
			env.Channel,
			map[string]bool{env.Sender: true},
			func(lang language.Tag) string {
				return e.config.Catalog.Render(
					lang,
					i18n.KeyHotlineNotice,
					e.onOffWord(lang, on),
				)
			},
		),
	}
}

func (e *Executor) handleVouchingToggle(
	ctx context.Context,
	env Env,
	exec command.Executable,
	on bool,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleAdmin {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotAdmin)
	}
	if err := e.config.DB.UpdateChannel(
		env.Channel.PhoneNumber,
		map[string]any{"vouching_on": on},
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	key := i18n.KeyVouchingOff
	if on {
		key = i18n.KeyVouchingOn
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(exec.Language, key),
		Notifications: e.adminNotices(
			env.Channel,
			map[string]bool{env.Sender: true},
			func(lang language.Tag) string {
				return e.config.Catalog.Render(
					lang,
					i18n.KeyVouchingNotice,
					e.onOffWord(lang, on),
				)
			},
		),
	}
}

func (e *Executor) handleVouchLevel(
	ctx context.Context,
	env Env,
	exec command.Executable,
) Result {
	role, err := e.freshRole(env.Channel.PhoneNumber, env.Sender)
	if err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	if role != models.RoleAdmin {
		return e.unauthorized(exec.Command, exec.Language, i18n.KeyErrorNotAdmin)
	}
	level := exec.Payload.VouchLevel
	if err := e.config.DB.UpdateChannel(
		env.Channel.PhoneNumber,
		map[string]any{"vouch_level": level},
	); err != nil {
		return e.persistFailure(exec.Command, exec.Language, err)
	}
	return Result{
		Command: exec.Command,
		Status:  StatusSuccess,
		Message: e.config.Catalog.Render(
			exec.Language,
			i18n.KeyVouchLevelSuccess,
			level,
		),
		Notifications: e.adminNotices(
			env.Channel,
			map[string]bool{env.Sender: true},
			func(lang language.Tag) string {
				return e.config.Catalog.Render(
					lang,
					i18n.KeyVouchLevelNotice,
					level,
				)
			},
		),
	}
}

func (e *Executor) onOffWord(lang language.Tag, on bool) string {
	if on {
		return e.config.Catalog.Render(lang, i18n.KeyWordOn)
	}
	return e.config.Catalog.Render(lang, i18n.KeyWordOff)
}
