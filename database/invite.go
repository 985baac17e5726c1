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

package database

import (
	"github.com/crier-io/crier/database/models"
	"gorm.io/gorm"
)

// IssueInvite records an invitation, find-or-create on the full triple so
// that re-inviting an already-invited person creates no duplicate rows.
// Returns whether a new invite row was created.
func (d *Database) IssueInvite(
	channelPhoneNumber, inviterPhoneNumber, inviteePhoneNumber string,
) (bool, error) {
	invite := models.Invite{
		ChannelPhoneNumber: channelPhoneNumber,
		InviterPhoneNumber: inviterPhoneNumber,
		InviteePhoneNumber: inviteePhoneNumber,
	}
	result := d.db.
		Where(
			"channel_phone_number = ? AND inviter_phone_number = ? AND invitee_phone_number = ?",
			channelPhoneNumber, inviterPhoneNumber, inviteePhoneNumber,
		).
		FirstOrCreate(&invite)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountInvites returns the number of distinct invites issued to a phone
// number on a channel, used for vouch-level gating in ACCEPT.
func (d *Database) CountInvites(
	channelPhoneNumber, inviteePhoneNumber string,
) (int64, error) {
	var count int64
	result := d.db.
		Model(&models.Invite{}).
		Where(
			"channel_phone_number = ? AND invitee_phone_number = ?",
			channelPhoneNumber, inviteePhoneNumber,
		).
		Count(&count)
	return count, result.Error
}

// AcceptInvite converts an invitee's pending invites into a subscriber
// membership, consuming all invite rows for that invitee in one
// transaction.
func (d *Database) AcceptInvite(
	channelPhoneNumber, inviteePhoneNumber, lang string,
) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		membership := models.Membership{
			ChannelPhoneNumber: channelPhoneNumber,
			MemberPhoneNumber:  inviteePhoneNumber,
			Role:               models.RoleSubscriber,
			Language:           lang,
		}
		result := tx.
			Where(
				"channel_phone_number = ? AND member_phone_number = ?",
				channelPhoneNumber, inviteePhoneNumber,
			).
			FirstOrCreate(&membership)
		if result.Error != nil {
			return result.Error
		}
		result = tx.Delete(
			&models.Invite{},
			"channel_phone_number = ? AND invitee_phone_number = ?",
			channelPhoneNumber, inviteePhoneNumber,
		)
		return result.Error
	})
}

// DeclineInvite deletes all pending invites for an invitee on a channel.
func (d *Database) DeclineInvite(
	channelPhoneNumber, inviteePhoneNumber string,
) error {
	result := d.db.Delete(
		&models.Invite{},
		"channel_phone_number = ? AND invitee_phone_number = ?",
		channelPhoneNumber, inviteePhoneNumber,
	)
	return result.Error
}
