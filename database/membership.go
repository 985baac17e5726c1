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
	"errors"

	"github.com/crier-io/crier/database/models"
	"gorm.io/gorm"
)

// ResolveRole returns the current role of a phone number on a channel.
// Callers must re-resolve rather than trusting a role captured earlier in
// the same causal chain; a concurrent REMOVE/ADD may have changed it.
func (d *Database) ResolveRole(
	channelPhoneNumber, memberPhoneNumber string,
) (models.Role, error) {
	var membership models.Membership
	result := d.db.First(
		&membership,
		"channel_phone_number = ? AND member_phone_number = ?",
		channelPhoneNumber, memberPhoneNumber,
	)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return models.RoleNone, nil
		}
		return models.RoleNone, result.Error
	}
	return membership.Role, nil
}

// FindMembership returns the membership row for a (channel, member) pair, or
// ErrNotFound.
func (d *Database) FindMembership(
	channelPhoneNumber, memberPhoneNumber string,
) (*models.Membership, error) {
	var membership models.Membership
	result := d.db.First(
		&membership,
		"channel_phone_number = ? AND member_phone_number = ?",
		channelPhoneNumber, memberPhoneNumber,
	)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &membership, nil
}

// CreateMembership adds a member with the given role, find-or-create on the
// (channel, member) pair so that duplicate or re-ordered commands cannot
// produce duplicate rows. Returns the membership and whether it was created.
func (d *Database) CreateMembership(
	channelPhoneNumber, memberPhoneNumber string,
	role models.Role,
	lang string,
) (*models.Membership, bool, error) {
	membership := models.Membership{
		ChannelPhoneNumber: channelPhoneNumber,
		MemberPhoneNumber:  memberPhoneNumber,
		Role:               role,
		Language:           lang,
	}
	result := d.db.
		Where(
			"channel_phone_number = ? AND member_phone_number = ?",
			channelPhoneNumber, memberPhoneNumber,
		).
		FirstOrCreate(&membership)
	if result.Error != nil {
		return nil, false, result.Error
	}
	return &membership, result.RowsAffected > 0, nil
}

// DestroyMembership deletes the membership row for a (channel, member)
// pair. Returns whether a row existed.
func (d *Database) DestroyMembership(
	channelPhoneNumber, memberPhoneNumber string,
) (bool, error) {
	result := d.db.Delete(
		&models.Membership{},
		"channel_phone_number = ? AND member_phone_number = ?",
		channelPhoneNumber, memberPhoneNumber,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateMemberLanguage persists a member's preferred language.
func (d *Database) UpdateMemberLanguage(
	channelPhoneNumber, memberPhoneNumber, lang string,
) error {
	result := d.db.
		Model(&models.Membership{}).
		Where(
			"channel_phone_number = ? AND member_phone_number = ?",
			channelPhoneNumber, memberPhoneNumber,
		).
		Update("language", lang)
	return result.Error
}
