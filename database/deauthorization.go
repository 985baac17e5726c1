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

// CreateDeauthorization provisionally revokes admin trust for a member
// whose identity key changed. Find-or-create on the (channel, member) pair;
// a repeated identity error must not create duplicate rows.
func (d *Database) CreateDeauthorization(
	channelPhoneNumber, memberPhoneNumber, fingerprint string,
) error {
	deauth := models.Deauthorization{
		ChannelPhoneNumber: channelPhoneNumber,
		MemberPhoneNumber:  memberPhoneNumber,
		Fingerprint:        fingerprint,
	}
	result := d.db.
		Where(
			"channel_phone_number = ? AND member_phone_number = ?",
			channelPhoneNumber, memberPhoneNumber,
		).
		FirstOrCreate(&deauth)
	return result.Error
}

// FindDeauthorization returns the pending deauthorization for a (channel,
// member) pair, or ErrNotFound.
func (d *Database) FindDeauthorization(
	channelPhoneNumber, memberPhoneNumber string,
) (*models.Deauthorization, error) {
	var deauth models.Deauthorization
	result := d.db.First(
		&deauth,
		"channel_phone_number = ? AND member_phone_number = ?",
		channelPhoneNumber, memberPhoneNumber,
	)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &deauth, nil
}

// DeleteDeauthorization removes the pending deauthorization for a (channel,
// member) pair.
func (d *Database) DeleteDeauthorization(
	channelPhoneNumber, memberPhoneNumber string,
) error {
	result := d.db.Delete(
		&models.Deauthorization{},
		"channel_phone_number = ? AND member_phone_number = ?",
		channelPhoneNumber, memberPhoneNumber,
	)
	return result.Error
}
