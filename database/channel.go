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
	"gorm.io/gorm/clause"
)

// FindChannel returns the channel for the given phone number with its
// memberships, invites, deauthorizations and counters eagerly loaded.
// Returns ErrChannelNotFound for unknown numbers.
func (d *Database) FindChannel(phoneNumber string) (*models.Channel, error) {
	var channel models.Channel
	result := d.db.
		Preload("Memberships").
		Preload("Invites").
		Preload("Deauthorizations").
		Preload("MessageCount").
		First(&channel, "phone_number = ?", phoneNumber)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, result.Error
	}
	return &channel, nil
}

// ListChannelNumbers returns the phone numbers of all provisioned
// channels, used to subscribe the gateway at startup.
func (d *Database) ListChannelNumbers() ([]string, error) {
	var numbers []string
	result := d.db.
		Model(&models.Channel{}).
		Pluck("phone_number", &numbers)
	if result.Error != nil {
		return nil, result.Error
	}
	return numbers, nil
}

// CreateChannel provisions a new channel row along with its counter record.
func (d *Database) CreateChannel(channel *models.Channel) error {
	if result := d.db.Create(channel); result.Error != nil {
		return result.Error
	}
	count := models.MessageCount{ChannelPhoneNumber: channel.PhoneNumber}
	result := d.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&count)
	return result.Error
}

// UpdateChannel persists the given settings fields for a channel.
func (d *Database) UpdateChannel(
	phoneNumber string,
	fields map[string]any,
) error {
	result := d.db.
		Model(&models.Channel{}).
		Where("phone_number = ?", phoneNumber).
		Updates(fields)
	return result.Error
}

// IncrementBroadcastCount bumps the outbound broadcast counter for a
// channel. Called exactly once per inbound broadcast regardless of how many
// batches the fan-out used.
func (d *Database) IncrementBroadcastCount(phoneNumber string) error {
	result := d.db.
		Model(&models.MessageCount{}).
		Where("channel_phone_number = ?", phoneNumber).
		Updates(map[string]any{
			"broadcast_in":  gorm.Expr("broadcast_in + 1"),
			"broadcast_out": gorm.Expr("broadcast_out + 1"),
		})
	return result.Error
}

// IncrementCommandCount bumps the command counter for a channel.
func (d *Database) IncrementCommandCount(phoneNumber string) error {
	result := d.db.
		Model(&models.MessageCount{}).
		Where("channel_phone_number = ?", phoneNumber).
		Updates(map[string]any{
			"command_in":  gorm.Expr("command_in + 1"),
			"command_out": gorm.Expr("command_out + 1"),
		})
	return result.Error
}
