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

package models

// Role is a member's relationship to a channel. Exactly one of an admin
// membership, a subscriber membership, or no membership row may exist for a
// (channel, phone number) pair; RoleNone is the derived absence of a row and
// is never persisted.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSubscriber Role = "SUBSCRIBER"
	RoleNone       Role = "NONE"
)

// Membership links a phone number to a channel with a role and a preferred
// language. Promotions and demotions are modeled as delete+create of the
// row, never as in-place role mutation.
type Membership struct {
	ID                 uint   `gorm:"primarykey"`
	ChannelPhoneNumber string `gorm:"uniqueIndex:idx_membership_pair;size:16"`
	MemberPhoneNumber  string `gorm:"uniqueIndex:idx_membership_pair;index;size:16"`
	Role               Role   `gorm:"size:10"`
	Language           string `gorm:"size:8"`
}

func (Membership) TableName() string {
	return "membership"
}
