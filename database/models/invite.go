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

// Invite records that inviter asked invitee to subscribe to a channel. The
// unique index makes re-inviting idempotent at the row level; it is consumed
// by ACCEPT and deleted by DECLINE.
type Invite struct {
	ID                 uint   `gorm:"primarykey"`
	ChannelPhoneNumber string `gorm:"uniqueIndex:idx_invite_triple;size:16"`
	InviterPhoneNumber string `gorm:"uniqueIndex:idx_invite_triple;size:16"`
	InviteePhoneNumber string `gorm:"uniqueIndex:idx_invite_triple;index;size:16"`
}

func (Invite) TableName() string {
	return "invite"
}
