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

// Channel is a phone-number-addressed broadcast list. The phone number is
// stable for the lifetime of the channel and serves as the primary key.
type Channel struct {
	PhoneNumber      string `gorm:"primarykey;size:16"`
	Name             string
	Description      string
	HotlineOn        bool
	VouchingOn       bool
	VouchLevel       int `gorm:"default:1"`
	MessageExpiry    int
	Memberships      []Membership      `gorm:"foreignKey:ChannelPhoneNumber;references:PhoneNumber"`
	Invites          []Invite          `gorm:"foreignKey:ChannelPhoneNumber;references:PhoneNumber"`
	Deauthorizations []Deauthorization `gorm:"foreignKey:ChannelPhoneNumber;references:PhoneNumber"`
	MessageCount     MessageCount      `gorm:"foreignKey:ChannelPhoneNumber;references:PhoneNumber"`
}

func (Channel) TableName() string {
	return "channel"
}

// Admins returns the memberships with the admin role.
func (c *Channel) Admins() []Membership {
	out := []Membership{}
	for _, m := range c.Memberships {
		if m.Role == RoleAdmin {
			out = append(out, m)
		}
	}
	return out
}

// Subscribers returns the memberships with the subscriber role.
func (c *Channel) Subscribers() []Membership {
	out := []Membership{}
	for _, m := range c.Memberships {
		if m.Role == RoleSubscriber {
			out = append(out, m)
		}
	}
	return out
}

// Membership returns the membership row for the given phone number, or nil.
func (c *Channel) Membership(phoneNumber string) *Membership {
	for i := range c.Memberships {
		if c.Memberships[i].MemberPhoneNumber == phoneNumber {
			return &c.Memberships[i]
		}
	}
	return nil
}

// Role returns the resolved role for the given phone number; a number with
// no membership row has RoleNone.
func (c *Channel) Role(phoneNumber string) Role {
	if m := c.Membership(phoneNumber); m != nil {
		return m.Role
	}
	return RoleNone
}
