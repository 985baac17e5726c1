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

// Deauthorization marks a former admin whose identity key changed and who
// has been provisionally removed pending re-verification. It is destroyed
// when the admin is re-added after the new fingerprint is trusted.
type Deauthorization struct {
	ID                 uint   `gorm:"primarykey"`
	ChannelPhoneNumber string `gorm:"uniqueIndex:idx_deauth_pair;size:16"`
	MemberPhoneNumber  string `gorm:"uniqueIndex:idx_deauth_pair;size:16"`
	Fingerprint        string
}

func (Deauthorization) TableName() string {
	return "deauthorization"
}
