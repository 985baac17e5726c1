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

// MessageCount holds the monotonically-incrementing per-channel counters
// reported by INFO.
type MessageCount struct {
	ChannelPhoneNumber string `gorm:"primarykey;size:16"`
	BroadcastIn        uint64
	BroadcastOut       uint64
	CommandIn          uint64
	CommandOut         uint64
}

func (MessageCount) TableName() string {
	return "message_count"
}
