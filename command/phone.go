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

package command

import (
	"regexp"
	"strings"
)

// e164Re requires a country code: leading '+', non-zero first digit, and a
// total of 9-15 digits
var e164Re = regexp.MustCompile(`^\+[1-9][0-9]{8,14}$`)

// NormalizePhone strips formatting punctuation from a phone number and
// validates the result against the international E.164 pattern. Returns the
// normalized number and whether it is valid.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case ' ', '(', ')', '-', '.', '/':
			continue
		default:
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if !e164Re.MatchString(normalized) {
		return "", false
	}
	return normalized, true
}
