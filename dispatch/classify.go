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

package dispatch

import (
	"strings"

	"github.com/crier-io/crier/database/models"
	"github.com/crier-io/crier/i18n"
	"github.com/crier-io/crier/signald"
	"golang.org/x/text/language"
)

type Kind string

const (
	KindUserMessage       Kind = "userMessage"
	KindUntrustedIdentity Kind = "untrustedIdentity"
	KindRateLimit         Kind = "rateLimit"
	KindExpiryChange      Kind = "expiryChange"
	KindIgnorable         Kind = "ignorable"
)

// ClassifiedEvent is one inbound envelope routed to its handling path,
// enriched with the sender's resolved role and language. Which fields are
// populated depends on Kind.
type ClassifiedEvent struct {
	Kind           Kind
	Sender         string
	SenderRole     models.Role
	SenderLanguage language.Tag
	Body           string
	Attachments    []signald.Attachment
	NewExpiry      int64
	Fingerprint    string
	Original       *signald.Request
}

// Classify routes a raw envelope. Pure except for the single role/language
// enrichment against the eagerly loaded channel; rules apply in priority
// order, so an expiry change on a message wins over its body.
func Classify(
	envelope signald.Envelope,
	channel *models.Channel,
) ClassifiedEvent {
	switch envelope.Type {
	case signald.EnvelopeTypeUntrustedIdentity,
		signald.EnvelopeTypeInboundIdentityFail:
		out := ClassifiedEvent{Kind: KindUntrustedIdentity}
		if envelope.Error != nil {
			out.Sender = envelope.Error.Recipient
			out.Fingerprint = envelope.Error.Fingerprint
			out.Original = envelope.Error.Request
		}
		if out.Sender == "" && envelope.Data != nil {
			out.Sender = envelope.Data.Source
			out.Fingerprint = envelope.Data.Fingerprint
		}
		return enrich(out, channel)
	case signald.EnvelopeTypeSendError:
		if envelope.Error != nil && isRateLimit(envelope.Error.Message) {
			return ClassifiedEvent{
				Kind:     KindRateLimit,
				Original: envelope.Error.Request,
			}
		}
		return ClassifiedEvent{Kind: KindIgnorable}
	case signald.EnvelopeTypeMessage:
		if envelope.Data == nil {
			return ClassifiedEvent{Kind: KindIgnorable}
		}
		data := envelope.Data
		if data.ExpiresInSeconds != int64(channel.MessageExpiry) {
			return enrich(ClassifiedEvent{
				Kind:      KindExpiryChange,
				Sender:    data.Source,
				NewExpiry: data.ExpiresInSeconds,
			}, channel)
		}
		if data.Body == "" && len(data.Attachments) == 0 {
			return ClassifiedEvent{Kind: KindIgnorable}
		}
		return enrich(ClassifiedEvent{
			Kind:        KindUserMessage,
			Sender:      data.Source,
			Body:        data.Body,
			Attachments: data.Attachments,
		}, channel)
	default:
		return ClassifiedEvent{Kind: KindIgnorable}
	}
}

func enrich(ev ClassifiedEvent, channel *models.Channel) ClassifiedEvent {
	ev.SenderRole = models.RoleNone
	ev.SenderLanguage = i18n.DefaultLanguage
	if m := channel.Membership(ev.Sender); m != nil {
		ev.SenderRole = m.Role
		ev.SenderLanguage = i18n.Match(m.Language)
	}
	return ev
}

func isRateLimit(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "413")
}
