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

package signald

// Wire shapes for the line-delimited JSON protocol spoken with the
// messaging daemon. One JSON object per line in both directions.

// Inbound envelope types
const (
	EnvelopeTypeMessage               = "message"
	EnvelopeTypeUntrustedIdentity     = "untrusted_identity"
	EnvelopeTypeInboundIdentityFail   = "inbound_identity_failure"
	EnvelopeTypeSendError             = "send_error"
	EnvelopeTypeReceipt               = "receipt"
	EnvelopeTypeSubscribed            = "subscribed"
	EnvelopeTypeVerificationSucceeded = "verification_succeeded"
	EnvelopeTypeVerificationFailed    = "verification_failed"
	EnvelopeTypeVersion               = "version"
)

// Outbound request types
const (
	RequestTypeSubscribe     = "subscribe"
	RequestTypeSend          = "send"
	RequestTypeSetExpiration = "set_expiration"
	RequestTypeTrust         = "trust"
	RequestTypeRegister      = "register"
	RequestTypeVerify        = "verify"
)

// Envelope is a single inbound event from the daemon. Which fields are
// populated depends on Type.
type Envelope struct {
	Type    string        `json:"type"`
	Account string        `json:"account,omitempty"`
	Data    *EnvelopeData `json:"data,omitempty"`
	Error   *ErrorData    `json:"error,omitempty"`
}

type EnvelopeData struct {
	Source           string       `json:"source,omitempty"`
	Body             string       `json:"body,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
	ExpiresInSeconds int64        `json:"expiresInSeconds,omitempty"`
	Fingerprint      string       `json:"fingerprint,omitempty"`
}

// ErrorData describes a failed outbound send. Request carries the original
// outbound request so callers can retry it after corrective action.
type ErrorData struct {
	Message     string   `json:"message,omitempty"`
	Recipient   string   `json:"recipient,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Request     *Request `json:"request,omitempty"`
}

type Attachment struct {
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// Request is a single outbound command to the daemon.
type Request struct {
	Type             string       `json:"type"`
	ID               string       `json:"id,omitempty"`
	Account          string       `json:"account,omitempty"`
	Recipient        string       `json:"recipient,omitempty"`
	Recipients       []string     `json:"recipients,omitempty"`
	MessageBody      string       `json:"messageBody,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
	ExpiresInSeconds int64        `json:"expiresInSeconds,omitempty"`
	Fingerprint      string       `json:"fingerprint,omitempty"`
	Code             string       `json:"code,omitempty"`
}
