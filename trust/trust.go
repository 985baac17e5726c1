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

// Package trust reacts to safety-number changes. The invariant it
// maintains is that no message is ever delivered to a recipient whose
// identity has not been freshly verified: subscribers are re-trusted and
// their message resent, admins are provisionally deauthorized pending
// manual re-verification.
package trust

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/crier-io/crier/database"
	"github.com/crier-io/crier/database/models"
	"github.com/crier-io/crier/i18n"
	"github.com/crier-io/crier/signald"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultResendDelay spaces the resend out from the trust call so the
// daemon's own rate limiter is not re-triggered.
const DefaultResendDelay = 2 * time.Second

type Workflow struct {
	config  WorkflowConfig
	metrics *workflowMetrics
}

// Gateway is the subset of daemon operations the workflow needs.
type Gateway interface {
	Trust(ctx context.Context, channel, recipient, fingerprint string) error
	Resend(ctx context.Context, req signald.Request) error
	Send(
		ctx context.Context,
		channel, recipient, body string,
		attachments []signald.Attachment,
	) error
}

type WorkflowConfig struct {
	Logger       *slog.Logger
	DB           *database.Database
	Gateway      Gateway
	Catalog      *i18n.Catalog
	PromRegistry prometheus.Registerer
	ResendDelay  time.Duration
}

type workflowMetrics struct {
	outcomesTotal *prometheus.CounterVec
}

func NewWorkflow(cfg WorkflowConfig) *Workflow {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "trust")
	if cfg.ResendDelay <= 0 {
		cfg.ResendDelay = DefaultResendDelay
	}
	w := &Workflow{
		config: cfg,
	}
	if cfg.PromRegistry != nil {
		promautoFactory := promauto.With(cfg.PromRegistry)
		w.metrics = &workflowMetrics{
			outcomesTotal: promautoFactory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "crier_trust_outcomes_total",
					Help: "trust workflow outcomes",
				},
				[]string{"outcome"},
			),
		}
	}
	return w
}

// OnUntrustedIdentity handles one identity-key change for a channel member.
// original is the outbound request whose delivery failed, when known.
// Errors are logged and counted, never re-raised.
func (w *Workflow) OnUntrustedIdentity(
	ctx context.Context,
	channel *models.Channel,
	member, fingerprint string,
	original *signald.Request,
) {
	// Role is re-read rather than trusted from the failing send's context;
	// a concurrent REMOVE/ADD may have changed it
	role, err := w.config.DB.ResolveRole(channel.PhoneNumber, member)
	if err != nil {
		w.config.Logger.Error(
			"failed to resolve role",
			"channel", channel.PhoneNumber,
			"error", err,
		)
		w.count("error")
		return
	}
	switch role {
	case models.RoleNone:
		// Nothing to protect
		w.count("ignored")
	case models.RoleSubscriber:
		w.retrustAndResend(ctx, channel, member, fingerprint, original)
	case models.RoleAdmin:
		if original != nil && w.isWelcome(channel.Name, original.MessageBody) {
			// A welcome failing on an untrusted identity means the new
			// admin is re-installing, not being impersonated
			w.retrustAndResend(ctx, channel, member, fingerprint, original)
			return
		}
		w.deauthorize(ctx, channel, member, fingerprint)
	}
}

func (w *Workflow) retrustAndResend(
	ctx context.Context,
	channel *models.Channel,
	member, fingerprint string,
	original *signald.Request,
) {
	if err := w.config.Gateway.Trust(
		ctx,
		channel.PhoneNumber,
		member,
		fingerprint,
	); err != nil {
		w.config.Logger.Error(
			"failed to trust new fingerprint",
			"channel", channel.PhoneNumber,
			"error", err,
		)
		w.count("error")
		return
	}
	select {
	case <-ctx.Done():
		w.count("error")
		return
	case <-time.After(w.config.ResendDelay):
	}
	if original != nil {
		if err := w.config.Gateway.Resend(ctx, *original); err != nil {
			w.config.Logger.Error(
				"failed to resend after re-trust",
				"channel", channel.PhoneNumber,
				"error", err,
			)
			w.count("error")
			return
		}
	}
	w.config.Logger.Info(
		"re-trusted and resent",
		"channel", channel.PhoneNumber,
	)
	w.count("resent")
}

func (w *Workflow) deauthorize(
	ctx context.Context,
	channel *models.Channel,
	member, fingerprint string,
) {
	if err := w.config.DB.CreateDeauthorization(
		channel.PhoneNumber,
		member,
		fingerprint,
	); err != nil {
		w.config.Logger.Error(
			"failed to record deauthorization",
			"channel", channel.PhoneNumber,
			"error", err,
		)
		w.count("error")
		return
	}
	if _, err := w.config.DB.DestroyMembership(
		channel.PhoneNumber,
		member,
	); err != nil {
		w.config.Logger.Error(
			"failed to remove deauthorized admin",
			"channel", channel.PhoneNumber,
			"error", err,
		)
	}
	for _, admin := range channel.Admins() {
		if admin.MemberPhoneNumber == member {
			continue
		}
		notice := w.config.Catalog.Render(
			i18n.Match(admin.Language),
			i18n.KeyTrustDeauthorized,
			member,
		)
		if err := w.config.Gateway.Send(
			ctx,
			channel.PhoneNumber,
			admin.MemberPhoneNumber,
			notice,
			nil,
		); err != nil {
			w.config.Logger.Error(
				"failed to notify admin of deauthorization",
				"channel", channel.PhoneNumber,
				"error", err,
			)
		}
	}
	w.config.Logger.Info(
		"admin deauthorized pending re-verification",
		"channel", channel.PhoneNumber,
	)
	w.count("deauthorized")
}

// isWelcome reports whether a failed outbound body is one of the known
// admin-welcome messages, compared structurally with headers, numbers and
// whitespace stripped. Fragile if templates drift, but the daemon protocol
// carries no message-type metadata to compare against instead.
func (w *Workflow) isWelcome(channelName, body string) bool {
	stripped := i18n.StripVariableText(body)
	for _, welcome := range w.config.Catalog.WelcomeBodies(channelName) {
		if stripped == welcome {
			return true
		}
	}
	return false
}

func (w *Workflow) count(outcome string) {
	if w.metrics != nil {
		w.metrics.outcomesTotal.WithLabelValues(outcome).Inc()
	}
}
