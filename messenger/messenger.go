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

package messenger

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/crier-io/crier/command"
	"github.com/crier-io/crier/database"
	"github.com/crier-io/crier/database/hotline"
	"github.com/crier-io/crier/database/models"
	"github.com/crier-io/crier/execute"
	"github.com/crier-io/crier/i18n"
	"github.com/crier-io/crier/signald"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultBroadcastBatchSize = 50

// Messenger renders a command result into outbound daemon sends: a plain
// broadcast, an anonymized hotline relay, or a direct reply plus
// notification fan-out. Failures are logged, never retried.
type Messenger struct {
	config  MessengerConfig
	metrics *messengerMetrics
}

// Gateway is the subset of daemon operations outbound routing needs.
type Gateway interface {
	Send(
		ctx context.Context,
		channel, recipient, body string,
		attachments []signald.Attachment,
	) error
	Broadcast(
		ctx context.Context,
		channel string,
		recipients []string,
		body string,
		attachments []signald.Attachment,
	) error
	SetExpiration(ctx context.Context, channel, recipient string, seconds int64) error
}

type MessengerConfig struct {
	Logger       *slog.Logger
	Gateway      Gateway
	DB           *database.Database
	Hotline      *hotline.Store
	Catalog      *i18n.Catalog
	PromRegistry prometheus.Registerer
	// BroadcastBatchSize bounds recipients per daemon request to respect
	// outbound rate limits
	BroadcastBatchSize int
}

func NewMessenger(cfg MessengerConfig) *Messenger {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "messenger")
	if cfg.BroadcastBatchSize <= 0 {
		cfg.BroadcastBatchSize = DefaultBroadcastBatchSize
	}
	m := &Messenger{
		config: cfg,
	}
	if cfg.PromRegistry != nil {
		m.initMetrics()
	}
	return m
}

// Dispatch carries everything the messenger needs for one inbound message.
type Dispatch struct {
	Env         execute.Env
	Result      execute.Result
	Body        string
	Attachments []signald.Attachment
}

// Send routes a command result to the daemon. Fire and forget from the
// caller's perspective; every failure is caught and logged here so one bad
// send can never abort its siblings or the dispatch loop.
func (m *Messenger) Send(ctx context.Context, d Dispatch) {
	switch {
	case d.Result.Status == execute.StatusNoop &&
		d.Env.SenderRole == models.RoleAdmin:
		m.broadcast(ctx, d)
	case d.Result.Status == execute.StatusNoop:
		m.hotline(ctx, d)
	default:
		m.reply(ctx, d)
	}
}

// broadcast sends the original message to every member under a channel-name
// header, in bounded batches. The broadcast counter is incremented exactly
// once regardless of batch count.
func (m *Messenger) broadcast(ctx context.Context, d Dispatch) {
	channel := d.Env.Channel
	header := m.config.Catalog.Render(
		i18n.DefaultLanguage,
		i18n.KeyChannelHeader,
		channel.Name,
	)
	body := header + "\n" + d.Body
	recipients := make([]string, 0, len(channel.Memberships))
	for _, member := range channel.Memberships {
		if member.MemberPhoneNumber == d.Env.Sender {
			continue
		}
		recipients = append(recipients, member.MemberPhoneNumber)
	}
	batchSize := m.config.BroadcastBatchSize
	for start := 0; start < len(recipients); start += batchSize {
		end := min(start+batchSize, len(recipients))
		err := m.config.Gateway.Broadcast(
			ctx,
			channel.PhoneNumber,
			recipients[start:end],
			body,
			d.Attachments,
		)
		m.record("broadcast", err)
		if err != nil {
			m.config.Logger.Error(
				"broadcast batch failed",
				"channel", channel.PhoneNumber,
				"recipients", end-start,
				"error", err,
			)
		}
	}
	if err := m.config.DB.IncrementBroadcastCount(channel.PhoneNumber); err != nil {
		m.config.Logger.Error(
			"failed to increment broadcast counter",
			"channel", channel.PhoneNumber,
			"error", err,
		)
	}
}

// hotline forwards a non-member/subscriber message to every admin under a
// per-admin localized pseudonymous header, then confirms to the sender.
func (m *Messenger) hotline(ctx context.Context, d Dispatch) {
	channel := d.Env.Channel
	if !channel.HotlineOn {
		m.send(ctx, "hotline", channel.PhoneNumber, d.Env.Sender,
			m.config.Catalog.Render(
				d.Env.SenderLanguage,
				i18n.KeyHotlineDisabled,
			), nil)
		return
	}
	id, err := m.config.Hotline.FindOrCreate(channel.PhoneNumber, d.Env.Sender)
	if err != nil {
		m.config.Logger.Error(
			"failed to assign hotline id",
			"channel", channel.PhoneNumber,
			"error", err,
		)
		m.send(ctx, "hotline", channel.PhoneNumber, d.Env.Sender,
			m.config.Catalog.Render(
				d.Env.SenderLanguage,
				i18n.KeyErrorPersist,
			), nil)
		return
	}
	var wg sync.WaitGroup
	for _, admin := range channel.Admins() {
		header := m.config.Catalog.Render(
			i18n.Match(admin.Language),
			i18n.KeyHotlineHeader,
			id,
		)
		wg.Add(1)
		go func(recipient, body string) {
			defer wg.Done()
			m.send(ctx, "hotline", channel.PhoneNumber, recipient, body, d.Attachments)
		}(admin.MemberPhoneNumber, header+"\n"+d.Body)
	}
	wg.Wait()
	m.send(ctx, "hotline", channel.PhoneNumber, d.Env.Sender,
		m.config.Catalog.Render(
			d.Env.SenderLanguage,
			i18n.KeyHotlineReceived,
		), nil)
	m.incrementCommandCount(channel.PhoneNumber)
}

// reply sends the command result to the sender and fans the notifications
// out as independent sends whose completions are awaited together.
func (m *Messenger) reply(ctx context.Context, d Dispatch) {
	channel := d.Env.Channel
	m.send(ctx, "reply", channel.PhoneNumber, d.Env.Sender,
		m.header(d)+d.Result.Message, nil)
	var wg sync.WaitGroup
	for _, n := range d.Result.Notifications {
		wg.Add(1)
		go func(n execute.Notification) {
			defer wg.Done()
			m.send(ctx, "notification", channel.PhoneNumber, n.Recipient, n.Message, nil)
		}(n)
	}
	wg.Wait()
	m.incrementCommandCount(channel.PhoneNumber)
	m.syncExpiry(ctx, d)
}

// header picks the reply header. RENAME and INFO responses carry none,
// HELP carries the commands header, everything else the channel name.
func (m *Messenger) header(d Dispatch) string {
	switch d.Result.Command {
	case command.CommandRename, command.CommandInfo:
		return ""
	case command.CommandHelp:
		return m.config.Catalog.Render(
			d.Env.SenderLanguage,
			i18n.KeyCommandsHeader,
		) + "\n"
	default:
		return m.config.Catalog.Render(
			i18n.DefaultLanguage,
			i18n.KeyChannelHeader,
			d.Env.Channel.Name,
		) + "\n"
	}
}

// syncExpiry aligns the disappearing-message timer of members created by
// this command with the channel's configured value.
func (m *Messenger) syncExpiry(ctx context.Context, d Dispatch) {
	if d.Result.Status != execute.StatusSuccess {
		return
	}
	channel := d.Env.Channel
	var targets []string
	switch d.Result.Command {
	case command.CommandJoin, command.CommandAccept:
		targets = []string{d.Env.Sender}
	case command.CommandAdd:
		for _, n := range d.Result.Notifications {
			targets = append(targets, n.Recipient)
		}
		// Only the new admin's timer needs syncing, not the notified admins
		if len(targets) > 1 {
			targets = targets[:1]
		}
	case command.CommandInvite:
		for _, n := range d.Result.Notifications {
			targets = append(targets, n.Recipient)
		}
	default:
		return
	}
	for _, target := range targets {
		if err := m.config.Gateway.SetExpiration(
			ctx,
			channel.PhoneNumber,
			target,
			int64(channel.MessageExpiry),
		); err != nil {
			m.config.Logger.Warn(
				"failed to sync message expiry",
				"channel", channel.PhoneNumber,
				"recipient", target,
				"error", err,
			)
		}
	}
}

func (m *Messenger) send(
	ctx context.Context,
	kind, channel, recipient, body string,
	attachments []signald.Attachment,
) {
	err := m.config.Gateway.Send(ctx, channel, recipient, body, attachments)
	m.record(kind, err)
	if err != nil {
		m.config.Logger.Error(
			"send failed",
			"kind", kind,
			"channel", channel,
			"error", err,
		)
	}
}

func (m *Messenger) incrementCommandCount(channel string) {
	if err := m.config.DB.IncrementCommandCount(channel); err != nil {
		m.config.Logger.Error(
			"failed to increment command counter",
			"channel", channel,
			"error", err,
		)
	}
}

func (m *Messenger) record(kind string, err error) {
	if m.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.metrics.sendsTotal.WithLabelValues(kind, result).Inc()
}
