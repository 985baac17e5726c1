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
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/crier-io/crier/command"
	"github.com/crier-io/crier/database"
	"github.com/crier-io/crier/database/models"
	"github.com/crier-io/crier/event"
	"github.com/crier-io/crier/execute"
	"github.com/crier-io/crier/i18n"
	"github.com/crier-io/crier/messenger"
	"github.com/crier-io/crier/signald"
	"github.com/crier-io/crier/trust"
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatcher consumes inbound envelopes from the bus and runs each one
// through classify, parse, execute and send. Events are initiated in
// arrival order but each is processed on its own goroutine, so completion
// order across events is not guaranteed; everything downstream relies on
// find-or-create idempotency rather than ordering.
type Dispatcher struct {
	config  DispatcherConfig
	metrics *dispatcherMetrics

	ctx    context.Context
	cancel context.CancelFunc
	subID  event.EventSubscriberId
	wg     sync.WaitGroup
}

// Gateway is the subset of daemon operations the dispatcher needs.
type Gateway interface {
	Send(
		ctx context.Context,
		channel, recipient, body string,
		attachments []signald.Attachment,
	) error
	SetExpiration(ctx context.Context, channel, recipient string, seconds int64) error
}

type DispatcherConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	DB           *database.Database
	Gateway      Gateway
	Executor     *execute.Executor
	Messenger    *messenger.Messenger
	Trust        *trust.Workflow
	Catalog      *i18n.Catalog
	PromRegistry prometheus.Registerer
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "dispatch")
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.PromRegistry != nil {
		d.initMetrics()
	}
	return d
}

// Start subscribes to inbound gateway events.
func (d *Dispatcher) Start() error {
	d.subID = d.config.EventBus.SubscribeFunc(
		signald.InboundEventType,
		d.handleEvent,
	)
	return nil
}

// Stop unsubscribes and waits for in-flight events to finish.
func (d *Dispatcher) Stop() error {
	d.config.EventBus.Unsubscribe(signald.InboundEventType, d.subID)
	d.cancel()
	d.wg.Wait()
	return nil
}

func (d *Dispatcher) handleEvent(evt event.Event) {
	inbound, ok := evt.Data.(signald.InboundEvent)
	if !ok {
		return
	}
	if inbound.Envelope.Account == "" {
		return
	}
	// Initiation stays in arrival order; processing is async
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.process(d.ctx, inbound.Envelope)
	}()
}

func (d *Dispatcher) process(ctx context.Context, envelope signald.Envelope) {
	channel, err := d.config.DB.FindChannel(envelope.Account)
	if err != nil {
		if errors.Is(err, database.ErrChannelNotFound) {
			d.config.Logger.Debug(
				"envelope for unknown channel",
				"account", envelope.Account,
			)
			return
		}
		d.config.Logger.Error(
			"failed to load channel",
			"account", envelope.Account,
			"error", err,
		)
		return
	}
	classified := Classify(envelope, channel)
	if d.metrics != nil {
		d.metrics.eventsTotal.WithLabelValues(string(classified.Kind)).Inc()
	}
	switch classified.Kind {
	case KindUserMessage:
		d.handleUserMessage(ctx, channel, classified)
	case KindUntrustedIdentity:
		d.config.Trust.OnUntrustedIdentity(
			ctx,
			channel,
			classified.Sender,
			classified.Fingerprint,
			classified.Original,
		)
	case KindRateLimit:
		// The daemon applies its own backoff; blind retries would make
		// the rate limiting worse
		d.config.Logger.Warn(
			"outbound send was rate limited",
			"channel", channel.PhoneNumber,
		)
	case KindExpiryChange:
		d.reconcileExpiry(ctx, channel, classified)
	case KindIgnorable:
	}
}

func (d *Dispatcher) handleUserMessage(
	ctx context.Context,
	channel *models.Channel,
	classified ClassifiedEvent,
) {
	exec, parseErr := command.Parse(classified.Body)
	env := execute.Env{
		Channel:        channel,
		Sender:         classified.Sender,
		SenderRole:     classified.SenderRole,
		SenderLanguage: classified.SenderLanguage,
	}
	res := d.config.Executor.Execute(ctx, env, exec, parseErr)
	d.config.Messenger.Send(ctx, messenger.Dispatch{
		Env:         env,
		Result:      res,
		Body:        classified.Body,
		Attachments: classified.Attachments,
	})
}

// reconcileExpiry handles a disappearing-message timer that differs from
// the channel's stored value. An admin's change is authoritative and
// persisted; anyone else's is reverted and the sender notified.
func (d *Dispatcher) reconcileExpiry(
	ctx context.Context,
	channel *models.Channel,
	classified ClassifiedEvent,
) {
	if classified.SenderRole == models.RoleAdmin {
		if err := d.config.DB.UpdateChannel(
			channel.PhoneNumber,
			map[string]any{"message_expiry": classified.NewExpiry},
		); err != nil {
			d.config.Logger.Error(
				"failed to persist expiry change",
				"channel", channel.PhoneNumber,
				"error", err,
			)
		}
		return
	}
	if err := d.config.Gateway.SetExpiration(
		ctx,
		channel.PhoneNumber,
		classified.Sender,
		int64(channel.MessageExpiry),
	); err != nil {
		d.config.Logger.Error(
			"failed to revert expiry change",
			"channel", channel.PhoneNumber,
			"error", err,
		)
		return
	}
	if err := d.config.Gateway.Send(
		ctx,
		channel.PhoneNumber,
		classified.Sender,
		d.config.Catalog.Render(
			classified.SenderLanguage,
			i18n.KeyExpiryReverted,
		),
		nil,
	); err != nil {
		d.config.Logger.Warn(
			"failed to notify sender of expiry revert",
			"channel", channel.PhoneNumber,
			"error", err,
		)
	}
}
