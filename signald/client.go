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

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crier-io/crier/event"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	reconnectInitialDelay = 200 * time.Millisecond
	reconnectMaxDelay     = 10 * time.Second
	reconnectMaxAttempts  = 8

	// Single inbound line must fit in this buffer
	maxLineSize = 1 << 20
)

var ErrClientClosed = errors.New("gateway client closed")

// Client owns the duplex connection to the messaging daemon. Inbound
// envelopes are published on the event bus; outbound requests are written
// as one JSON line each under a write lock. Transient connection loss is
// handled internally with bounded exponential backoff before a ClosedEvent
// is surfaced.
type Client struct {
	config  ClientConfig
	metrics *clientMetrics

	connMu  sync.Mutex
	conn    net.Conn
	writeMu sync.Mutex

	// Channels to re-subscribe after a reconnect
	subsMu     sync.Mutex
	subscribed map[string]bool

	nextID  atomic.Uint64
	closed  atomic.Bool
	closeCh chan struct{}
	readWg  sync.WaitGroup
}

type ClientConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	SocketPath   string
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "signald")
	c := &Client{
		config:     cfg,
		subscribed: make(map[string]bool),
		closeCh:    make(chan struct{}),
	}
	if cfg.PromRegistry != nil {
		c.initMetrics()
	}
	return c
}

// Start connects to the daemon and begins the reader loop.
func (c *Client) Start() error {
	conn, err := net.Dial("unix", c.config.SocketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	c.readWg.Add(1)
	go c.readLoop()
	return nil
}

// Stop closes the connection and stops the reader loop.
func (c *Client) Stop() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.closeCh)
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	var err error
	if conn != nil {
		err = conn.Close()
	}
	c.readWg.Wait()
	return err
}

// Subscribe asks the daemon to deliver events for a channel's number.
// Re-issued automatically after a reconnect.
func (c *Client) Subscribe(ctx context.Context, channel string) error {
	c.subsMu.Lock()
	c.subscribed[channel] = true
	c.subsMu.Unlock()
	return c.request(ctx, Request{
		Type:    RequestTypeSubscribe,
		Account: channel,
	})
}

// Send delivers a message from a channel's number to a single recipient.
func (c *Client) Send(
	ctx context.Context,
	channel, recipient, body string,
	attachments []Attachment,
) error {
	return c.request(ctx, Request{
		Type:        RequestTypeSend,
		Account:     channel,
		Recipient:   recipient,
		MessageBody: body,
		Attachments: attachments,
	})
}

// Broadcast delivers a message from a channel's number to multiple
// recipients in a single daemon request.
func (c *Client) Broadcast(
	ctx context.Context,
	channel string,
	recipients []string,
	body string,
	attachments []Attachment,
) error {
	return c.request(ctx, Request{
		Type:        RequestTypeSend,
		Account:     channel,
		Recipients:  recipients,
		MessageBody: body,
		Attachments: attachments,
	})
}

// SetExpiration sets the disappearing-message timer for a conversation.
func (c *Client) SetExpiration(
	ctx context.Context,
	channel, recipient string,
	seconds int64,
) error {
	return c.request(ctx, Request{
		Type:             RequestTypeSetExpiration,
		Account:          channel,
		Recipient:        recipient,
		ExpiresInSeconds: seconds,
	})
}

// Trust marks a recipient's new identity fingerprint as verified.
func (c *Client) Trust(
	ctx context.Context,
	channel, recipient, fingerprint string,
) error {
	return c.request(ctx, Request{
		Type:        RequestTypeTrust,
		Account:     channel,
		Recipient:   recipient,
		Fingerprint: fingerprint,
	})
}

// Register begins registration of a newly purchased number with the
// network. Completion is signaled by a verification envelope.
func (c *Client) Register(ctx context.Context, number string) error {
	return c.request(ctx, Request{
		Type:    RequestTypeRegister,
		Account: number,
	})
}

// Verify submits a verification code for a number under registration.
func (c *Client) Verify(ctx context.Context, number, code string) error {
	return c.request(ctx, Request{
		Type:    RequestTypeVerify,
		Account: number,
		Code:    code,
	})
}

// Resend replays a previously failed outbound request, used by the trust
// workflow after re-verifying a recipient's identity.
func (c *Client) Resend(ctx context.Context, req Request) error {
	req.ID = ""
	return c.request(ctx, req)
}

func (c *Client) request(ctx context.Context, req Request) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	req.ID = strconv.FormatUint(c.nextID.Add(1), 10)
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	data = append(data, '\n')
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return ErrClientClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		defer conn.SetWriteDeadline(time.Time{}) //nolint:errcheck
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to write request: %w", err)
	}
	if c.metrics != nil {
		c.metrics.requestsTotal.WithLabelValues(req.Type).Inc()
	}
	return nil
}

func (c *Client) readLoop() {
	defer c.readWg.Done()
	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}
		err := c.readConn(conn)
		if c.closed.Load() {
			return
		}
		c.config.Logger.Warn(
			"daemon connection lost",
			"error", err,
		)
		if !c.reconnect() {
			if c.config.EventBus != nil {
				c.config.EventBus.Publish(
					ClosedEventType,
					event.NewEvent(
						ClosedEventType,
						ClosedEvent{Error: err},
					),
				)
			}
			return
		}
	}
}

// readConn consumes envelopes from a connection until it fails
func (c *Client) readConn(conn net.Conn) error {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var envelope Envelope
		if err := json.Unmarshal(line, &envelope); err != nil {
			c.config.Logger.Warn(
				"discarding malformed envelope",
				"error", err,
			)
			continue
		}
		if c.metrics != nil {
			c.metrics.envelopesTotal.WithLabelValues(envelope.Type).Inc()
		}
		if c.config.EventBus != nil {
			c.config.EventBus.Publish(
				InboundEventType,
				event.NewEvent(
					InboundEventType,
					InboundEvent{Envelope: envelope},
				),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

// reconnect re-dials the daemon with exponential backoff and re-issues
// channel subscriptions. Returns false once attempts are exhausted or the
// client is stopped.
func (c *Client) reconnect() bool {
	delay := reconnectInitialDelay
	for attempt := 1; attempt <= reconnectMaxAttempts; attempt++ {
		select {
		case <-c.closeCh:
			return false
		case <-time.After(delay):
		}
		conn, err := net.Dial("unix", c.config.SocketPath)
		if err == nil {
			c.connMu.Lock()
			c.conn = conn
			c.connMu.Unlock()
			if c.metrics != nil {
				c.metrics.reconnectsTotal.Inc()
			}
			c.config.Logger.Info(
				"reconnected to daemon",
				"attempt", attempt,
			)
			c.resubscribe()
			return true
		}
		c.config.Logger.Warn(
			"reconnect attempt failed",
			"attempt", attempt,
			"error", err,
		)
		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
	return false
}

func (c *Client) resubscribe() {
	c.subsMu.Lock()
	channels := make([]string, 0, len(c.subscribed))
	for channel := range c.subscribed {
		channels = append(channels, channel)
	}
	c.subsMu.Unlock()
	for _, channel := range channels {
		ctx, cancel := context.WithTimeout(
			context.Background(),
			10*time.Second,
		)
		err := c.request(ctx, Request{
			Type:    RequestTypeSubscribe,
			Account: channel,
		})
		cancel()
		if err != nil {
			c.config.Logger.Warn(
				"failed to re-subscribe channel",
				"channel", channel,
				"error", err,
			)
		}
	}
}
