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

package messenger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/crier-io/crier/command"
	"github.com/crier-io/crier/database"
	"github.com/crier-io/crier/database/hotline"
	"github.com/crier-io/crier/database/models"
	"github.com/crier-io/crier/execute"
	"github.com/crier-io/crier/i18n"
	"github.com/crier-io/crier/messenger"
	"github.com/crier-io/crier/signald"
)

type sendCall struct {
	channel   string
	recipient string
	body      string
}

type broadcastCall struct {
	channel    string
	recipients []string
	body       string
}

type expireCall struct {
	channel   string
	recipient string
	seconds   int64
}

// fakeGateway records calls under a lock since notification fan-out is
// concurrent.
type fakeGateway struct {
	mu         sync.Mutex
	sends      []sendCall
	broadcasts []broadcastCall
	expires    []expireCall
}

func (f *fakeGateway) Send(
	_ context.Context,
	channel, recipient, body string,
	_ []signald.Attachment,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sendCall{
		channel:   channel,
		recipient: recipient,
		body:      body,
	})
	return nil
}

func (f *fakeGateway) Broadcast(
	_ context.Context,
	channel string,
	recipients []string,
	body string,
	_ []signald.Attachment,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, broadcastCall{
		channel:    channel,
		recipients: append([]string{}, recipients...),
		body:       body,
	})
	return nil
}

func (f *fakeGateway) SetExpiration(
	_ context.Context,
	channel, recipient string,
	seconds int64,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires = append(f.expires, expireCall{
		channel:   channel,
		recipient: recipient,
		seconds:   seconds,
	})
	return nil
}

func (f *fakeGateway) sendsTo(recipient string) []sendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sendCall
	for _, s := range f.sends {
		if s.recipient == recipient {
			out = append(out, s)
		}
	}
	return out
}

type testEnv struct {
	db        *database.Database
	store     *hotline.Store
	catalog   *i18n.Catalog
	gateway   *fakeGateway
	messenger *messenger.Messenger
}

func newTestEnv(t *testing.T, batchSize int) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	store, err := hotline.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)
	gateway := &fakeGateway{}
	m := messenger.NewMessenger(messenger.MessengerConfig{
		Gateway:            gateway,
		DB:                 db,
		Hotline:            store,
		Catalog:            catalog,
		BroadcastBatchSize: batchSize,
	})
	return &testEnv{
		db:        db,
		store:     store,
		catalog:   catalog,
		gateway:   gateway,
		messenger: m,
	}
}

func (te *testEnv) createChannel(
	t *testing.T,
	number string,
	members map[string]models.Role,
) {
	t.Helper()
	require.NoError(t, te.db.CreateChannel(&models.Channel{
		PhoneNumber:   number,
		Name:          "night owls",
		MessageExpiry: 604800,
	}))
	for member, role := range members {
		_, _, err := te.db.CreateMembership(number, member, role, "en")
		require.NoError(t, err)
	}
}

func (te *testEnv) loadEnv(t *testing.T, number, sender string) execute.Env {
	t.Helper()
	channel, err := te.db.FindChannel(number)
	require.NoError(t, err)
	return execute.Env{
		Channel:        channel,
		Sender:         sender,
		SenderRole:     channel.Role(sender),
		SenderLanguage: i18n.DefaultLanguage,
	}
}

func TestBroadcastBatchesAndExcludesSender(t *testing.T) {
	te := newTestEnv(t, 2)
	te.createChannel(t, "+15552000001", map[string]models.Role{
		"+15551110001": models.RoleAdmin,
		"+15551110002": models.RoleSubscriber,
		"+15551110003": models.RoleSubscriber,
		"+15551110004": models.RoleSubscriber,
	})
	env := te.loadEnv(t, "+15552000001", "+15551110001")

	te.messenger.Send(context.Background(), messenger.Dispatch{
		Env:    env,
		Result: execute.Result{Command: command.CommandNone, Status: execute.StatusNoop},
		Body:   "meeting moved to 7pm",
	})

	// Three recipients with a batch size of two makes two daemon requests
	require.Len(t, te.gateway.broadcasts, 2)
	var recipients []string
	for _, b := range te.gateway.broadcasts {
		require.Equal(t, "[night owls]\nmeeting moved to 7pm", b.body)
		require.NotContains(t, b.recipients, "+15551110001")
		recipients = append(recipients, b.recipients...)
	}
	require.ElementsMatch(t, []string{
		"+15551110002", "+15551110003", "+15551110004",
	}, recipients)
	require.Empty(t, te.gateway.sends)

	// One logical broadcast, one counter bump
	channel, err := te.db.FindChannel("+15552000001")
	require.NoError(t, err)
	require.Equal(t, uint64(1), channel.MessageCount.BroadcastOut)
}

func TestHotlineDisabled(t *testing.T) {
	te := newTestEnv(t, 0)
	te.createChannel(t, "+15552000002", map[string]models.Role{
		"+15551110001": models.RoleAdmin,
		"+15551110002": models.RoleSubscriber,
	})
	env := te.loadEnv(t, "+15552000002", "+15551110002")

	te.messenger.Send(context.Background(), messenger.Dispatch{
		Env:    env,
		Result: execute.Result{Command: command.CommandNone, Status: execute.StatusNoop},
		Body:   "is anyone there?",
	})

	require.Len(t, te.gateway.sends, 1)
	require.Equal(t, "+15551110002", te.gateway.sends[0].recipient)
	require.Equal(
		t,
		te.catalog.Render(language.English, i18n.KeyHotlineDisabled),
		te.gateway.sends[0].body,
	)
	// Nothing reached the admins
	require.Empty(t, te.gateway.sendsTo("+15551110001"))
}

func TestHotlineRelaysAnonymously(t *testing.T) {
	te := newTestEnv(t, 0)
	te.createChannel(t, "+15552000003", map[string]models.Role{
		"+15551110001": models.RoleAdmin,
		"+15551110003": models.RoleSubscriber,
	})
	// Second admin prefers Spanish
	_, _, err := te.db.CreateMembership(
		"+15552000003", "+15551110002", models.RoleAdmin, "es",
	)
	require.NoError(t, err)
	require.NoError(t, te.db.UpdateChannel(
		"+15552000003", map[string]any{"hotline_on": true},
	))
	env := te.loadEnv(t, "+15552000003", "+15551110003")

	te.messenger.Send(context.Background(), messenger.Dispatch{
		Env:    env,
		Result: execute.Result{Command: command.CommandNone, Status: execute.StatusNoop},
		Body:   "I need help with something",
	})

	// One relay per admin plus the receipt to the sender
	require.Len(t, te.gateway.sends, 3)
	enRelay := te.gateway.sendsTo("+15551110001")
	require.Len(t, enRelay, 1)
	require.Equal(t, "[HOTLINE #1]\nI need help with something", enRelay[0].body)
	esRelay := te.gateway.sendsTo("+15551110002")
	require.Len(t, esRelay, 1)
	require.Equal(
		t,
		te.catalog.Render(language.Spanish, i18n.KeyHotlineHeader, uint64(1))+
			"\nI need help with something",
		esRelay[0].body,
	)
	// The sender's number appears nowhere in the relayed bodies
	require.NotContains(t, enRelay[0].body, "+15551110003")

	// The receipt goes out after every relay completed
	last := te.gateway.sends[len(te.gateway.sends)-1]
	require.Equal(t, "+15551110003", last.recipient)
	require.Equal(
		t,
		te.catalog.Render(language.English, i18n.KeyHotlineReceived),
		last.body,
	)

	channel, err := te.db.FindChannel("+15552000003")
	require.NoError(t, err)
	require.Equal(t, uint64(1), channel.MessageCount.CommandIn)
}

func TestReplyAddsChannelHeaderAndFansOut(t *testing.T) {
	te := newTestEnv(t, 0)
	te.createChannel(t, "+15552000004", map[string]models.Role{
		"+15551110001": models.RoleSubscriber,
		"+15551110002": models.RoleAdmin,
	})
	env := te.loadEnv(t, "+15552000004", "+15551110001")

	te.messenger.Send(context.Background(), messenger.Dispatch{
		Env: env,
		Result: execute.Result{
			Command: command.CommandLeave,
			Status:  execute.StatusSuccess,
			Message: "You are now unsubscribed.",
			Notifications: []execute.Notification{
				{Recipient: "+15551110002", Message: "A subscriber left."},
			},
		},
	})

	senderSends := te.gateway.sendsTo("+15551110001")
	require.Len(t, senderSends, 1)
	require.Equal(t, "[night owls]\nYou are now unsubscribed.", senderSends[0].body)
	adminSends := te.gateway.sendsTo("+15551110002")
	require.Len(t, adminSends, 1)
	require.Equal(t, "A subscriber left.", adminSends[0].body)
	// LEAVE does not touch expiry timers
	require.Empty(t, te.gateway.expires)

	channel, err := te.db.FindChannel("+15552000004")
	require.NoError(t, err)
	require.Equal(t, uint64(1), channel.MessageCount.CommandIn)
}

func TestReplyHeaderVariants(t *testing.T) {
	te := newTestEnv(t, 0)
	te.createChannel(t, "+15552000005", map[string]models.Role{
		"+15551110001": models.RoleSubscriber,
	})
	env := te.loadEnv(t, "+15552000005", "+15551110001")

	// INFO replies carry no header at all
	te.messenger.Send(context.Background(), messenger.Dispatch{
		Env: env,
		Result: execute.Result{
			Command: command.CommandInfo,
			Status:  execute.StatusSuccess,
			Message: "CHANNEL INFO",
		},
	})
	require.Equal(t, "CHANNEL INFO", te.gateway.sends[0].body)

	// HELP replies carry the commands header instead of the channel name
	te.messenger.Send(context.Background(), messenger.Dispatch{
		Env: env,
		Result: execute.Result{
			Command: command.CommandHelp,
			Status:  execute.StatusSuccess,
			Message: "COMMANDS",
		},
	})
	require.Equal(
		t,
		te.catalog.Render(language.English, i18n.KeyCommandsHeader)+"\nCOMMANDS",
		te.gateway.sends[1].body,
	)
}

func TestSyncExpiryOnJoin(t *testing.T) {
	te := newTestEnv(t, 0)
	te.createChannel(t, "+15552000006", nil)
	env := te.loadEnv(t, "+15552000006", "+15551110001")

	te.messenger.Send(context.Background(), messenger.Dispatch{
		Env: env,
		Result: execute.Result{
			Command: command.CommandJoin,
			Status:  execute.StatusSuccess,
			Message: "welcome",
		},
	})

	require.Equal(t, []expireCall{{
		channel:   "+15552000006",
		recipient: "+15551110001",
		seconds:   604800,
	}}, te.gateway.expires)
}

func TestSyncExpiryOnAddCoversOnlyNewAdmin(t *testing.T) {
	te := newTestEnv(t, 0)
	te.createChannel(t, "+15552000007", map[string]models.Role{
		"+15551110001": models.RoleAdmin,
		"+15551110002": models.RoleAdmin,
	})
	env := te.loadEnv(t, "+15552000007", "+15551110001")

	// The welcome to the new admin is always the first notification
	te.messenger.Send(context.Background(), messenger.Dispatch{
		Env: env,
		Result: execute.Result{
			Command: command.CommandAdd,
			Status:  execute.StatusSuccess,
			Message: "+15551110003 added as an admin.",
			Notifications: []execute.Notification{
				{Recipient: "+15551110003", Message: "welcome"},
				{Recipient: "+15551110002", Message: "new admin added"},
			},
		},
	})

	require.Len(t, te.gateway.expires, 1)
	require.Equal(t, "+15551110003", te.gateway.expires[0].recipient)
}

func TestSyncExpirySkippedOnError(t *testing.T) {
	te := newTestEnv(t, 0)
	te.createChannel(t, "+15552000008", nil)
	env := te.loadEnv(t, "+15552000008", "+15551110001")

	te.messenger.Send(context.Background(), messenger.Dispatch{
		Env: env,
		Result: execute.Result{
			Command: command.CommandJoin,
			Status:  execute.StatusError,
			Message: "already a member",
		},
	})
	require.Empty(t, te.gateway.expires)
}
