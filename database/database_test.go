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

package database_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crier-io/crier/database"
	"github.com/crier-io/crier/database/models"
)

// The in-memory sqlite store uses a shared cache, so every test uses its
// own channel number to stay independent.

func testDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	return db
}

func TestChannelCreateAndFind(t *testing.T) {
	db := testDatabase(t)
	channel := &models.Channel{
		PhoneNumber: "+15550000001",
		Name:        "night owls",
		Description: "a channel for night owls",
	}
	require.NoError(t, db.CreateChannel(channel))

	found, err := db.FindChannel("+15550000001")
	require.NoError(t, err)
	require.Equal(t, "night owls", found.Name)
	require.Equal(t, "+15550000001", found.MessageCount.ChannelPhoneNumber)

	_, err = db.FindChannel("+15559999999")
	require.ErrorIs(t, err, database.ErrChannelNotFound)

	numbers, err := db.ListChannelNumbers()
	require.NoError(t, err)
	require.Contains(t, numbers, "+15550000001")
}

func TestChannelUpdate(t *testing.T) {
	db := testDatabase(t)
	channel := &models.Channel{
		PhoneNumber: "+15550000002",
		Name:        "old name",
	}
	require.NoError(t, db.CreateChannel(channel))
	require.NoError(t, db.UpdateChannel(
		"+15550000002",
		map[string]any{"name": "new name", "vouching_on": true, "vouch_level": 3},
	))
	found, err := db.FindChannel("+15550000002")
	require.NoError(t, err)
	require.Equal(t, "new name", found.Name)
	require.True(t, found.VouchingOn)
	require.Equal(t, 3, found.VouchLevel)
}

func TestMembershipLifecycle(t *testing.T) {
	db := testDatabase(t)
	channel := &models.Channel{PhoneNumber: "+15550000003", Name: "test"}
	require.NoError(t, db.CreateChannel(channel))

	role, err := db.ResolveRole("+15550000003", "+15551110001")
	require.NoError(t, err)
	require.Equal(t, models.RoleNone, role)

	_, created, err := db.CreateMembership(
		"+15550000003", "+15551110001", models.RoleSubscriber, "en",
	)
	require.NoError(t, err)
	require.True(t, created)

	// Find-or-create: a second create for the same pair is a no-op that
	// preserves the original role
	_, created, err = db.CreateMembership(
		"+15550000003", "+15551110001", models.RoleAdmin, "en",
	)
	require.NoError(t, err)
	require.False(t, created)
	role, err = db.ResolveRole("+15550000003", "+15551110001")
	require.NoError(t, err)
	require.Equal(t, models.RoleSubscriber, role)

	require.NoError(t, db.UpdateMemberLanguage("+15550000003", "+15551110001", "es"))
	membership, err := db.FindMembership("+15550000003", "+15551110001")
	require.NoError(t, err)
	require.Equal(t, "es", membership.Language)

	existed, err := db.DestroyMembership("+15550000003", "+15551110001")
	require.NoError(t, err)
	require.True(t, existed)
	existed, err = db.DestroyMembership("+15550000003", "+15551110001")
	require.NoError(t, err)
	require.False(t, existed)

	_, err = db.FindMembership("+15550000003", "+15551110001")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestInviteLifecycle(t *testing.T) {
	db := testDatabase(t)
	channel := &models.Channel{PhoneNumber: "+15550000004", Name: "test"}
	require.NoError(t, db.CreateChannel(channel))

	created, err := db.IssueInvite("+15550000004", "+15551110001", "+15551110002")
	require.NoError(t, err)
	require.True(t, created)

	// Re-issuing the same invite creates no duplicate row
	created, err = db.IssueInvite("+15550000004", "+15551110001", "+15551110002")
	require.NoError(t, err)
	require.False(t, created)

	// A second inviter counts as a second vouch
	created, err = db.IssueInvite("+15550000004", "+15551110003", "+15551110002")
	require.NoError(t, err)
	require.True(t, created)

	count, err := db.CountInvites("+15550000004", "+15551110002")
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	require.NoError(t, db.AcceptInvite("+15550000004", "+15551110002", "en"))
	role, err := db.ResolveRole("+15550000004", "+15551110002")
	require.NoError(t, err)
	require.Equal(t, models.RoleSubscriber, role)
	count, err = db.CountInvites("+15550000004", "+15551110002")
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func TestDeclineInvite(t *testing.T) {
	db := testDatabase(t)
	channel := &models.Channel{PhoneNumber: "+15550000005", Name: "test"}
	require.NoError(t, db.CreateChannel(channel))
	_, err := db.IssueInvite("+15550000005", "+15551110001", "+15551110002")
	require.NoError(t, err)
	require.NoError(t, db.DeclineInvite("+15550000005", "+15551110002"))
	count, err := db.CountInvites("+15550000005", "+15551110002")
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
	// No membership was created
	role, err := db.ResolveRole("+15550000005", "+15551110002")
	require.NoError(t, err)
	require.Equal(t, models.RoleNone, role)
}

func TestDeauthorizationLifecycle(t *testing.T) {
	db := testDatabase(t)
	channel := &models.Channel{PhoneNumber: "+15550000006", Name: "test"}
	require.NoError(t, db.CreateChannel(channel))

	require.NoError(t, db.CreateDeauthorization(
		"+15550000006", "+15551110001", "05 aa bb",
	))
	// Repeated identity errors must not create duplicate rows
	require.NoError(t, db.CreateDeauthorization(
		"+15550000006", "+15551110001", "05 cc dd",
	))

	deauth, err := db.FindDeauthorization("+15550000006", "+15551110001")
	require.NoError(t, err)
	require.Equal(t, "05 aa bb", deauth.Fingerprint)

	found, err := db.FindChannel("+15550000006")
	require.NoError(t, err)
	require.Len(t, found.Deauthorizations, 1)

	require.NoError(t, db.DeleteDeauthorization("+15550000006", "+15551110001"))
	_, err = db.FindDeauthorization("+15550000006", "+15551110001")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestMessageCounters(t *testing.T) {
	db := testDatabase(t)
	channel := &models.Channel{PhoneNumber: "+15550000007", Name: "test"}
	require.NoError(t, db.CreateChannel(channel))

	require.NoError(t, db.IncrementBroadcastCount("+15550000007"))
	require.NoError(t, db.IncrementBroadcastCount("+15550000007"))
	require.NoError(t, db.IncrementCommandCount("+15550000007"))

	found, err := db.FindChannel("+15550000007")
	require.NoError(t, err)
	require.Equal(t, uint64(2), found.MessageCount.BroadcastOut)
	require.Equal(t, uint64(1), found.MessageCount.CommandIn)
	require.Equal(t, uint64(1), found.MessageCount.CommandOut)
}

func TestChannelRoleHelpers(t *testing.T) {
	db := testDatabase(t)
	channel := &models.Channel{PhoneNumber: "+15550000008", Name: "test"}
	require.NoError(t, db.CreateChannel(channel))
	_, _, err := db.CreateMembership(
		"+15550000008", "+15551110001", models.RoleAdmin, "en",
	)
	require.NoError(t, err)
	_, _, err = db.CreateMembership(
		"+15550000008", "+15551110002", models.RoleSubscriber, "es",
	)
	require.NoError(t, err)

	found, err := db.FindChannel("+15550000008")
	require.NoError(t, err)
	require.Len(t, found.Admins(), 1)
	require.Len(t, found.Subscribers(), 1)
	require.Equal(t, models.RoleAdmin, found.Role("+15551110001"))
	require.Equal(t, models.RoleSubscriber, found.Role("+15551110002"))
	require.Equal(t, models.RoleNone, found.Role("+15551110003"))
}
