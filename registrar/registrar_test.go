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

package registrar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/crier-io/crier/event"
	"github.com/crier-io/crier/registrar"
	"github.com/crier-io/crier/signald"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGateway answers each register request by publishing the configured
// verification envelopes on the bus, the way the daemon reader would.
// The subscriber channel is buffered, so publishing inline is safe.
type fakeGateway struct {
	bus       *event.EventBus
	envelopes func(number string) []signald.Envelope
	err       error
	calls     []string
}

func (f *fakeGateway) Register(_ context.Context, number string) error {
	f.calls = append(f.calls, number)
	if f.err != nil {
		return f.err
	}
	if f.envelopes == nil {
		return nil
	}
	for _, envelope := range f.envelopes(number) {
		f.bus.Publish(
			signald.InboundEventType,
			event.NewEvent(
				signald.InboundEventType,
				signald.InboundEvent{Envelope: envelope},
			),
		)
	}
	return nil
}

func newTestRegistrar(
	t *testing.T,
	gateway *fakeGateway,
	verifyTimeout time.Duration,
) *registrar.Registrar {
	t.Helper()
	return registrar.NewRegistrar(registrar.RegistrarConfig{
		EventBus:       gateway.bus,
		Gateway:        gateway,
		BatchSize:      2,
		InterItemDelay: time.Millisecond,
		VerifyTimeout:  verifyTimeout,
	})
}

func TestRegisterNumbersSucceeds(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	gateway := &fakeGateway{
		bus: bus,
		envelopes: func(number string) []signald.Envelope {
			return []signald.Envelope{{
				Type:    signald.EnvelopeTypeVerificationSucceeded,
				Account: number,
			}}
		},
	}
	r := newTestRegistrar(t, gateway, time.Second)

	results := r.RegisterNumbers(
		context.Background(),
		[]string{"+15554000001", "+15554000002"},
	)
	require.Len(t, results, 2)
	for i, number := range []string{"+15554000001", "+15554000002"} {
		require.Equal(t, number, results[i].Number)
		require.NoError(t, results[i].Err)
	}
	require.Equal(t, []string{"+15554000001", "+15554000002"}, gateway.calls)
}

func TestRegisterVerificationFailed(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	gateway := &fakeGateway{
		bus: bus,
		envelopes: func(number string) []signald.Envelope {
			return []signald.Envelope{{
				Type:    signald.EnvelopeTypeVerificationFailed,
				Account: number,
			}}
		},
	}
	r := newTestRegistrar(t, gateway, time.Second)

	results := r.RegisterNumbers(context.Background(), []string{"+15554000003"})
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, registrar.ErrVerificationFailed)
}

func TestRegisterVerificationTimesOut(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	gateway := &fakeGateway{bus: bus}
	r := newTestRegistrar(t, gateway, 10*time.Millisecond)

	results := r.RegisterNumbers(context.Background(), []string{"+15554000004"})
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, registrar.ErrVerificationTimeout)
}

func TestRegisterIgnoresOtherAccounts(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	gateway := &fakeGateway{
		bus: bus,
		envelopes: func(number string) []signald.Envelope {
			// A failure for an unrelated account arrives first and must
			// not be attributed to this registration
			return []signald.Envelope{
				{
					Type:    signald.EnvelopeTypeVerificationFailed,
					Account: "+15559999999",
				},
				{
					Type:    signald.EnvelopeTypeVerificationSucceeded,
					Account: number,
				},
			}
		},
	}
	r := newTestRegistrar(t, gateway, time.Second)

	results := r.RegisterNumbers(context.Background(), []string{"+15554000005"})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
}

func TestRegisterGatewayError(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	gatewayErr := errors.New("daemon unavailable")
	gateway := &fakeGateway{bus: bus, err: gatewayErr}
	r := newTestRegistrar(t, gateway, time.Second)

	results := r.RegisterNumbers(context.Background(), []string{"+15554000006"})
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, gatewayErr)
}

func TestRegisterNumbersCancellation(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	// The deadline expires during the inter-item delay, after the first
	// number has already completed
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	gateway := &fakeGateway{
		bus: bus,
		envelopes: func(number string) []signald.Envelope {
			return []signald.Envelope{{
				Type:    signald.EnvelopeTypeVerificationSucceeded,
				Account: number,
			}}
		},
	}
	r := registrar.NewRegistrar(registrar.RegistrarConfig{
		EventBus:       bus,
		Gateway:        gateway,
		InterItemDelay: time.Minute,
		VerifyTimeout:  time.Second,
	})

	results := r.RegisterNumbers(
		ctx,
		[]string{"+15554000007", "+15554000008", "+15554000009"},
	)
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, context.DeadlineExceeded)
	require.ErrorIs(t, results[2].Err, context.DeadlineExceeded)
	// Only the first number ever reached the daemon
	require.Equal(t, []string{"+15554000007"}, gateway.calls)
}
