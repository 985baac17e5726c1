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

// Package registrar registers newly purchased phone numbers with the
// messaging network. Registration is deliberately serialized and
// throttled; the batch size and delays are upstream abuse-control
// requirements, not tunables for throughput.
package registrar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/crier-io/crier/event"
	"github.com/crier-io/crier/signald"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DefaultBatchSize       = 5
	DefaultInterBatchDelay = 2 * time.Minute
	DefaultInterItemDelay  = 2 * time.Second
	DefaultVerifyTimeout   = 30 * time.Second
)

var (
	ErrVerificationTimeout = errors.New("verification timed out")
	ErrVerificationFailed  = errors.New("verification failed")
)

type Registrar struct {
	config  RegistrarConfig
	metrics *registrarMetrics
}

// Gateway is the subset of daemon operations registration needs.
type Gateway interface {
	Register(ctx context.Context, number string) error
}

type RegistrarConfig struct {
	Logger          *slog.Logger
	EventBus        *event.EventBus
	Gateway         Gateway
	PromRegistry    prometheus.Registerer
	BatchSize       int
	InterBatchDelay time.Duration
	InterItemDelay  time.Duration
	VerifyTimeout   time.Duration
}

type registrarMetrics struct {
	registrationsTotal *prometheus.CounterVec
}

// Result reports the outcome of registering a single number.
type Result struct {
	Number string
	Err    error
}

func NewRegistrar(cfg RegistrarConfig) *Registrar {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "registrar")
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.InterBatchDelay <= 0 {
		cfg.InterBatchDelay = DefaultInterBatchDelay
	}
	if cfg.InterItemDelay <= 0 {
		cfg.InterItemDelay = DefaultInterItemDelay
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = DefaultVerifyTimeout
	}
	r := &Registrar{
		config: cfg,
	}
	if cfg.PromRegistry != nil {
		promautoFactory := promauto.With(cfg.PromRegistry)
		r.metrics = &registrarMetrics{
			registrationsTotal: promautoFactory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "crier_registrations_total",
					Help: "number registrations by result",
				},
				[]string{"result"},
			),
		}
	}
	return r
}

// RegisterNumbers registers each number in order, honoring the mandatory
// inter-item and inter-batch delays. A number's failure does not stop the
// rest. Returns one result per input number.
func (r *Registrar) RegisterNumbers(
	ctx context.Context,
	numbers []string,
) []Result {
	results := make([]Result, 0, len(numbers))
	for i, number := range numbers {
		if i > 0 {
			delay := r.config.InterItemDelay
			if i%r.config.BatchSize == 0 {
				delay = r.config.InterBatchDelay
			}
			select {
			case <-ctx.Done():
				for _, rest := range numbers[i:] {
					results = append(results, Result{
						Number: rest,
						Err:    ctx.Err(),
					})
				}
				return results
			case <-time.After(delay):
			}
		}
		err := r.registerOne(ctx, number)
		if err != nil {
			r.config.Logger.Error(
				"registration failed",
				"number", number,
				"error", err,
			)
		} else {
			r.config.Logger.Info(
				"number registered",
				"number", number,
			)
		}
		r.count(err)
		results = append(results, Result{Number: number, Err: err})
	}
	return results
}

// registerOne issues a register request and waits a bounded time for the
// daemon's verification envelope.
func (r *Registrar) registerOne(ctx context.Context, number string) error {
	subID, events := r.config.EventBus.Subscribe(signald.InboundEventType)
	defer r.config.EventBus.Unsubscribe(signald.InboundEventType, subID)
	if err := r.config.Gateway.Register(ctx, number); err != nil {
		return err
	}
	timeout := time.NewTimer(r.config.VerifyTimeout)
	defer timeout.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return ErrVerificationTimeout
		case evt, ok := <-events:
			if !ok {
				return ErrVerificationTimeout
			}
			inbound, ok := evt.Data.(signald.InboundEvent)
			if !ok || inbound.Envelope.Account != number {
				continue
			}
			switch inbound.Envelope.Type {
			case signald.EnvelopeTypeVerificationSucceeded:
				return nil
			case signald.EnvelopeTypeVerificationFailed:
				return ErrVerificationFailed
			}
		}
	}
}

func (r *Registrar) count(err error) {
	if r.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.metrics.registrationsTotal.WithLabelValues(result).Inc()
}
