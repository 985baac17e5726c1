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

package crier

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry       prometheus.Registerer
	logger             *slog.Logger
	dataDir            string
	socketPath         string
	signupChannel      string
	broadcastBatchSize int
	resendDelay        time.Duration
	hotlineTTL         time.Duration
	shutdownTimeout    time.Duration
}

// ConfigOptionFunc is a type that represents functions that modify the Relay config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new crier config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDataDir specifies the persistent data directory to use. The default is to store everything in memory
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithSocketPath specifies the unix socket path of the messaging daemon
func WithSocketPath(socketPath string) ConfigOptionFunc {
	return func(c *Config) {
		c.socketPath = socketPath
	}
}

// WithSignupChannel designates a provisioning channel on which only admins may act
func WithSignupChannel(phoneNumber string) ConfigOptionFunc {
	return func(c *Config) {
		c.signupChannel = phoneNumber
	}
}

// WithPrometheusRegistry specifies the prometheus registry to use for metrics. Metrics are disabled by default
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithBroadcastBatchSize specifies the maximum recipients per broadcast request
func WithBroadcastBatchSize(size int) ConfigOptionFunc {
	return func(c *Config) {
		c.broadcastBatchSize = size
	}
}

// WithResendDelay specifies the delay between re-trusting a recipient and resending their message
func WithResendDelay(delay time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.resendDelay = delay
	}
}

// WithHotlineTTL specifies how long an idle hotline pseudonym assignment lives
func WithHotlineTTL(ttl time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.hotlineTTL = ttl
	}
}

// WithShutdownTimeout specifies how long graceful shutdown may take
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
