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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "crier.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	SocketPath         string `yaml:"socketPath"                                       split_words:"true"`
	DataDir            string `yaml:"dataDir"                                          split_words:"true"`
	SignupChannel      string `yaml:"signupChannel"      envconfig:"CRIER_SIGNUP_CHANNEL"`
	BindAddr           string `yaml:"bindAddr"                                         split_words:"true"`
	ShutdownTimeout    string `yaml:"shutdownTimeout"                                  split_words:"true"`
	ResendDelay        string `yaml:"resendDelay"                                      split_words:"true"`
	HotlineTTL         string `yaml:"hotlineTTL"         envconfig:"CRIER_HOTLINE_TTL"`
	MetricsPort        uint   `yaml:"metricsPort"                                      split_words:"true"`
	BroadcastBatchSize int    `yaml:"broadcastBatchSize" envconfig:"CRIER_BROADCAST_BATCH_SIZE"`
}

var globalConfig = &Config{
	SocketPath:         "/var/run/signald/signald.sock",
	DataDir:            ".crier",
	SignupChannel:      "",
	BindAddr:           "0.0.0.0",
	MetricsPort:        12799,
	BroadcastBatchSize: 0,
	ResendDelay:        "",
	HotlineTTL:         "",
	ShutdownTimeout:    DefaultShutdownTimeout,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.crier/crier.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".crier", "crier.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/crier/crier.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/crier/crier.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("crier", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
