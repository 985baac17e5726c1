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

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/crier-io/crier/event"
	"github.com/crier-io/crier/internal/config"
	"github.com/crier-io/crier/registrar"
	"github.com/crier-io/crier/signald"
	"github.com/spf13/cobra"
)

func registerRun(cfg *config.Config, numbers []string) {
	logger := commonRun()

	eventBus := event.NewEventBus(nil, logger)
	gateway := signald.NewClient(signald.ClientConfig{
		Logger:     logger,
		EventBus:   eventBus,
		SocketPath: cfg.SocketPath,
	})
	if err := gateway.Start(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := gateway.Stop(); err != nil {
			logger.Error("gateway shutdown error", "error", err)
		}
		eventBus.Stop()
	}()

	r := registrar.NewRegistrar(registrar.RegistrarConfig{
		Logger:   logger,
		EventBus: eventBus,
		Gateway:  gateway,
	})

	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	failed := 0
	for _, result := range r.RegisterNumbers(signalCtx, numbers) {
		if result.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Error(
			"some registrations failed",
			"failed", failed,
			"total", len(numbers),
		)
		os.Exit(1)
	}
}

func registerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register [flags] number [number ...]",
		Short: "Register phone numbers with the messaging network",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			registerRun(cfg, args)
		},
	}
	return cmd
}
