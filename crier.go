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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/crier-io/crier/database"
	"github.com/crier-io/crier/database/hotline"
	"github.com/crier-io/crier/dispatch"
	"github.com/crier-io/crier/event"
	"github.com/crier-io/crier/execute"
	"github.com/crier-io/crier/i18n"
	"github.com/crier-io/crier/messenger"
	"github.com/crier-io/crier/registrar"
	"github.com/crier-io/crier/signald"
	"github.com/crier-io/crier/trust"
)

// Relay is the composition root: one process relaying messages for every
// channel provisioned in its store.
type Relay struct {
	config       Config
	eventBus     *event.EventBus
	db           *database.Database
	hotlineStore *hotline.Store
	catalog      *i18n.Catalog
	gateway      *signald.Client
	executor     *execute.Executor
	messenger    *messenger.Messenger
	trust        *trust.Workflow
	dispatcher   *dispatch.Dispatcher
	registrar    *registrar.Registrar
	done         chan struct{}
	shutdownOnce sync.Once
}

func New(cfg Config) (*Relay, error) {
	if cfg.socketPath == "" {
		return nil, errors.New("no daemon socket path configured")
	}
	r := &Relay{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		done:     make(chan struct{}),
	}
	return r, nil
}

// Run wires up every component, connects to the daemon, subscribes all
// provisioned channels and blocks until Stop is called.
func (r *Relay) Run() error {
	catalog, err := i18n.NewCatalog()
	if err != nil {
		return fmt.Errorf("failed to load message catalog: %w", err)
	}
	r.catalog = catalog
	db, err := database.New(&database.Config{
		DataDir: r.config.dataDir,
		Logger:  r.config.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	hotlineStore, err := hotline.New(
		hotline.WithLogger(r.config.logger),
		hotline.WithDataDir(r.config.dataDir),
		hotline.WithTTL(r.config.hotlineTTL),
		hotline.WithPromRegistry(r.config.promRegistry),
	)
	if err != nil {
		return fmt.Errorf("failed to open hotline store: %w", err)
	}
	r.hotlineStore = hotlineStore
	r.gateway = signald.NewClient(signald.ClientConfig{
		Logger:       r.config.logger,
		EventBus:     r.eventBus,
		PromRegistry: r.config.promRegistry,
		SocketPath:   r.config.socketPath,
	})
	r.executor = execute.NewExecutor(execute.ExecutorConfig{
		Logger:        r.config.logger,
		DB:            r.db,
		Hotline:       r.hotlineStore,
		Gateway:       r.gateway,
		Catalog:       r.catalog,
		PromRegistry:  r.config.promRegistry,
		SignupChannel: r.config.signupChannel,
	})
	r.messenger = messenger.NewMessenger(messenger.MessengerConfig{
		Logger:             r.config.logger,
		Gateway:            r.gateway,
		DB:                 r.db,
		Hotline:            r.hotlineStore,
		Catalog:            r.catalog,
		PromRegistry:       r.config.promRegistry,
		BroadcastBatchSize: r.config.broadcastBatchSize,
	})
	r.trust = trust.NewWorkflow(trust.WorkflowConfig{
		Logger:       r.config.logger,
		DB:           r.db,
		Gateway:      r.gateway,
		Catalog:      r.catalog,
		PromRegistry: r.config.promRegistry,
		ResendDelay:  r.config.resendDelay,
	})
	r.dispatcher = dispatch.NewDispatcher(dispatch.DispatcherConfig{
		Logger:       r.config.logger,
		EventBus:     r.eventBus,
		DB:           r.db,
		Gateway:      r.gateway,
		Executor:     r.executor,
		Messenger:    r.messenger,
		Trust:        r.trust,
		Catalog:      r.catalog,
		PromRegistry: r.config.promRegistry,
	})
	r.registrar = registrar.NewRegistrar(registrar.RegistrarConfig{
		Logger:       r.config.logger,
		EventBus:     r.eventBus,
		Gateway:      r.gateway,
		PromRegistry: r.config.promRegistry,
	})
	// Dispatch must be consuming before the gateway starts delivering
	if err := r.dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	if err := r.gateway.Start(); err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	numbers, err := r.db.ListChannelNumbers()
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}
	for _, number := range numbers {
		ctx, cancel := context.WithTimeout(
			context.Background(),
			10*time.Second,
		)
		err := r.gateway.Subscribe(ctx, number)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to subscribe channel %s: %w", number, err)
		}
	}
	r.config.logger.Info(
		"relay started",
		"component", "crier",
		"channels", len(numbers),
	)

	// Wait for shutdown signal
	<-r.done
	return nil
}

// Registrar exposes the number-registration pipeline.
func (r *Relay) Registrar() *registrar.Registrar {
	return r.registrar
}

func (r *Relay) Stop() error {
	var err error
	r.shutdownOnce.Do(func() {
		err = r.shutdown()
	})
	return err
}

func (r *Relay) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if r.config.shutdownTimeout > 0 {
		shutdownTimeout = r.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	r.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	r.config.logger.Debug("shutdown phase 1: stopping new work")

	if r.gateway != nil {
		if stopErr := r.gateway.Stop(); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("gateway shutdown: %w", stopErr))
		}
	}

	// Phase 2: Drain in-flight dispatches
	r.config.logger.Debug("shutdown phase 2: draining dispatches")

	if r.dispatcher != nil {
		stopCh := make(chan error, 1)
		go func() {
			stopCh <- r.dispatcher.Stop()
		}()
		select {
		case stopErr := <-stopCh:
			if stopErr != nil {
				err = errors.Join(
					err,
					fmt.Errorf("dispatcher shutdown: %w", stopErr),
				)
			}
		case <-ctx.Done():
			err = errors.Join(err, errors.New("dispatcher drain timed out"))
		}
	}

	// Phase 3: Flush state and close stores
	r.config.logger.Debug("shutdown phase 3: closing stores")

	if r.hotlineStore != nil {
		if closeErr := r.hotlineStore.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("hotline store close: %w", closeErr),
			)
		}
	}

	if r.db != nil {
		if closeErr := r.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Cleanup resources
	r.config.logger.Debug("shutdown phase 4: cleanup resources")

	if r.eventBus != nil {
		r.eventBus.Stop()
	}

	r.config.logger.Debug("graceful shutdown complete")
	close(r.done)
	return err
}
