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

package hotline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pseudonym assignments expire after this much idle time; a sender who
// has not written to the hotline for this long gets a fresh number.
const DefaultAssignmentTTL = 24 * time.Hour

const maxConflictRetries = 5

var ErrUnknownID = errors.New("unknown hotline id")

// Store maps hotline senders to stable per-channel pseudonymous ids and
// back. Assignments are stored in badger with a TTL so that identifiers
// rotate naturally instead of accumulating forever.
type Store struct {
	db           *badger.DB
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	dataDir      string
	ttl          time.Duration

	assignedTotal prometheus.Counter
}

type StoreOptionFunc func(*Store)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) StoreOptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) StoreOptionFunc {
	return func(s *Store) {
		s.promRegistry = registry
	}
}

// WithDataDir specifies the data directory to use for storage. An empty
// data directory selects an in-memory store.
func WithDataDir(dataDir string) StoreOptionFunc {
	return func(s *Store) {
		s.dataDir = dataDir
	}
}

// WithTTL specifies how long an idle pseudonym assignment lives
func WithTTL(ttl time.Duration) StoreOptionFunc {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a new hotline id store
func New(opts ...StoreOptionFunc) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl <= 0 {
		s.ttl = DefaultAssignmentTTL
	}
	if s.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var db *badger.DB
	var err error
	if s.dataDir == "" {
		badgerOpts := badger.DefaultOptions("").
			WithLogger(newBadgerLogger(s.logger)).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true)
		db, err = badger.Open(badgerOpts)
		if err != nil {
			return nil, err
		}
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(s.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		hotlineDir := filepath.Join(s.dataDir, "hotline")
		badgerOpts := badger.DefaultOptions(hotlineDir).
			WithLogger(newBadgerLogger(s.logger)).
			WithLoggingLevel(badger.WARNING)
		db, err = badger.Open(badgerOpts)
		if err != nil {
			return nil, err
		}
	}
	s.db = db
	if s.promRegistry != nil {
		s.registerMetrics()
	}
	return s, nil
}

func (s *Store) registerMetrics() {
	promautoFactory := promauto.With(s.promRegistry)
	s.assignedTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "crier_hotline_ids_assigned_total",
		Help: "total hotline pseudonyms assigned",
	})
}

// Key layout:
//
//	c/<channel>           next id counter (no TTL)
//	m/<channel>/<member>  member phone -> assigned id
//	i/<channel>/<id>      assigned id -> member phone
func memberKey(channel, member string) []byte {
	return []byte("m/" + channel + "/" + member)
}

func idKey(channel string, id uint64) []byte {
	return []byte("i/" + channel + "/" + strconv.FormatUint(id, 10))
}

func counterKey(channel string) []byte {
	return []byte("c/" + channel)
}

// FindOrCreate returns the pseudonymous id for a hotline sender on a
// channel, assigning the next id from the per-channel counter when none
// exists. Looking up an id refreshes its TTL in both directions so active
// conversations keep a stable number.
func (s *Store) FindOrCreate(channel, member string) (uint64, error) {
	var assigned uint64
	var created bool
	update := func(txn *badger.Txn) error {
		created = false
		item, err := txn.Get(memberKey(channel, member))
		if err == nil {
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			assigned, err = strconv.ParseUint(string(val), 10, 64)
			if err != nil {
				return err
			}
			return s.refresh(txn, channel, member, assigned)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		// Allocate the next id for this channel
		var next uint64 = 1
		cItem, err := txn.Get(counterKey(channel))
		if err == nil {
			val, err := cItem.ValueCopy(nil)
			if err != nil {
				return err
			}
			cur, err := strconv.ParseUint(string(val), 10, 64)
			if err != nil {
				return err
			}
			next = cur + 1
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(
			counterKey(channel),
			[]byte(strconv.FormatUint(next, 10)),
		); err != nil {
			return err
		}
		assigned = next
		created = true
		return s.refresh(txn, channel, member, assigned)
	}
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(update)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	if created && s.assignedTotal != nil {
		s.assignedTotal.Inc()
	}
	return assigned, nil
}

func (s *Store) refresh(
	txn *badger.Txn,
	channel, member string,
	id uint64,
) error {
	entry := badger.NewEntry(
		memberKey(channel, member),
		[]byte(strconv.FormatUint(id, 10)),
	).WithTTL(s.ttl)
	if err := txn.SetEntry(entry); err != nil {
		return err
	}
	entry = badger.NewEntry(
		idKey(channel, id),
		[]byte(member),
	).WithTTL(s.ttl)
	return txn.SetEntry(entry)
}

// Resolve maps a pseudonymous id back to the sender's phone number.
// Returns ErrUnknownID for ids that were never assigned or have expired.
func (s *Store) Resolve(channel string, id uint64) (string, error) {
	var member string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(channel, id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrUnknownID
			}
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		member = string(val)
		return nil
	})
	if err != nil {
		return "", err
	}
	return member, nil
}

// Close gets the database handle from our Store and closes it
func (s *Store) Close() error {
	return s.db.Close()
}
