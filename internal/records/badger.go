// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package records

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/mlagrosa/civika/internal/logging"
)

// Key prefixes for BadgerDB storage.
const (
	recordKeyPrefix   = "rec:"
	documentKeyPrefix = "doc:"
)

const defaultPerPage = 20

// BadgerStore implements Store on BadgerDB. Records survive restarts; the
// value log is compacted by the GC service.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger-backed store at path. An empty
// path opens an in-memory store, used by tests and dev mode.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already-open badger database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// DB exposes the underlying database for components sharing the same
// file, such as the audit trail.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

func recordKey(collection, id string) []byte {
	return []byte(recordKeyPrefix + collection + ":" + id)
}

// Find returns a page of records matching the query, newest first.
func (s *BadgerStore) Find(ctx context.Context, collection string, q Query) (*Result, error) {
	if !KnownCollection(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	var matches []*Envelope
	prefix := []byte(recordKeyPrefix + collection + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var env Envelope
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &env)
			})
			if err != nil {
				return fmt.Errorf("unmarshal record: %w", err)
			}
			if envelopeMatches(&env, q) {
				matches = append(matches, &env)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	return paginate(matches, q), nil
}

// envelopeMatches applies the query's filter and search to one record.
func envelopeMatches(env *Envelope, q Query) bool {
	if len(q.Filter) == 0 && q.Search == "" {
		return true
	}

	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return false
	}

	for field, want := range q.Filter {
		got, ok := payload[field]
		if !ok || fmt.Sprintf("%v", got) != want {
			return false
		}
	}

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		found := false
		for _, v := range payload {
			if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func paginate(matches []*Envelope, q Query) *Result {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * perPage
	if start > len(matches) {
		start = len(matches)
	}
	end := start + perPage
	if end > len(matches) {
		end = len(matches)
	}

	return &Result{
		Items:   matches[start:end],
		Total:   len(matches),
		Page:    page,
		PerPage: perPage,
	}
}

// FindByID returns a single record.
func (s *BadgerStore) FindByID(ctx context.Context, collection, id string) (*Envelope, error) {
	if !KnownCollection(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	var env Envelope
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get record: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &env)
		})
	})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// Create stores a new record.
func (s *BadgerStore) Create(ctx context.Context, env *Envelope) error {
	if !KnownCollection(env.Collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, env.Collection)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(env.Collection, env.ID), data)
	})
}

// Update replaces an existing record.
func (s *BadgerStore) Update(ctx context.Context, env *Envelope) error {
	if !KnownCollection(env.Collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, env.Collection)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		key := recordKey(env.Collection, env.ID)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return fmt.Errorf("get record: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Delete removes a record and returns the removed envelope.
func (s *BadgerStore) Delete(ctx context.Context, collection, id string) (*Envelope, error) {
	env, err := s.FindByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(collection, id))
	})
	if err != nil {
		return nil, fmt.Errorf("delete record: %w", err)
	}
	return env, nil
}

// FindGlobal searches every collection for the term.
func (s *BadgerStore) FindGlobal(ctx context.Context, term string, limit int) ([]*Envelope, error) {
	if limit <= 0 {
		limit = defaultPerPage
	}

	var matches []*Envelope
	q := Query{Search: term}
	prefix := []byte(recordKeyPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true})
		defer it.Close()

		for it.Rewind(); it.Valid() && len(matches) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var env Envelope
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &env)
			})
			if err != nil {
				return fmt.Errorf("unmarshal record: %w", err)
			}
			if envelopeMatches(&env, q) {
				matches = append(matches, &env)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// PutDocument stores supporting-file content under the document ID.
func (s *BadgerStore) PutDocument(ctx context.Context, doc Document, content []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(documentKeyPrefix+doc.ID), bytes.Clone(content))
	})
}

// GetDocument returns supporting-file content.
func (s *BadgerStore) GetDocument(ctx context.Context, id string) ([]byte, error) {
	var content []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(documentKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// DeleteDocument removes supporting-file content.
func (s *BadgerStore) DeleteDocument(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(documentKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// GCService runs badger value-log garbage collection on an interval, as a
// supervised service.
type GCService struct {
	store    *BadgerStore
	interval time.Duration
}

// NewGCService creates a GC service for the store.
func NewGCService(store *BadgerStore, interval time.Duration) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GCService{store: store, interval: interval}
}

// Serve implements suture.Service.
func (g *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// badger returns ErrNoRewrite when there is nothing to do.
			err := g.store.db.RunValueLogGC(0.5)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logging.Warn().Err(err).Msg("badger value log GC failed")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (g *GCService) String() string {
	return "records-gc"
}
