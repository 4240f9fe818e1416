// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mlagrosa/civika/internal/logging"
)

// auditKeyPrefix namespaces trail entries in the shared database.
const auditKeyPrefix = "audit:"

// Trail persists audit events and reads them back newest first.
type Trail struct {
	db *badger.DB
}

// NewTrail wraps the shared database.
func NewTrail(db *badger.DB) *Trail {
	return &Trail{db: db}
}

// auditKey orders entries lexically by time. The uuid suffix keeps two
// events in the same nanosecond from colliding.
func auditKey(at time.Time) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", auditKeyPrefix, at.UnixNano(), uuid.NewString()))
}

// Append persists one event.
func (t *Trail) Append(ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(ev.At), payload)
	})
}

// Recent returns up to n events, newest first.
func (t *Trail) Recent(ctx context.Context, n int) ([]Event, error) {
	if n <= 0 {
		n = 50
	}

	var events []Event
	prefix := []byte(auditKeyPrefix)

	err := t.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			Prefix:         prefix,
			Reverse:        true,
			PrefetchValues: true,
		})
		defer it.Close()

		// Reverse iteration starts past the end of the prefix range.
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.Valid() && len(events) < n; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var ev Event
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			})
			if err != nil {
				return fmt.Errorf("unmarshal audit event: %w", err)
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Recorder is the supervised consumer: it drains the bus and appends each
// event to the trail.
type Recorder struct {
	bus   *Bus
	trail *Trail
}

// NewRecorder wires the bus to the trail.
func NewRecorder(bus *Bus, trail *Trail) *Recorder {
	return &Recorder{bus: bus, trail: trail}
}

// Serve implements suture.Service.
func (r *Recorder) Serve(ctx context.Context) error {
	msgs, err := r.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe audit topic: %w", err)
	}

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return ctx.Err()
			}
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping unreadable audit event")
				msg.Ack()
				continue
			}
			if err := r.trail.Append(ev); err != nil {
				// Nack so the bus redelivers after the trail recovers.
				logging.Error().Err(err).Msg("persist audit event")
				msg.Nack()
				continue
			}
			msg.Ack()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (r *Recorder) String() string {
	return "audit-recorder"
}
