// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

// Package audit records who changed which civic record. Mutations publish
// events to an in-process pub/sub topic; a supervised consumer persists
// them so the trail survives restarts and the admin audit page can read
// them back newest first.
package audit

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/mlagrosa/civika/internal/logging"
)

// Topic is the pub/sub topic audit events travel on.
const Topic = "civika.audit"

// Actions recorded in the trail.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
)

// Event is one audited mutation.
type Event struct {
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Collection string    `json:"collection,omitempty"`
	RecordID   string    `json:"record_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher is the half of the trail mutations talk to.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus is the in-process pub/sub channel connecting publishers to the
// persisting consumer.
type Bus struct {
	ch *gochannel.GoChannel
}

// NewBus creates the audit pub/sub channel.
func NewBus() *Bus {
	// Persistent keeps events published before the recorder subscribes,
	// covering the startup window.
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
		Persistent:          true,
	}, newWatermillLogger())
	return &Bus{ch: ch}
}

// Publish serializes the event onto the audit topic. The event timestamp
// is stamped here when the caller left it zero.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return b.ch.Publish(Topic, msg)
}

// Subscribe returns the stream of audit messages.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.ch.Subscribe(ctx, Topic)
}

// Close shuts the channel down.
func (b *Bus) Close() error {
	return b.ch.Close()
}

// watermillLogger routes watermill's internal logging to zerolog.
type watermillLogger struct{}

func newWatermillLogger() watermill.LoggerAdapter {
	return watermillLogger{}
}

func (watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	logging.Error().Err(err).Fields(map[string]any(fields)).Msg(msg)
}

func (watermillLogger) Info(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (watermillLogger) Debug(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (watermillLogger) Trace(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{}
}
