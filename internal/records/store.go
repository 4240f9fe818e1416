// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package records

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// Store errors.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownCollection is returned for collection names nobody registered.
	ErrUnknownCollection = errors.New("unknown collection")
)

// Envelope wraps one stored record: identity, collection, the typed payload
// as raw JSON, attached supporting documents and timestamps.
type Envelope struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
	Documents  []Document      `json:"documents,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Decode unmarshals the envelope payload into out.
func (e *Envelope) Decode(out any) error {
	return json.Unmarshal(e.Data, out)
}

// Query selects and pages records within a collection.
type Query struct {
	// Filter matches payload fields by exact string value.
	Filter map[string]string

	// Search is a case-insensitive substring match across the payload's
	// string fields.
	Search string

	// Page is 1-based; PerPage caps the page size. Zero values mean
	// "first page" and "store default".
	Page    int
	PerPage int
}

// Result is one page of records plus the total match count.
type Result struct {
	Items   []*Envelope `json:"items"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// Store is the persistence contract for civic records. Implementations must
// be safe for concurrent use.
type Store interface {
	// Find returns a page of records matching the query, newest first.
	Find(ctx context.Context, collection string, q Query) (*Result, error)

	// FindByID returns a single record. ErrNotFound when absent.
	FindByID(ctx context.Context, collection, id string) (*Envelope, error)

	// Create stores a new record.
	Create(ctx context.Context, env *Envelope) error

	// Update replaces an existing record. ErrNotFound when absent.
	Update(ctx context.Context, env *Envelope) error

	// Delete removes a record and returns it. ErrNotFound when absent.
	Delete(ctx context.Context, collection, id string) (*Envelope, error)

	// FindGlobal searches every collection for the term, capped at limit.
	FindGlobal(ctx context.Context, term string, limit int) ([]*Envelope, error)

	// PutDocument stores supporting-file content under the document ID.
	PutDocument(ctx context.Context, doc Document, content []byte) error

	// GetDocument returns supporting-file content. ErrNotFound when absent.
	GetDocument(ctx context.Context, id string) ([]byte, error)

	// DeleteDocument removes supporting-file content. Deleting an absent
	// document is not an error.
	DeleteDocument(ctx context.Context, id string) error

	// Close releases the backing resources.
	Close() error
}
