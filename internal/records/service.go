// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlagrosa/civika/internal/audit"
	"github.com/mlagrosa/civika/internal/logging"
)

// Service errors.
var (
	// ErrInvalidCredentials is returned for a bad username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation wraps payload validation failures.
	ErrValidation = errors.New("validation failed")
)

// Service layers payload validation, the supporting-document lifecycle and
// audit publication over the raw store.
type Service struct {
	store    Store
	validate *validator.Validate
	events   audit.Publisher
}

// NewService creates the record service. The publisher may be nil when no
// audit trail is wired, e.g. in tests.
func NewService(store Store, events audit.Publisher) *Service {
	return &Service{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		events:   events,
	}
}

// validatePayload decodes the raw payload into the collection's typed
// model and runs struct validation on it.
func (s *Service) validatePayload(collection string, data json.RawMessage) error {
	var model any
	switch collection {
	case CollectionResidents:
		model = &Resident{}
	case CollectionHouseholds:
		model = &Household{}
	case CollectionBusinesses:
		model = &Business{}
	case CollectionPermits:
		model = &Permit{}
	case CollectionIncidents:
		model = &Incident{}
	case CollectionStaff:
		model = &Staff{}
	case CollectionPosts:
		model = &Post{}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	if err := json.Unmarshal(data, model); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.validate.Struct(model); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// List returns one page of a collection.
func (s *Service) List(ctx context.Context, collection string, q Query) (*Result, error) {
	return s.store.Find(ctx, collection, q)
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, collection, id string) (*Envelope, error) {
	return s.store.FindByID(ctx, collection, id)
}

// Search runs a cross-collection search.
func (s *Service) Search(ctx context.Context, term string, limit int) ([]*Envelope, error) {
	return s.store.FindGlobal(ctx, term, limit)
}

// Create validates the payload, stores the record with its supporting
// documents and publishes an audit event.
func (s *Service) Create(ctx context.Context, actor, collection string, payload json.RawMessage, uploads []DocumentUpload) (*Envelope, error) {
	if err := s.validatePayload(collection, payload); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	env := &Envelope{
		ID:         uuid.NewString(),
		Collection: collection,
		Data:       payload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	docs, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}
	env.Documents = docs

	if err := s.store.Create(ctx, env); err != nil {
		s.discardDocuments(ctx, docs)
		return nil, err
	}

	s.publish(ctx, actor, audit.ActionCreate, collection, env.ID)
	return env, nil
}

// Update validates the payload and replaces the record. New uploads are
// appended to the record's existing documents.
func (s *Service) Update(ctx context.Context, actor, collection, id string, payload json.RawMessage, uploads []DocumentUpload) (*Envelope, error) {
	if err := s.validatePayload(collection, payload); err != nil {
		return nil, err
	}

	env, err := s.store.FindByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	env.Data = payload
	env.Documents = append(env.Documents, docs...)
	env.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, env); err != nil {
		s.discardDocuments(ctx, docs)
		return nil, err
	}

	s.publish(ctx, actor, audit.ActionUpdate, collection, id)
	return env, nil
}

// Delete removes the record and its supporting documents.
func (s *Service) Delete(ctx context.Context, actor, collection, id string) error {
	env, err := s.store.Delete(ctx, collection, id)
	if err != nil {
		return err
	}

	s.discardDocuments(ctx, env.Documents)
	s.publish(ctx, actor, audit.ActionDelete, collection, id)
	return nil
}

// RemoveDocument detaches one supporting document from a record and
// deletes its content.
func (s *Service) RemoveDocument(ctx context.Context, actor, collection, id, docID string) error {
	env, err := s.store.FindByID(ctx, collection, id)
	if err != nil {
		return err
	}

	kept := env.Documents[:0]
	found := false
	for _, d := range env.Documents {
		if d.ID == docID {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return ErrNotFound
	}

	env.Documents = kept
	env.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, env); err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, docID); err != nil {
		return err
	}

	s.publish(ctx, actor, audit.ActionUpdate, collection, id)
	return nil
}

// Document returns supporting-file content plus its metadata.
func (s *Service) Document(ctx context.Context, collection, id, docID string) (*Document, []byte, error) {
	env, err := s.store.FindByID(ctx, collection, id)
	if err != nil {
		return nil, nil, err
	}

	for i := range env.Documents {
		if env.Documents[i].ID == docID {
			content, err := s.store.GetDocument(ctx, docID)
			if err != nil {
				return nil, nil, err
			}
			return &env.Documents[i], content, nil
		}
	}
	return nil, nil, ErrNotFound
}

func (s *Service) storeUploads(ctx context.Context, uploads []DocumentUpload) ([]Document, error) {
	docs := make([]Document, 0, len(uploads))
	for _, up := range uploads {
		doc := Document{
			ID:          uuid.NewString(),
			Name:        up.Name,
			ContentType: up.ContentType,
			Size:        int64(len(up.Content)),
			UploadedAt:  time.Now().UTC(),
		}
		if err := s.store.PutDocument(ctx, doc, up.Content); err != nil {
			s.discardDocuments(ctx, docs)
			return nil, fmt.Errorf("store document %q: %w", up.Name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// discardDocuments is rollback cleanup; failures are only logged.
func (s *Service) discardDocuments(ctx context.Context, docs []Document) {
	for _, d := range docs {
		if err := s.store.DeleteDocument(ctx, d.ID); err != nil {
			logging.Warn().Err(err).Str("document_id", d.ID).Msg("orphaned document content")
		}
	}
}

func (s *Service) publish(ctx context.Context, actor, action, collection, id string) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, audit.Event{
		Actor:      actor,
		Action:     action,
		Collection: collection,
		RecordID:   id,
	})
	if err != nil {
		logging.Warn().Err(err).Str("action", action).Str("collection", collection).Msg("audit publish failed")
	}
}

// Authenticate checks a staff username and password. The same error comes
// back for unknown users and wrong passwords.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Staff, error) {
	account, _, err := s.findStaff(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// CreateStaff hashes the password and stores the account.
func (s *Service) CreateStaff(ctx context.Context, actor string, account Staff, password string) (*Envelope, error) {
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if _, _, err := s.findStaff(ctx, account.Username); err == nil {
		return nil, fmt.Errorf("%w: username %q already taken", ErrValidation, account.Username)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account.PasswordHash = string(hash)

	payload, err := json.Marshal(account)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, actor, CollectionStaff, payload, nil)
}

// findStaff scans the staff collection for the username.
func (s *Service) findStaff(ctx context.Context, username string) (*Staff, *Envelope, error) {
	res, err := s.store.Find(ctx, CollectionStaff, Query{
		Filter:  map[string]string{"username": username},
		PerPage: 1,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(res.Items) == 0 {
		return nil, nil, ErrNotFound
	}

	var account Staff
	if err := res.Items[0].Decode(&account); err != nil {
		return nil, nil, err
	}
	return &account, res.Items[0], nil
}

// EnsureAdmin seeds the initial admin account when the staff collection is
// empty, so a fresh install is reachable.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	res, err := s.store.Find(ctx, CollectionStaff, Query{PerPage: 1})
	if err != nil {
		return err
	}
	if res.Total > 0 {
		return nil
	}

	_, err = s.CreateStaff(ctx, "system", Staff{
		Username:    username,
		DisplayName: "Administrator",
		Role:        "admin",
		Active:      true,
	}, password)
	if err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	logging.Info().Str("username", username).Msg("seeded initial admin account")
	return nil
}
