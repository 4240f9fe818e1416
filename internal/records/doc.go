// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

// Package records implements the civic record store and the CRUD service
// on top of it.
//
// Records are stored as envelopes: an ID, a collection name, the typed
// payload as raw JSON, and attached supporting-document metadata. The
// Store interface mirrors the operations the application needs from any
// persistence backend (find, find-by-id, create, update, delete and a
// cross-collection search); BadgerStore is the production implementation.
//
// The Service wraps store mutations with payload validation, the
// supporting-document lifecycle (documents are written with their record,
// replaced on update and removed on delete) and audit event publication.
package records
