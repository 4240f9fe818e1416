// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package records

import "time"

// Collection names. Keys in the store are namespaced by these.
const (
	CollectionResidents  = "residents"
	CollectionHouseholds = "households"
	CollectionBusinesses = "businesses"
	CollectionPermits    = "permits"
	CollectionIncidents  = "incidents"
	CollectionStaff      = "staff"
	CollectionPosts      = "posts"
)

// Collections lists every known collection, in display order.
var Collections = []string{
	CollectionResidents,
	CollectionHouseholds,
	CollectionBusinesses,
	CollectionPermits,
	CollectionIncidents,
	CollectionStaff,
	CollectionPosts,
}

// KnownCollection reports whether name is a registered collection.
func KnownCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Resident is one registered inhabitant of the barangay.
type Resident struct {
	FirstName   string    `json:"first_name" validate:"required"`
	MiddleName  string    `json:"middle_name,omitempty"`
	LastName    string    `json:"last_name" validate:"required"`
	Suffix      string    `json:"suffix,omitempty"`
	BirthDate   time.Time `json:"birth_date"`
	Gender      string    `json:"gender" validate:"omitempty,oneof=male female"`
	CivilStatus string    `json:"civil_status" validate:"omitempty,oneof=single married widowed separated"`
	Occupation  string    `json:"occupation,omitempty"`
	Contact     string    `json:"contact,omitempty"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email"`
	Address     string    `json:"address,omitempty"`
	HouseholdID string    `json:"household_id,omitempty"`
	Voter       bool      `json:"voter"`
	PWD         bool      `json:"pwd"`
}

// Household groups residents under one dwelling.
type Household struct {
	Number   string `json:"number" validate:"required"`
	HeadID   string `json:"head_id,omitempty"`
	Purok    string `json:"purok,omitempty"`
	Address  string `json:"address" validate:"required"`
	MemberID []string `json:"member_ids,omitempty"`
}

// Business is a registered establishment.
type Business struct {
	Name       string `json:"name" validate:"required"`
	OwnerID    string `json:"owner_id,omitempty"`
	OwnerName  string `json:"owner_name,omitempty"`
	Nature     string `json:"nature,omitempty"`
	Address    string `json:"address,omitempty"`
	Contact    string `json:"contact,omitempty"`
	Registered time.Time `json:"registered"`
	Active     bool   `json:"active"`
}

// Permit statuses.
const (
	PermitPending  = "pending"
	PermitApproved = "approved"
	PermitReleased = "released"
	PermitRejected = "rejected"
)

// Permit is a clearance or business permit issued by the barangay.
type Permit struct {
	Kind        string    `json:"kind" validate:"required,oneof=clearance business construction event"`
	ApplicantID string    `json:"applicant_id,omitempty"`
	Applicant   string    `json:"applicant" validate:"required"`
	Purpose     string    `json:"purpose,omitempty"`
	Status      string    `json:"status" validate:"omitempty,oneof=pending approved released rejected"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Fee         int64     `json:"fee_centavos,omitempty"`
}

// Incident is a blotter entry.
type Incident struct {
	Title       string    `json:"title" validate:"required"`
	Narrative   string    `json:"narrative,omitempty"`
	Complainant string    `json:"complainant,omitempty"`
	Respondent  string    `json:"respondent,omitempty"`
	Location    string    `json:"location,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Status      string    `json:"status" validate:"omitempty,oneof=open mediation settled escalated closed"`
}

// Staff is a dashboard user account. The password hash is bcrypt and is
// never serialized into API responses.
type Staff struct {
	Username     string `json:"username" validate:"required,min=3"`
	DisplayName  string `json:"display_name,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Role         string `json:"role" validate:"required,oneof=admin staff citizen"`
	PasswordHash string `json:"password_hash,omitempty"`
	Active       bool   `json:"active"`
}

// Post is a published announcement or article.
type Post struct {
	Slug      string    `json:"slug" validate:"required"`
	Title     string    `json:"title" validate:"required"`
	Body      string    `json:"body,omitempty"`
	Author    string    `json:"author,omitempty"`
	Published bool      `json:"published"`
	PostedAt  time.Time `json:"posted_at"`
}

// Document is supporting-file metadata attached to a record. Content is
// stored separately under the document ID.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// DocumentUpload is an incoming supporting file: metadata plus content.
type DocumentUpload struct {
	Name        string
	ContentType string
	Content     []byte
}
