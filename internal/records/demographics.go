// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package records

import (
	"context"
	"time"
)

// DemographicSummary is the aggregate behind the insights page.
type DemographicSummary struct {
	Residents   int            `json:"residents"`
	Voters      int            `json:"voters"`
	PWD         int            `json:"pwd"`
	ByGender    map[string]int `json:"by_gender"`
	ByStatus    map[string]int `json:"by_civil_status"`
	AgeBrackets map[string]int `json:"age_brackets"`
	Households  int            `json:"households"`
	Businesses  int            `json:"businesses"`
	ActiveBiz   int            `json:"active_businesses"`
	OpenCases   int            `json:"open_incidents"`
}

// ageBracket buckets an age for the summary.
func ageBracket(age int) string {
	switch {
	case age < 0:
		return "unknown"
	case age < 13:
		return "0-12"
	case age < 18:
		return "13-17"
	case age < 30:
		return "18-29"
	case age < 60:
		return "30-59"
	default:
		return "60+"
	}
}

func ageAt(birth, now time.Time) int {
	if birth.IsZero() {
		return -1
	}
	age := now.Year() - birth.Year()
	if now.YearDay() < birth.YearDay() {
		age--
	}
	return age
}

// Demographics walks the resident, household, business and incident
// collections and builds the summary. Collections here are small enough
// that a full scan per request is fine.
func (s *Service) Demographics(ctx context.Context) (*DemographicSummary, error) {
	sum := &DemographicSummary{
		ByGender:    map[string]int{},
		ByStatus:    map[string]int{},
		AgeBrackets: map[string]int{},
	}
	now := time.Now().UTC()

	residents, err := s.allOf(ctx, CollectionResidents)
	if err != nil {
		return nil, err
	}
	sum.Residents = len(residents)
	for _, env := range residents {
		var r Resident
		if err := env.Decode(&r); err != nil {
			continue
		}
		if r.Voter {
			sum.Voters++
		}
		if r.PWD {
			sum.PWD++
		}
		if r.Gender != "" {
			sum.ByGender[r.Gender]++
		}
		if r.CivilStatus != "" {
			sum.ByStatus[r.CivilStatus]++
		}
		sum.AgeBrackets[ageBracket(ageAt(r.BirthDate, now))]++
	}

	households, err := s.allOf(ctx, CollectionHouseholds)
	if err != nil {
		return nil, err
	}
	sum.Households = len(households)

	businesses, err := s.allOf(ctx, CollectionBusinesses)
	if err != nil {
		return nil, err
	}
	sum.Businesses = len(businesses)
	for _, env := range businesses {
		var b Business
		if err := env.Decode(&b); err != nil {
			continue
		}
		if b.Active {
			sum.ActiveBiz++
		}
	}

	incidents, err := s.allOf(ctx, CollectionIncidents)
	if err != nil {
		return nil, err
	}
	for _, env := range incidents {
		var in Incident
		if err := env.Decode(&in); err != nil {
			continue
		}
		switch in.Status {
		case "open", "mediation", "escalated":
			sum.OpenCases++
		}
	}

	return sum, nil
}

// allOf pages through one collection completely.
func (s *Service) allOf(ctx context.Context, collection string) ([]*Envelope, error) {
	const pageSize = 500

	var all []*Envelope
	for page := 1; ; page++ {
		res, err := s.store.Find(ctx, collection, Query{Page: page, PerPage: pageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if len(all) >= res.Total || len(res.Items) == 0 {
			return all, nil
		}
	}
}
