// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package access

import "strings"

// segmentKind tags one compiled pattern segment.
type segmentKind int

const (
	// segmentLiteral matches its text verbatim.
	segmentLiteral segmentKind = iota

	// segmentParam matches exactly one path component. Written [name].
	segmentParam

	// segmentCatchAll matches zero or more trailing components, slashes
	// included. Written [[...name]] and only valid in last position.
	segmentCatchAll
)

type segment struct {
	kind segmentKind
	text string
}

// compiledPattern is the compiled form of a route pattern: either a literal
// path or a sequence of segments with dynamic parts. Built once at ruleset
// construction, never re-parsed per request.
type compiledPattern struct {
	raw      string
	literal  bool
	segments []segment
}

// compilePattern turns a route pattern into its compiled form.
func compilePattern(raw string) compiledPattern {
	if !strings.Contains(raw, "[") {
		return compiledPattern{raw: raw, literal: true}
	}

	parts := strings.Split(strings.TrimPrefix(raw, "/"), "/")
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		switch {
		case strings.HasPrefix(part, "[[...") && strings.HasSuffix(part, "]]"):
			segments = append(segments, segment{
				kind: segmentCatchAll,
				text: strings.TrimSuffix(strings.TrimPrefix(part, "[[..."), "]]"),
			})
		case strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]"):
			segments = append(segments, segment{
				kind: segmentParam,
				text: strings.TrimSuffix(strings.TrimPrefix(part, "["), "]"),
			})
		default:
			segments = append(segments, segment{kind: segmentLiteral, text: part})
		}
	}
	return compiledPattern{raw: raw, segments: segments}
}

// match reports whether path structurally matches the pattern. The path must
// be slash-prefixed with no trailing slash; literal patterns are compared
// verbatim by the caller instead.
func (p compiledPattern) match(path string) bool {
	if p.literal {
		return path == p.raw
	}

	comps := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, seg := range p.segments {
		switch seg.kind {
		case segmentCatchAll:
			// Matches the rest of the path, including nothing at all.
			return true
		case segmentParam:
			if i >= len(comps) || comps[i] == "" {
				return false
			}
		case segmentLiteral:
			if i >= len(comps) || comps[i] != seg.text {
				return false
			}
		}
	}
	return len(comps) == len(p.segments)
}
