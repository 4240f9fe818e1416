// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package api

import (
	"bytes"
	"mime/multipart"
	"testing"
)

// newMultipart writes a single-file multipart body into buf and returns
// the Content-Type header value.
func newMultipart(t *testing.T, buf *bytes.Buffer, filename string, content []byte) string {
	t.Helper()

	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return w.FormDataContentType()
}
