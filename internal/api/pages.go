// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package api

import (
	"html"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// StaticPages serves a built frontend from dir, falling back to
// index.html for client-side routes.
func StaticPages(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}

// placeholderPages answers page navigations when no frontend bundle is
// configured, so the guard's routing behavior is still observable.
func placeholderPages() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		var b strings.Builder
		b.WriteString("<!doctype html><title>Civika</title><h1>Civika</h1><p>")
		b.WriteString("page: ")
		b.WriteString(html.EscapeString(r.URL.Path))
		b.WriteString("</p>")
		w.Write([]byte(b.String()))
	})
}
