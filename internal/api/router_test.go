// Civika - Barangay Civic Records Management
// Copyright 2026 M. Lagrosa (mlagrosa)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlagrosa/civika

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/mlagrosa/civika/internal/access"
	"github.com/mlagrosa/civika/internal/audit"
	"github.com/mlagrosa/civika/internal/auth"
	"github.com/mlagrosa/civika/internal/config"
	"github.com/mlagrosa/civika/internal/records"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	handler http.Handler
	svc     *records.Service
	trail   *audit.Trail
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1", Port: 8480,
			Environment: "development",
			CORSOrigins: []string{"*"},
		},
		Security: config.SecurityConfig{
			JWTSecret:      testSecret,
			SessionTTL:     time.Hour,
			TokenCookie:    "civika_token",
			RoleCookie:     "civika_role",
			CookieSameSite: "lax",
		},
		API: config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100, MaxUploadBytes: 1 << 20},
	}

	store, err := records.OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := records.NewService(store, nil)
	trail := audit.NewTrail(store.DB())

	tokens, err := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.SessionTTL)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	cookies := auth.CookieConfig{
		TokenName: cfg.Security.TokenCookie,
		RoleName:  cfg.Security.RoleCookie,
		Path:      "/",
		SameSite:  cfg.Security.SameSite(),
	}
	limiter := auth.NewLoginLimiter(10, time.Minute)
	t.Cleanup(limiter.Stop)

	guard := auth.NewGuard(tokens, cookies, access.DefaultRuleset())
	handlers := NewHandlers(cfg, svc, trail, nil, tokens, cookies, limiter)
	router := NewRouter(handlers, guard, cfg.Server.CORSOrigins, nil)

	return &testServer{handler: router.Setup(), svc: svc, trail: trail}
}

func (ts *testServer) seedAccount(t *testing.T, username, role, password string) {
	t.Helper()
	_, err := ts.svc.CreateStaff(context.Background(), "test", records.Staff{
		Username: username,
		Role:     role,
		Active:   true,
	}, password)
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
}

// login runs the login endpoint and returns the session cookies.
func (ts *testServer) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()
}

func (ts *testServer) request(t *testing.T, method, path string, body []byte, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(t, http.MethodGet, "/api/v1/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLogin_SetsCookiesAndRedirectTarget(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")

	cookies := ts.login(t, "ana", "super-secret-pw")

	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
	}
	if !names["civika_token"] || !names["civika_role"] {
		t.Errorf("cookies = %v", names)
	}

	rec := ts.request(t, http.MethodGet, "/api/v1/auth/me", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"role":"staff"`) {
		t.Errorf("me body = %s", rec.Body.String())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "wrong"})
	rec := ts.request(t, http.MethodPost, "/auth/login", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAPI_RequiresSession(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(t, http.MethodGet, "/api/v1/records/residents/", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRecords_CRUDFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")
	cookies := ts.login(t, "ana", "super-secret-pw")

	payload, _ := json.Marshal(records.Resident{
		FirstName: "Juan", LastName: "Dela Cruz", Gender: "male", Voter: true,
	})
	rec := ts.request(t, http.MethodPost, "/api/v1/records/residents/", payload, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data records.Envelope `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	id := created.Data.ID

	rec = ts.request(t, http.MethodGet, "/api/v1/records/residents/"+id, nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = ts.request(t, http.MethodGet, "/api/v1/records/residents/?q=dela", nil, cookies)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("list status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = ts.request(t, http.MethodDelete, "/api/v1/records/residents/"+id, nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = ts.request(t, http.MethodGet, "/api/v1/records/residents/"+id, nil, cookies)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestRecords_ValidationError(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")
	cookies := ts.login(t, "ana", "super-secret-pw")

	payload, _ := json.Marshal(map[string]string{"first_name": "Juan"})
	rec := ts.request(t, http.MethodPost, "/api/v1/records/residents/", payload, cookies)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestRecords_UnknownCollection(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")
	cookies := ts.login(t, "ana", "super-secret-pw")

	rec := ts.request(t, http.MethodGet, "/api/v1/records/vehicles/", nil, cookies)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRecords_CitizenAccess(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")
	staffCookies := ts.login(t, "ana", "super-secret-pw")

	payload, _ := json.Marshal(records.Post{Slug: "fiesta", Title: "Fiesta schedule", Published: true})
	if rec := ts.request(t, http.MethodPost, "/api/v1/records/posts/", payload, staffCookies); rec.Code != http.StatusCreated {
		t.Fatalf("create post = %d", rec.Code)
	}

	ts.seedAccount(t, "juan", "citizen", "citizen-pw-123")
	citizenCookies := ts.login(t, "juan", "citizen-pw-123")

	if rec := ts.request(t, http.MethodGet, "/api/v1/records/posts/", nil, citizenCookies); rec.Code != http.StatusOK {
		t.Errorf("citizen read posts = %d, want 200", rec.Code)
	}
	if rec := ts.request(t, http.MethodGet, "/api/v1/records/residents/", nil, citizenCookies); rec.Code != http.StatusForbidden {
		t.Errorf("citizen read residents = %d, want 403", rec.Code)
	}
	if rec := ts.request(t, http.MethodPost, "/api/v1/records/posts/", payload, citizenCookies); rec.Code != http.StatusForbidden {
		t.Errorf("citizen write posts = %d, want 403", rec.Code)
	}
}

func TestStaffCollection_AdminOnly(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")
	cookies := ts.login(t, "ana", "super-secret-pw")

	if rec := ts.request(t, http.MethodGet, "/api/v1/records/staff/", nil, cookies); rec.Code != http.StatusForbidden {
		t.Errorf("staff role reading staff collection = %d, want 403", rec.Code)
	}
}

func TestAudit_AdminOnly(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "boss", "admin", "admin-pw-12345")
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")

	if err := ts.trail.Append(audit.Event{Actor: "boss", Action: audit.ActionCreate, Collection: "posts"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	adminCookies := ts.login(t, "boss", "admin-pw-12345")
	rec := ts.request(t, http.MethodGet, "/api/v1/audit", nil, adminCookies)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"actor":"boss"`) {
		t.Errorf("admin audit = %d body = %s", rec.Code, rec.Body.String())
	}

	staffCookies := ts.login(t, "ana", "super-secret-pw")
	if rec := ts.request(t, http.MethodGet, "/api/v1/audit", nil, staffCookies); rec.Code != http.StatusForbidden {
		t.Errorf("staff audit = %d, want 403", rec.Code)
	}
}

func TestInsights_Demographics(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")
	cookies := ts.login(t, "ana", "super-secret-pw")

	payload, _ := json.Marshal(records.Resident{FirstName: "Juan", LastName: "Dela Cruz", Voter: true})
	if rec := ts.request(t, http.MethodPost, "/api/v1/records/residents/", payload, cookies); rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}

	rec := ts.request(t, http.MethodGet, "/api/v1/insights/demographics", nil, cookies)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"residents":1`) {
		t.Errorf("demographics = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestSearch_Global(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")
	cookies := ts.login(t, "ana", "super-secret-pw")

	payload, _ := json.Marshal(records.Business{Name: "Santos Bakery", Active: true})
	if rec := ts.request(t, http.MethodPost, "/api/v1/records/businesses/", payload, cookies); rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}

	rec := ts.request(t, http.MethodGet, "/api/v1/search?q=bakery", nil, cookies)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Santos Bakery") {
		t.Errorf("search = %d body = %s", rec.Code, rec.Body.String())
	}

	if rec := ts.request(t, http.MethodGet, "/api/v1/search", nil, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("search without q = %d, want 400", rec.Code)
	}
}

func TestPages_GuardedNavigation(t *testing.T) {
	ts := newTestServer(t)

	// Anonymous dashboard navigation bounces to login with the origin path.
	rec := ts.request(t, http.MethodGet, "/dashboard/residents", nil, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login?from=%2Fdashboard%2Fresidents" {
		t.Errorf("Location = %q", loc)
	}

	// The login page itself is public.
	rec = ts.request(t, http.MethodGet, "/auth/login", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("login page = %d, want 200", rec.Code)
	}

	// Authenticated staff reach dashboard pages.
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")
	cookies := ts.login(t, "ana", "super-secret-pw")
	rec = ts.request(t, http.MethodGet, "/dashboard/residents", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Errorf("staff dashboard = %d, want 200", rec.Code)
	}
}

func TestDocuments_UploadAndFetch(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAccount(t, "ana", "staff", "super-secret-pw")
	cookies := ts.login(t, "ana", "super-secret-pw")

	payload, _ := json.Marshal(records.Permit{Kind: "clearance", Applicant: "Juan Dela Cruz"})
	rec := ts.request(t, http.MethodPost, "/api/v1/records/permits/", payload, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}
	var created struct {
		Data records.Envelope `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "valid-id.jpg", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/permits/"+created.Data.ID+"/documents", &buf)
	req.Header.Set("Content-Type", mw)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	up := httptest.NewRecorder()
	ts.handler.ServeHTTP(up, req)
	if up.Code != http.StatusCreated {
		t.Fatalf("upload = %d: %s", up.Code, up.Body.String())
	}

	var updated struct {
		Data records.Envelope `json:"data"`
	}
	if err := json.Unmarshal(up.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(updated.Data.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(updated.Data.Documents))
	}

	docURL := "/api/v1/records/permits/" + created.Data.ID + "/documents/" + updated.Data.Documents[0].ID
	rec = ts.request(t, http.MethodGet, docURL, nil, cookies)
	if rec.Code != http.StatusOK || rec.Body.String() != "jpeg-bytes" {
		t.Errorf("fetch document = %d body = %q", rec.Code, rec.Body.String())
	}
}
