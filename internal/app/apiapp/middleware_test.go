package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/enums"
	authsvc "github.com/Raiyan-S/GP-Dashboard/internal/services/auth"
)

func TestRequireRoleMatchesCaseInsensitively(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole("admin")(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := authsvc.WithIdentity(req.Context(), authsvc.Identity{
		UserID:   "u1",
		Username: "admin@example.com",
		Role:     enums.Role("Admin"),
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusNoContent)
	}
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole("admin")(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := authsvc.WithIdentity(req.Context(), authsvc.Identity{
		UserID:   "u2",
		Username: "clinic@example.com",
		Role:     enums.RoleClinic,
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestClientIPStripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:61234"
	if ip := clientIP(req); ip != "198.51.100.4" {
		t.Fatalf("unexpected client ip: %q", ip)
	}

	req.RemoteAddr = "198.51.100.5"
	if ip := clientIP(req); ip != "198.51.100.5" {
		t.Fatalf("unexpected client ip without port: %q", ip)
	}
}
