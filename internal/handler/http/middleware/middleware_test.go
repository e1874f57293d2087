package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func requestAs(role employee.AccessRole) *http.Request {
	ctx := jwt.WithCaller(context.Background(), jwt.AccessClaims{
		EmployeeID: "emp-1",
		CompanyID:  "co-1",
		Email:      "ann@acme.test",
		Role:       role,
	})
	return httptest.NewRequest(http.MethodGet, "/api/v1/reports/period", nil).WithContext(ctx)
}

func TestAuthRequired(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthRequired(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	AuthRequired(noContent).ServeHTTP(rec, requestAs(employee.AccessRoleEmployee))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRoleGates(t *testing.T) {
	cases := []struct {
		name  string
		gate  func(http.Handler) http.Handler
		role  employee.AccessRole
		allow bool
	}{
		{"admin passes admin gate", RequireAdmin, employee.AccessRoleAdmin, true},
		{"bookkeeper blocked by admin gate", RequireAdmin, employee.AccessRoleBookkeeper, false},
		{"employee blocked by admin gate", RequireAdmin, employee.AccessRoleEmployee, false},
		{"bookkeeper reads reports", RequireAdminOrBookkeeper, employee.AccessRoleBookkeeper, true},
		{"employee cannot read reports", RequireAdminOrBookkeeper, employee.AccessRoleEmployee, false},
		{"employee writes", RequireWriter, employee.AccessRoleEmployee, true},
		{"bookkeeper is read-only", RequireWriter, employee.AccessRoleBookkeeper, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.gate(noContent).ServeHTTP(rec, requestAs(tc.role))
			if tc.allow {
				assert.Equal(t, http.StatusNoContent, rec.Code)
			} else {
				assert.Equal(t, http.StatusForbidden, rec.Code)
			}
		})
	}
}

func TestRoleGate_WithoutClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAdmin(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, remaining, _ := rl.Allow("10.0.0.1")
	require.True(t, ok)
	assert.Equal(t, 1, remaining)

	now = now.Add(40 * time.Second)
	ok, _, _ = rl.Allow("10.0.0.1")
	require.True(t, ok)

	now = now.Add(10 * time.Second)
	ok, _, retry := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 10*time.Second, retry)

	ok, _, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "other clients have their own window")

	// The first hit leaves the window; the one from 40s still counts.
	now = now.Add(11 * time.Second)
	ok, _, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _, _ = rl.Allow("10.0.0.1")
	assert.False(t, ok)
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Handler(noContent)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/notify/invitation", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/notify/invitation", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(30 * time.Second)
	rl.Allow("b")
	now = now.Add(45 * time.Second)
	rl.Sweep()

	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", ClientIP(r))
}
