package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guarded(cfg *JWTConfig) http.Handler {
	return cfg.RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetSubject(r.Context())))
	}))
}

func TestRequireRole(t *testing.T) {
	cfg := NewJWTConfig("test-secret")
	handler := guarded(cfg)

	admin, err := cfg.IssueToken("ops@clinicanorte.com.co", RoleAdmin, time.Hour)
	require.NoError(t, err)
	viewer, err := cfg.IssueToken("web", "viewer", time.Hour)
	require.NoError(t, err)
	expired, err := cfg.IssueToken("ops", RoleAdmin, -time.Minute)
	require.NoError(t, err)
	foreign, err := NewJWTConfig("other-secret").IssueToken("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"admin token", "Bearer " + admin, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer, http.StatusForbidden},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/gateway/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "ops@clinicanorte.com.co", rec.Body.String())
			}
		})
	}
}

func TestNewJWTConfigDefaultSecret(t *testing.T) {
	assert.NotEmpty(t, NewJWTConfig("").SecretKey)
}
