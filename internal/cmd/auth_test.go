package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/credstore"
	"github.com/felixgeelhaar/boss/internal/errors"
)

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	saved := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	got := tokenExpiry(signed, saved, 60)
	require.NotNil(t, got)
	assert.True(t, got.Equal(exp), "jwt exp claim wins")

	got = tokenExpiry("opaque-token", saved, 3600)
	require.NotNil(t, got)
	assert.True(t, got.Equal(saved.Add(time.Hour)))

	assert.Nil(t, tokenExpiry("opaque-token", saved, 0))
}

// backend serves /auth/me for token "tok" and a one-member list
func backend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer tok"
	}
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(api.User{ID: 1, Email: "admin@example.com", Role: api.RoleAdmin, IsActive: true})
	})
	mux.HandleFunc("/api/v1/members/", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"members": []api.Member{{ID: 7, MemberCode: "M0007", Status: api.StatusActive}},
			"total":   1,
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, stderr bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T, serverURL string) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("BOSS_API_URL", serverURL)
	t.Setenv("BOSS_CREDENTIAL_DIR", home)
	t.Setenv("BOSS_CREDENTIAL_KEY", "")
	t.Setenv("BOSS_MAX_RETRIES", "0")
	t.Setenv("CI", "true")
	return home
}

func TestProtectedCommandWithoutSession(t *testing.T) {
	server := backend(t)
	isolate(t, server.URL)

	_, err := execute(t, "members", "list", "-o", "json")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotLoggedIn))
}

func TestMembersListWithStoredSession(t *testing.T) {
	server := backend(t)
	dir := isolate(t, server.URL)
	require.NoError(t, credstore.NewFileStore(dir).Set(credstore.Record{AccessToken: "tok"}))

	out, err := execute(t, "members", "list", "-o", "json")
	require.NoError(t, err)

	var page api.ListResponse[api.Member]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "M0007", page.Items[0].MemberCode)
}

func TestRejectedStoredSessionIsCleared(t *testing.T) {
	server := backend(t)
	dir := isolate(t, server.URL)
	store := credstore.NewFileStore(dir)
	require.NoError(t, store.Set(credstore.Record{AccessToken: "revoked"}))

	_, err := execute(t, "members", "list", "-o", "json")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotLoggedIn))

	_, ok := store.Get()
	assert.False(t, ok, "credential removed after the API rejected it")
}

func TestLoginRequiresFlagsWhenNotInteractive(t *testing.T) {
	server := backend(t)
	isolate(t, server.URL)

	_, err := execute(t, "auth", "login", "-o", "json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindValidation))
}

func TestDoctorInspectsCredentialBeforeRevalidating(t *testing.T) {
	server := backend(t)
	dir := isolate(t, server.URL)
	store := credstore.NewFileStore(dir)
	require.NoError(t, store.Set(credstore.Record{AccessToken: "revoked"}))

	out, err := execute(t, "doctor", "-o", "json")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnhealthy))

	var report struct {
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	statuses := map[string]string{}
	for _, c := range report.Checks {
		statuses[c.Name] = c.Status
	}
	assert.Equal(t, "healthy", statuses["credentials"], "file inspected while it still existed")
	assert.Equal(t, "degraded", statuses["session"])

	_, ok := store.Get()
	assert.False(t, ok)
}
