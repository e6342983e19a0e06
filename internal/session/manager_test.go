package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestLoginPersistsIdentityAndName(t *testing.T) {
	ts := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(api.LoginResponse{Token: "tok-1", Role: api.RolePatient})
		case "/patients/me":
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(api.PatientProfile{ID: 3, FullName: "Jane Doe"})
		default:
			http.NotFound(w, r)
		}
	})

	store := NewMemStore()
	client := api.NewClient(ts.URL, TokenSource(store), nil)
	m := NewManager(client, store, logging.New("error"))

	role, err := m.Login(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, api.RolePatient, role)

	id := m.Identity()
	assert.Equal(t, "tok-1", id.Token)
	assert.Equal(t, api.RolePatient, id.Role)
	assert.Equal(t, "Jane Doe", id.Name)
	assert.True(t, id.LoggedIn())
}

func TestLoginAdminSkipsProfileFetch(t *testing.T) {
	profileCalls := 0
	ts := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(api.LoginResponse{Token: "tok-a", Role: api.RoleAdmin})
		default:
			profileCalls++
			http.NotFound(w, r)
		}
	})

	store := NewMemStore()
	m := NewManager(api.NewClient(ts.URL, TokenSource(store), nil), store, logging.New("error"))

	role, err := m.Login(context.Background(), "admin@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, api.RoleAdmin, role)
	assert.Equal(t, "Admin", m.Identity().Name)
	assert.Zero(t, profileCalls)
}

func TestLoginSwallowsNameFetchFailure(t *testing.T) {
	ts := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(api.LoginResponse{Token: "tok-d", Role: api.RoleDoctor})
		case "/doctors/me":
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	})

	store := NewMemStore()
	m := NewManager(api.NewClient(ts.URL, TokenSource(store), nil), store, logging.New("error"))

	role, err := m.Login(context.Background(), "doc@example.com", "secret1")
	require.NoError(t, err, "name fetch failure must not fail login")
	assert.Equal(t, api.RoleDoctor, role)
	assert.Equal(t, "tok-d", m.Identity().Token)
	assert.Empty(t, m.Identity().Name)
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	ts := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid credentials"}`, http.StatusUnauthorized)
	})

	store := NewMemStore()
	m := NewManager(api.NewClient(ts.URL, TokenSource(store), nil), store, logging.New("error"))

	_, err := m.Login(context.Background(), "jane@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", api.Message(err, "fallback"))
	assert.False(t, m.Identity().LoggedIn())
}

func TestLogoutIdempotent(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Set("token", "tok"))
	require.NoError(t, store.Set("role", "PATIENT"))
	require.NoError(t, store.Set("userName", "Jane"))

	m := NewManager(nil, store, logging.New("error"))
	m.Logout()
	m.Logout()

	id := m.Identity()
	assert.False(t, id.LoggedIn())
	assert.Empty(t, id.Name)
	assert.Empty(t, string(id.Role))
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s1, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set("token", "tok-77"))
	require.NoError(t, s1.Set("role", "DOCTOR"))

	s2, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-77", s2.Get("token"))
	assert.Equal(t, "DOCTOR", s2.Get("role"))

	require.NoError(t, s2.Delete("token"))
	s3, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, s3.Get("token"))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "jane@example.com",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	store := NewMemStore()
	require.NoError(t, store.Set("token", signed))
	m := NewManager(nil, store, logging.New("error"))

	got, err := m.TokenExpiry()
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
	assert.False(t, m.TokenExpired())
}

func TestTokenExpiredPastExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	store := NewMemStore()
	require.NoError(t, store.Set("token", signed))
	m := NewManager(nil, store, logging.New("error"))

	assert.True(t, m.TokenExpired())
}

func TestTokenExpiredUnparseableTreatedAsLive(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Set("token", "opaque-token"))
	m := NewManager(nil, store, logging.New("error"))

	assert.False(t, m.TokenExpired())
}
