// Package session owns the authenticated identity: login, logout,
// registration, and the persisted {token, role, display name} triple.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

const (
	keyToken    = "token"
	keyRole     = "role"
	keyUserName = "userName"
)

const adminDisplayName = "Admin"

// TokenSource exposes the stored credential to the gateway client.
func TokenSource(s Store) api.TokenFunc {
	return func() string { return s.Get(keyToken) }
}

// Identity is a snapshot of the signed-in account.
type Identity struct {
	Token string
	Role  api.Role
	Name  string
}

// LoggedIn reports whether a credential is present.
func (id Identity) LoggedIn() bool { return id.Token != "" }

// Manager drives the auth lifecycle against the persisted store.
type Manager struct {
	client *api.Client
	store  Store
	logger *logging.Logger
}

func NewManager(client *api.Client, store Store, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		client: client,
		store:  store,
		logger: logger.WithComponent("session"),
	}
}

// Login exchanges credentials for a token, persists {token, role}, then
// best-effort fetches the display name. A failed name fetch is logged and
// swallowed; the login itself still succeeds.
func (m *Manager) Login(ctx context.Context, email, password string) (api.Role, error) {
	res, err := m.client.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	if err := m.store.Set(keyToken, res.Token); err != nil {
		return "", err
	}
	if err := m.store.Set(keyRole, string(res.Role)); err != nil {
		return "", err
	}

	name := m.fetchDisplayName(ctx, res.Role)
	if name != "" {
		if err := m.store.Set(keyUserName, name); err != nil {
			return "", err
		}
	}
	m.logger.Info("logged in", "role", res.Role)
	return res.Role, nil
}

func (m *Manager) fetchDisplayName(ctx context.Context, role api.Role) string {
	switch role {
	case api.RoleAdmin:
		return adminDisplayName
	case api.RolePatient:
		profile, err := m.client.PatientMe(ctx)
		if err != nil {
			m.logger.Warn("display name fetch failed", "role", role, "error", err)
			return ""
		}
		return profile.FullName
	case api.RoleDoctor:
		profile, err := m.client.DoctorMe(ctx)
		if err != nil {
			m.logger.Warn("display name fetch failed", "role", role, "error", err)
			return ""
		}
		return profile.FullName
	default:
		return ""
	}
}

// Logout clears all persisted identity fields. Idempotent.
func (m *Manager) Logout() {
	for _, key := range []string{keyToken, keyRole, keyUserName} {
		if err := m.store.Delete(key); err != nil {
			m.logger.Warn("logout cleanup failed", "key", key, "error", err)
		}
	}
	m.logger.Info("logged out")
}

// RegisterPatient forwards raw form fields; the caller validates shape first.
func (m *Manager) RegisterPatient(ctx context.Context, req api.RegisterPatientRequest) (*api.RegisterResponse, error) {
	return m.client.RegisterPatient(ctx, req)
}

func (m *Manager) RegisterDoctor(ctx context.Context, req api.RegisterDoctorRequest) (*api.RegisterResponse, error) {
	return m.client.RegisterDoctor(ctx, req)
}

// Identity returns the persisted identity snapshot.
func (m *Manager) Identity() Identity {
	return Identity{
		Token: m.store.Get(keyToken),
		Role:  api.Role(m.store.Get(keyRole)),
		Name:  m.store.Get(keyUserName),
	}
}

// TokenExpiry reads the expiry claim from the stored token without verifying
// the signature; the client holds no signing key, and the server re-checks
// every request anyway.
func (m *Manager) TokenExpiry() (time.Time, error) {
	raw := m.store.Get(keyToken)
	if raw == "" {
		return time.Time{}, fmt.Errorf("session: no token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, fmt.Errorf("session: parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("session: token has no expiry")
	}
	return exp.Time, nil
}

// TokenExpired reports whether the stored token is known to be dead. A token
// we cannot parse is treated as live; the server is the arbiter.
func (m *Manager) TokenExpired() bool {
	exp, err := m.TokenExpiry()
	if err != nil {
		return false
	}
	return time.Now().After(exp)
}
