package health

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/session"
)

// Pinger is the part of the API client the API check uses
type Pinger interface {
	Health(ctx context.Context) (*api.Health, error)
}

// APIChecker verifies the service answers its health endpoint
type APIChecker struct {
	client  Pinger
	baseURL string
}

// NewAPIChecker creates the "api" check
func NewAPIChecker(client Pinger, baseURL string) *APIChecker {
	return &APIChecker{client: client, baseURL: baseURL}
}

// Name implements Checker
func (c *APIChecker) Name() string { return "api" }

// Check implements Checker
func (c *APIChecker) Check(ctx context.Context) *Result {
	h, err := c.client.Health(ctx)
	if err != nil {
		return Unhealthy(errorText(err)).WithDetail("url", c.baseURL)
	}

	msg := fmt.Sprintf("%s reports %s", c.baseURL, h.Status)
	result := Healthy(msg)
	if h.Status != "healthy" {
		result = Degraded(msg)
	}
	return result.
		WithDetail("url", c.baseURL).
		WithDetail("environment", h.Environment).
		WithDetail("version", h.Version)
}

// CredentialFileChecker verifies the stored credential cannot be read by
// other users
type CredentialFileChecker struct {
	path   string
	sealed bool
}

// NewCredentialFileChecker creates the "credentials" check
func NewCredentialFileChecker(path string, sealed bool) *CredentialFileChecker {
	return &CredentialFileChecker{path: path, sealed: sealed}
}

// Name implements Checker
func (c *CredentialFileChecker) Name() string { return "credentials" }

// Check implements Checker
func (c *CredentialFileChecker) Check(ctx context.Context) *Result {
	info, err := os.Stat(c.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return Degraded("no stored credential").WithDetail("path", c.path)
	}
	if err != nil {
		return Unhealthy(err.Error()).WithDetail("path", c.path)
	}

	// permission bits are not meaningful on windows
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
		return Unhealthy(fmt.Sprintf("%s is accessible by other users (mode %04o)", c.path, info.Mode().Perm())).
			WithDetail("path", c.path).
			WithDetail("fix", "chmod 600 "+c.path)
	}

	return Healthy("stored with mode 0600").
		WithDetail("path", c.path).
		WithDetail("encrypted", c.sealed)
}

// Bootstrapper restores a session from storage
type Bootstrapper interface {
	Snapshot() session.Snapshot
	Bootstrap(ctx context.Context) error
}

// SessionChecker verifies the stored token is still accepted
type SessionChecker struct {
	session Bootstrapper
}

// NewSessionChecker creates the "session" check
func NewSessionChecker(s Bootstrapper) *SessionChecker {
	return &SessionChecker{session: s}
}

// Name implements Checker
func (c *SessionChecker) Name() string { return "session" }

// Check implements Checker
func (c *SessionChecker) Check(ctx context.Context) *Result {
	if c.session.Snapshot().State == session.StateBootstrapping {
		if err := c.session.Bootstrap(ctx); err != nil && !errors.Is(err, errors.KindUnauthorized) {
			return Unhealthy(errorText(err))
		}
	}

	snap := c.session.Snapshot()
	if !snap.IsAuthenticated() {
		return Degraded("not logged in").WithDetail("fix", "boss auth login")
	}
	return Healthy("logged in as " + snap.User.Email).
		WithDetail("role", snap.User.Role)
}

func errorText(err error) string {
	if e, ok := errors.As(err); ok {
		return e.Message
	}
	return err.Error()
}
