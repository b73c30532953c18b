// Package session owns the authenticated session of the console.
//
// The Controller is the only writer of the session. It bootstraps from the
// persisted credential, performs login and logout, and tears the session
// down when the API reports that the token is no longer accepted.
package session

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/credstore"
	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/log"
	"github.com/felixgeelhaar/boss/internal/notify"
)

// State is the session lifecycle state
type State int

const (
	StateBootstrapping State = iota
	StateAnonymous
	StateAuthenticating
	StateAuthenticated
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Routes the controller navigates to
const (
	RouteLogin = "/login"
	RouteHome  = "/"
)

// Notification texts
const (
	MessageLoggedIn       = "Logged in"
	MessageLoggedOut      = "Logged out"
	MessageSessionExpired = "Session expired, please log in again"
)

// Snapshot is an immutable view of the session
type Snapshot struct {
	State State
	User  *api.User
}

// IsLoading is true while bootstrapping or authenticating
func (s Snapshot) IsLoading() bool {
	return s.State == StateBootstrapping || s.State == StateAuthenticating
}

// IsAuthenticated is true only when a user is present
func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Navigator moves the view layer to a route
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(route string)

// Navigate calls f
func (f NavigatorFunc) Navigate(route string) { f(route) }

// Gateway is the part of the API client the controller needs
type Gateway interface {
	Login(ctx context.Context, in api.LoginRequest) (*api.Token, error)
	Me(ctx context.Context) (*api.User, error)
	SetTokenSource(ts api.TokenSource)
	OnUnauthorized(fn func(error)) (remove func())
}

// Option configures a Controller
type Option func(*Controller)

// WithNavigator sets where login and logout navigate
func WithNavigator(n Navigator) Option {
	return func(c *Controller) { c.nav = n }
}

// WithNotifier sets the notifier for login and logout messages
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller manages the session lifecycle
type Controller struct {
	client   Gateway
	store    credstore.Store
	stored   api.TokenSource
	nav      Navigator
	notifier notify.Notifier
	logger   *log.Logger

	mu      sync.Mutex
	snap    Snapshot
	pending string
	subs    map[int]func(Snapshot)
	nextSub int

	removeObserver func()
}

// NewController creates a controller in the Bootstrapping state and
// installs itself as the client's token source and unauthorized observer
func NewController(client Gateway, store credstore.Store, opts ...Option) *Controller {
	c := &Controller{
		client:   client,
		store:    store,
		stored:   credstore.TokenSource(store),
		nav:      NavigatorFunc(func(string) {}),
		notifier: notify.Discard,
		logger:   log.Discard(),
		snap:     Snapshot{State: StateBootstrapping},
		subs:     make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}

	client.SetTokenSource(c)
	c.removeObserver = client.OnUnauthorized(c.handleUnauthorized)
	return c
}

// Close detaches the controller from the client
func (c *Controller) Close() {
	if c.removeObserver != nil {
		c.removeObserver()
		c.removeObserver = nil
	}
}

// Token returns the bearer token for API calls. During login the freshly
// issued token is used before it is persisted.
func (c *Controller) Token() string {
	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()

	if pending != "" {
		return pending
	}
	return c.stored.Token()
}

// Snapshot returns the current session
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.snap.State}
	if c.snap.User != nil {
		u := *c.snap.User
		snap.User = &u
	}
	return snap
}

// Subscribe calls fn after every session transition
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// transition replaces the session and notifies subscribers outside the lock
func (c *Controller) transition(state State, user *api.User) Snapshot {
	c.mu.Lock()
	snap, subs := c.setLocked(state, user)
	c.mu.Unlock()

	c.publish(snap, subs)
	return snap
}

// transitionFrom replaces the session only while it is still in from.
// before runs under the lock ahead of the change; an error from it leaves
// the session untouched.
func (c *Controller) transitionFrom(from, state State, user *api.User, before func() error) (bool, error) {
	c.mu.Lock()
	if c.snap.State != from {
		c.mu.Unlock()
		return false, nil
	}
	if before != nil {
		if err := before(); err != nil {
			c.mu.Unlock()
			return false, err
		}
	}
	snap, subs := c.setLocked(state, user)
	c.mu.Unlock()

	c.publish(snap, subs)
	return true, nil
}

func (c *Controller) setLocked(state State, user *api.User) (Snapshot, []func(Snapshot)) {
	c.snap = Snapshot{State: state, User: user}
	subs := make([]func(Snapshot), 0, len(c.subs))
	for i := 0; i < c.nextSub; i++ {
		if fn, ok := c.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return c.snapshotLocked(), subs
}

func (c *Controller) publish(snap Snapshot, subs []func(Snapshot)) {
	c.logger.Debug("session transition", "state", snap.State.String())
	for _, fn := range subs {
		fn(snap)
	}
}

// Bootstrap revalidates the stored credential. It only runs from the
// Bootstrapping state and always leaves it.
func (c *Controller) Bootstrap(ctx context.Context) error {
	if c.Snapshot().State != StateBootstrapping {
		return nil
	}

	rec, ok := c.store.Get()
	if !ok {
		c.transition(StateAnonymous, nil)
		return nil
	}

	user, err := c.client.Me(ctx)
	if err != nil {
		// an interrupted check says nothing about the credential
		keep := isCanceled(err)
		_, _ = c.transitionFrom(StateBootstrapping, StateAnonymous, nil, func() error {
			if !keep {
				c.clearStore()
			}
			return nil
		})
		c.logger.WithError(err).Debug("stored session rejected")
		return err
	}

	// a logout while /auth/me was in flight wins over the revalidation
	rec.User = user
	applied, _ := c.transitionFrom(StateBootstrapping, StateAuthenticated, user, func() error {
		if err := c.store.Set(*rec); err != nil {
			c.logger.WithError(err).Warn("failed to refresh cached user")
		}
		return nil
	})
	if !applied {
		c.logger.Debug("bootstrap superseded", "state", c.Snapshot().State.String())
	}
	return nil
}

// Login authenticates with the API and persists the credential
func (c *Controller) Login(ctx context.Context, creds Credentials) error {
	c.mu.Lock()
	switch c.snap.State {
	case StateAuthenticating:
		c.mu.Unlock()
		return errors.New(errors.ErrCodeSessionBusy, errors.KindValidation, "login already in progress")
	case StateBootstrapping:
		c.mu.Unlock()
		return errors.New(errors.ErrCodeSessionBusy, errors.KindValidation, "session is still loading")
	}
	previous := c.snapshotLocked()
	snap, subs := c.setLocked(StateAuthenticating, nil)
	c.mu.Unlock()
	c.publish(snap, subs)

	fail := func(err error) error {
		c.mu.Lock()
		c.pending = ""
		c.mu.Unlock()

		// a logout during the attempt already settled the session
		if previous.IsAuthenticated() {
			_, _ = c.transitionFrom(StateAuthenticating, StateAuthenticated, previous.User, nil)
		} else {
			_, _ = c.transitionFrom(StateAuthenticating, StateAnonymous, nil, nil)
		}
		c.logger.WithError(err).Debug("login failed")
		return err
	}

	token, err := c.client.Login(ctx, api.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return fail(err)
	}

	c.mu.Lock()
	c.pending = token.AccessToken
	c.mu.Unlock()

	user, err := c.client.Me(ctx)
	if err != nil {
		return fail(err)
	}

	rec := credstore.Record{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		User:        user,
		SavedAt:     time.Now().UTC(),
	}
	applied, err := c.transitionFrom(StateAuthenticating, StateAuthenticated, user, func() error {
		if err := c.store.Set(rec); err != nil {
			return err
		}
		c.pending = ""
		return nil
	})
	if err != nil {
		return fail(err)
	}
	if !applied {
		return errors.New(errors.ErrCodeSessionBusy, errors.KindValidation, "login interrupted by logout")
	}

	c.logger.Info("logged in", "user", user.Email, "token", api.Fingerprint(token.AccessToken))
	c.notifier.Notify(notify.LevelSuccess, MessageLoggedIn)
	c.nav.Navigate(RouteHome)
	return nil
}

// Logout ends the session. Calling it again is a no-op apart from
// navigating to the login route.
func (c *Controller) Logout() {
	// the state leaves first so in-flight revalidations cannot write back
	c.mu.Lock()
	c.pending = ""
	wasAnonymous := c.snap.State == StateAnonymous
	var (
		snap Snapshot
		subs []func(Snapshot)
	)
	if !wasAnonymous {
		snap, subs = c.setLocked(StateAnonymous, nil)
	}
	c.mu.Unlock()

	c.clearStore()
	if !wasAnonymous {
		c.publish(snap, subs)
		c.notifier.Notify(notify.LevelSuccess, MessageLoggedOut)
	}
	c.nav.Navigate(RouteLogin)
}

// RefreshUser re-fetches the current identity; a failure logs out
func (c *Controller) RefreshUser(ctx context.Context) error {
	if !c.Snapshot().IsAuthenticated() {
		return nil
	}

	user, err := c.client.Me(ctx)
	if err != nil {
		if isCanceled(err) {
			return err
		}
		c.Logout()
		return err
	}

	// a teardown may have raced the refresh
	_, _ = c.transitionFrom(StateAuthenticated, StateAuthenticated, user, func() error {
		if rec, ok := c.store.Get(); ok {
			rec.User = user
			if err := c.store.Set(*rec); err != nil {
				c.logger.WithError(err).Warn("failed to refresh cached user")
			}
		}
		return nil
	})
	return nil
}

// handleUnauthorized is the client's 401 observer
func (c *Controller) handleUnauthorized(err error) {
	c.mu.Lock()
	state := c.snap.State
	c.mu.Unlock()

	switch state {
	case StateAuthenticating, StateBootstrapping:
		// the in-flight login or bootstrap handles its own failure
		return
	case StateAnonymous:
		c.clearStore()
		c.nav.Navigate(RouteLogin)
		return
	}

	c.logger.WithError(err).Info("session rejected by server")
	c.mu.Lock()
	c.pending = ""
	c.mu.Unlock()

	c.clearStore()
	c.transition(StateAnonymous, nil)
	c.notifier.Notify(notify.LevelWarning, MessageSessionExpired)
	c.nav.Navigate(RouteLogin)
}

func (c *Controller) clearStore() {
	if err := c.store.Clear(); err != nil {
		c.logger.WithError(err).Warn("failed to clear stored credential")
	}
}

func isCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
