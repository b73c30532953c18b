// Package api is the gateway to the BOSS back-office HTTP API.
//
// Every network call made by the console goes through Client. It attaches
// the bearer token, classifies each response into exactly one outcome
// (success, unauthorized, server error, not found, offline, bad request),
// and applies the shared failure policy in one place: unauthorized
// responses fire the registered observers, and server, not-found and
// offline failures raise a user notification.
package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/log"
	"github.com/felixgeelhaar/boss/internal/notify"
)

const (
	// DefaultBaseURL is used when no API URL is configured
	DefaultBaseURL = "http://localhost:8000"
	// DefaultPrefix is the versioned path every endpoint lives under
	DefaultPrefix = "/api/v1"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// User-facing notification texts
const (
	MessageServerError = "A server error occurred"
	MessageNotFound    = "The requested data was not found"
	MessageOffline     = "Not connected to the network"
)

// Config holds client settings
type Config struct {
	BaseURL    string
	Prefix     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string
}

// DefaultConfig returns the default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Prefix:     DefaultPrefix,
		Timeout:    30 * time.Second,
		MaxRetries: 1,
		RetryDelay: 500 * time.Millisecond,
		UserAgent:  "boss-cli",
	}
}

// TokenSource supplies the bearer token for authenticated calls.
// An empty token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource
type StaticToken string

// Token returns the token
func (t StaticToken) Token() string { return string(t) }

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithNotifier sets the notifier used for failure notifications
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.cfg.UserAgent = ua
		}
	}
}

// WithLogger sets the request logger
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client is the BOSS API client
type Client struct {
	cfg        Config
	httpClient *http.Client
	notifier   notify.Notifier
	logger     *log.Logger

	mu           sync.RWMutex
	tokens       TokenSource
	observers    map[int]func(error)
	nextObserver int

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a new API client
func New(cfg Config, opts ...Option) *Client {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaults.Prefix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		notifier:   notify.Discard,
		logger:     log.Discard(),
		tokens:     StaticToken(""),
		observers:  make(map[int]func(error)),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective client configuration
func (c *Client) Config() Config {
	return c.cfg
}

// SetTokenSource replaces the token source
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts == nil {
		ts = StaticToken("")
	}
	c.tokens = ts
}

// OnUnauthorized registers fn to run whenever an authenticated call receives
// a 401. Observers run synchronously, before the error reaches the caller.
// The returned func removes the observer.
func (c *Client) OnUnauthorized(fn func(error)) (remove func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Endpoint returns the absolute URL for an API path
func (c *Client) Endpoint(path string) string {
	return c.cfg.BaseURL + c.cfg.Prefix + path
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens.Token()
}

// request describes one logical API call
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	// authenticated calls carry the bearer token and trigger the 401 observers
	authenticated bool
	// unprefixed paths are resolved against the base URL, not the API prefix
	unprefixed bool
	// silent calls report failures only through the returned error
	silent bool
}

func jsonRequest(method, path string, payload interface{}) (request, error) {
	req := request{method: method, path: path, authenticated: true}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return req, errors.Wrap(errors.ErrCodeBadRequest, errors.KindInternal, "failed to marshal request body", err)
		}
		req.body = body
		req.contentType = contentTypeJSON
	}
	return req, nil
}

// do performs req, retrying idempotent reads, and decodes a 2xx body into out
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	attempts := 1
	if req.method == http.MethodGet {
		attempts += c.cfg.MaxRetries
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = c.once(ctx, req, out, attempt)
		if err == nil {
			return nil
		}
		if attempt >= attempts || !errors.KindOf(err).Retryable() || ctx.Err() != nil {
			break
		}
		if serr := c.sleep(ctx, c.cfg.RetryDelay); serr != nil {
			return serr
		}
	}

	c.applyPolicy(req, err)
	return err
}

// applyPolicy runs the side effects for the final outcome of a call
func (c *Client) applyPolicy(req request, err error) {
	if req.silent && errors.KindOf(err) != errors.KindUnauthorized {
		return
	}
	switch errors.KindOf(err) {
	case errors.KindUnauthorized:
		if req.authenticated {
			c.fireUnauthorized(err)
		}
	case errors.KindServer:
		c.notifier.Notify(notify.LevelError, MessageServerError)
	case errors.KindNotFound:
		c.notifier.Notify(notify.LevelError, MessageNotFound)
	case errors.KindOffline:
		c.notifier.Notify(notify.LevelError, MessageOffline)
	}
}

func (c *Client) fireUnauthorized(err error) {
	c.mu.RLock()
	observers := make([]func(error), 0, len(c.observers))
	for i := 0; i < c.nextObserver; i++ {
		if fn, ok := c.observers[i]; ok {
			observers = append(observers, fn)
		}
	}
	c.mu.RUnlock()

	for _, fn := range observers {
		fn(err)
	}
}

func (c *Client) once(ctx context.Context, req request, out interface{}, attempt int) error {
	target := c.Endpoint(req.path)
	if req.unprefixed {
		target = c.cfg.BaseURL + req.path
	}
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBadRequest, errors.KindInternal, "failed to create request", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	token := ""
	if req.authenticated {
		token = c.token()
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger := c.logger.With(
		"method", req.method,
		"path", req.path,
		"request_id", requestID,
		"attempt", attempt,
	)
	if token != "" {
		logger = logger.With("token", Fingerprint(token))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.WithError(err).Debug("request failed", "duration", time.Since(start))
		return errors.NewOfflineError(err)
	}
	defer resp.Body.Close()

	logger.Debug("request completed", "status", resp.StatusCode, "duration", time.Since(start))

	if err := classify(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewOfflineError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(errors.ErrCodeDecode, errors.KindInternal, "failed to decode response", err).
			WithStatus(resp.StatusCode)
	}
	return nil
}

// classify maps a non-2xx response to its error kind
func classify(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := errorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.NewSessionExpiredError(message)
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewNotFoundError(message)
	case resp.StatusCode >= 500:
		return errors.NewServerError(resp.StatusCode, message)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		if message == "" {
			message = "request validation failed"
		}
		return errors.New(errors.ErrCodeInvalidField, errors.KindValidation, message).WithStatus(resp.StatusCode)
	default:
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return errors.New(errors.ErrCodeBadRequest, errors.KindRequest, message).WithStatus(resp.StatusCode)
	}
}

// ErrorResponse is the error body returned by the API
type ErrorResponse struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// errorMessage extracts a readable message from an error body.
// detail is either a string or a list of {msg} validation entries.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		return ""
	}

	if len(errResp.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(errResp.Detail, &detail); err == nil {
			return detail
		}
		var entries []struct {
			Msg string        `json:"msg"`
			Loc []interface{} `json:"loc"`
		}
		if err := json.Unmarshal(errResp.Detail, &entries); err == nil {
			msgs := make([]string, 0, len(entries))
			for _, e := range entries {
				if field := fieldPath(e.Loc); field != "" {
					msgs = append(msgs, field+": "+e.Msg)
				} else {
					msgs = append(msgs, e.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	return errResp.Error
}

// fieldPath renders a validation location such as ["body","items",0,"qty"]
// as "items.0.qty". Indexes arrive as JSON numbers.
func fieldPath(loc []interface{}) string {
	parts := make([]string, 0, len(loc))
	for i, p := range loc {
		part := fmt.Sprint(p)
		if i == 0 && len(loc) > 1 && (part == "body" || part == "query" || part == "path") {
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ".")
}

// Fingerprint returns a short, stable, non-reversible identifier for a token
// so that logs can correlate requests without exposing the credential.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
