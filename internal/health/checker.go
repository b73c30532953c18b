// Package health runs the diagnostics behind 'boss doctor'.
//
// Each Checker verifies one thing the console depends on: the API being
// reachable, the stored credential being safe on disk, the session being
// accepted by the API. The Manager runs them concurrently and reports the
// results in registration order.
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency
type Checker interface {
	// Name is a short lowercase identifier, e.g. "api" or "credentials"
	Name() string

	// Check must respect the context deadline
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check
type Status string

const (
	// StatusHealthy means the dependency is fully usable
	StatusHealthy Status = "healthy"

	// StatusDegraded means the console works with reduced functionality,
	// e.g. nobody is signed in yet
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means the console cannot work until this is fixed
	StatusUnhealthy Status = "unhealthy"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Result is what a check found
type Result struct {
	Name    string                 `json:"name" yaml:"name"`
	Status  Status                 `json:"status" yaml:"status"`
	Message string                 `json:"message" yaml:"message"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration          `json:"latency" yaml:"latency"`
}

// NewResult creates a result with the given status and message
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the result and returns the result for chaining.
func (r *Result) WithDetail(key string, value interface{}) *Result {
	r.Details[key] = value
	return r
}

// Healthy creates a healthy result with the given message.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result with the given message.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result with the given message.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
