package ux

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/boss/internal/errors"
)

func TestNewErrorWithSuggestion(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		suggestion string
		wantNil    bool
	}{
		{
			name:       "nil error returns nil",
			err:        nil,
			suggestion: "some suggestion",
			wantNil:    true,
		},
		{
			name:       "error with suggestion",
			err:        stderrors.New("something failed"),
			suggestion: "try this fix",
		},
		{
			name:       "error without suggestion",
			err:        stderrors.New("something failed"),
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewErrorWithSuggestion(tt.err, tt.suggestion)
			if tt.wantNil {
				if result != nil {
					t.Errorf("NewErrorWithSuggestion() = %v, want nil", result)
				}
				return
			}

			if result == nil {
				t.Fatal("NewErrorWithSuggestion() returned nil, want error")
			}

			errMsg := result.Error()
			if !strings.Contains(errMsg, tt.err.Error()) {
				t.Errorf("Error message %q does not contain original error %q", errMsg, tt.err.Error())
			}
			if tt.suggestion != "" && !strings.Contains(errMsg, tt.suggestion) {
				t.Errorf("Error message %q does not contain suggestion %q", errMsg, tt.suggestion)
			}
			if !stderrors.Is(result, tt.err) {
				t.Error("wrapped error is not reachable with errors.Is")
			}
		})
	}
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantSuggestion string
	}{
		{
			name:           "credential permissions",
			err:            stderrors.New("open /home/op/.boss/credentials.json: permission denied"),
			wantSuggestion: "BOSS_CREDENTIAL_DIR",
		},
		{
			name:           "certificate",
			err:            stderrors.New("x509: certificate signed by unknown authority"),
			wantSuggestion: "BOSS_API_URL",
		},
		{
			name:           "unknown command",
			err:            stderrors.New(`unknown command "memebrs" for "boss"`),
			wantSuggestion: "boss --help",
		},
		{
			name: "unrelated error is unchanged",
			err:  stderrors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhanceError(tt.err)
			if tt.wantSuggestion == "" {
				if got != tt.err {
					t.Errorf("EnhanceError() = %v, want unchanged", got)
				}
				return
			}
			if !strings.Contains(got.Error(), tt.wantSuggestion) {
				t.Errorf("EnhanceError() = %q, want suggestion containing %q", got.Error(), tt.wantSuggestion)
			}
		})
	}
}

func TestEnhanceErrorKeepsClassified(t *testing.T) {
	err := errors.NewNotLoggedInError()
	if got := EnhanceError(err); got != error(err) {
		t.Errorf("EnhanceError() changed a classified error: %v", got)
	}
	if EnhanceError(nil) != nil {
		t.Error("EnhanceError(nil) should be nil")
	}
}

func TestRenderError(t *testing.T) {
	out := RenderError(errors.NewOfflineError(stderrors.New("dial tcp 127.0.0.1:8000: connection refused")))
	for _, want := range []string{"Error:", "network is unreachable", "connection refused", "boss config view"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderError() = %q, missing %q", out, want)
		}
	}
	if strings.Contains(out, "[API-003]") {
		t.Errorf("RenderError() should not show the raw code: %q", out)
	}

	if RenderError(nil) != "" {
		t.Error("RenderError(nil) should be empty")
	}
}
