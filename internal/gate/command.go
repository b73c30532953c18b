package gate

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/session"
)

// Bootstrapper is a StateSource that can settle its own session
type Bootstrapper interface {
	StateSource
	Bootstrap(ctx context.Context) error
}

// RunFunc is a cobra RunE
type RunFunc func(cmd *cobra.Command, args []string) error

// RequireAuth wraps run so that it only executes with an authenticated
// session. The session is bootstrapped first when it has not settled yet.
func RequireAuth(src func() (Bootstrapper, error), run RunFunc) RunFunc {
	return func(cmd *cobra.Command, args []string) error {
		ctrl, err := src()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if ctrl.Snapshot().State == session.StateBootstrapping {
			if err := ctrl.Bootstrap(ctx); err != nil && !errors.Is(err, errors.KindUnauthorized) {
				// offline or server trouble is more useful than "not logged in"
				return err
			}
		}

		switch Decide(ctrl.Snapshot()) {
		case Render:
			return run(cmd, args)
		default:
			return errors.NewNotLoggedInError()
		}
	}
}
