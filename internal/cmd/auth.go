package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/session"
	"github.com/felixgeelhaar/boss/internal/tui"
	"github.com/felixgeelhaar/boss/internal/ux"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the operator session",
	Long: `Sign in to and out of the BOSS API.

The access token is stored in ~/.boss/credentials.json (mode 0600). Set
BOSS_CREDENTIAL_KEY to encrypt the file with a passphrase.

Subcommands:
  login     Sign in with email and password
  logout    Sign out and remove the stored token
  status    Show who is signed in

Examples:
  boss auth login --email admin@example.com
  boss auth status
  boss auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the BOSS API",
	Long: `Sign in with email and password. Missing values are prompted for when
the terminal is interactive.

Examples:
  boss auth login
  boss auth login --email admin@example.com --password secret
  boss auth login --force`,
	RunE: public(runAuthLogin),
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored token",
	RunE:  public(runAuthLogout),
}

var authStatusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Show the signed-in operator",
	Long: `Verify the stored token against the API and show the operator it
belongs to. Exits with status 5 when not signed in.`,
	RunE: protected(runAuthStatus),
}

func init() {
	authLoginCmd.Flags().String("email", "", "operator email address")
	authLoginCmd.Flags().String("password", "", "operator password")
	authLoginCmd.Flags().Bool("force", false, "sign in again even when a session exists")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string, d *deps) error {
	ctx := cmd.Context()
	force, _ := cmd.Flags().GetBool("force")

	if err := d.ctrl.Bootstrap(ctx); err != nil && ctx.Err() != nil {
		return err
	}
	if snap := d.ctrl.Snapshot(); snap.IsAuthenticated() && !force {
		fmt.Fprintf(cmd.OutOrStdout(), "Already logged in as %s. Use --force to sign in again.\n", snap.User.Email)
		return nil
	}

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	creds := session.Credentials{Email: strings.TrimSpace(email), Password: password}

	if creds.Email == "" || creds.Password == "" {
		if !tui.ShouldPrompt() {
			return errors.New(errors.ErrCodeInvalidField, errors.KindValidation,
				"--email and --password are required when not running interactively")
		}
		var err error
		if creds, err = tui.PromptForCredentials(creds); err != nil {
			return err
		}
	}

	if err := creds.Validate(); err != nil {
		return err
	}

	if err := d.ctrl.Login(ctx, creds); err != nil {
		return err
	}

	user := d.ctrl.Snapshot().User
	return render(cmd, d.cfg, user, userView(user))
}

func runAuthLogout(cmd *cobra.Command, args []string, d *deps) error {
	if _, ok := d.store.Get(); !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}

	d.ctrl.Logout()
	fmt.Fprintln(cmd.OutOrStdout(), "Use 'boss auth login' to sign in again.")
	return nil
}

// authStatus is what auth status reports
type authStatus struct {
	User           *api.User  `json:"user" yaml:"user"`
	APIURL         string     `json:"api_url" yaml:"api_url"`
	TokenType      string     `json:"token_type" yaml:"token_type"`
	Fingerprint    string     `json:"fingerprint" yaml:"fingerprint"`
	SavedAt        time.Time  `json:"saved_at" yaml:"saved_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	CredentialFile string     `json:"credential_file" yaml:"credential_file"`
	Sealed         bool       `json:"sealed" yaml:"sealed"`
}

func runAuthStatus(cmd *cobra.Command, args []string, d *deps) error {
	rec, ok := d.store.Get()
	if !ok {
		return errors.NewNotLoggedInError()
	}

	status := authStatus{
		User:           d.ctrl.Snapshot().User,
		APIURL:         d.cfg.APIURL,
		TokenType:      rec.TokenType,
		Fingerprint:    api.Fingerprint(rec.AccessToken),
		SavedAt:        rec.SavedAt,
		ExpiresAt:      tokenExpiry(rec.AccessToken, rec.SavedAt, rec.ExpiresIn),
		CredentialFile: d.store.Path(),
		Sealed:         d.store.Sealed(),
	}

	view := append(userView(status.User),
		[2]string{"API", status.APIURL},
		[2]string{"Token", status.Fingerprint},
		[2]string{"Saved", status.SavedAt.Local().Format(time.RFC1123)},
	)
	if status.ExpiresAt != nil {
		view = append(view, [2]string{"Expires", status.ExpiresAt.Local().Format(time.RFC1123)})
	}
	sealed := "no"
	if status.Sealed {
		sealed = "yes"
	}
	view = append(view,
		[2]string{"Credentials", status.CredentialFile},
		[2]string{"Encrypted", sealed},
	)

	return render(cmd, d.cfg, status, view)
}

// tokenExpiry reads the exp claim without verifying the signature; the
// API is the authority. Opaque tokens fall back to expires_in.
func tokenExpiry(raw string, savedAt time.Time, expiresIn int) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			t := exp.Time
			return &t
		}
	}
	if expiresIn > 0 && !savedAt.IsZero() {
		t := savedAt.Add(time.Duration(expiresIn) * time.Second)
		return &t
	}
	return nil
}

func userView(u *api.User) ux.KeyValues {
	if u == nil {
		return ux.KeyValues{}
	}
	active := "yes"
	if !u.IsActive {
		active = "no"
	}
	return ux.KeyValues{
		{"Email", u.Email},
		{"Name", u.FullName},
		{"Role", u.Role},
		{"Active", active},
	}
}
