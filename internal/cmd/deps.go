package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/config"
	"github.com/felixgeelhaar/boss/internal/credstore"
	"github.com/felixgeelhaar/boss/internal/gate"
	"github.com/felixgeelhaar/boss/internal/log"
	"github.com/felixgeelhaar/boss/internal/notify"
	"github.com/felixgeelhaar/boss/internal/session"
	"github.com/felixgeelhaar/boss/internal/version"
)

// deps are the objects a command works with
type deps struct {
	cfg    *config.Config
	logger *log.Logger
	client *api.Client
	store  *credstore.FileStore
	ctrl   *session.Controller
}

type depsOptions struct {
	notifier  notify.Notifier
	logOutput io.Writer
	session   []session.Option
}

// loadConfig resolves the configuration and applies the persistent flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: flagConfig})
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = flagAPIURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("output") {
		cfg.Output = flagOutput
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDeps(cmd *cobra.Command, opts depsOptions) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log()
	if opts.logOutput != nil {
		logCfg.Output = opts.logOutput
	}
	logger := log.New(logCfg)

	notifier := opts.notifier
	if notifier == nil {
		notifier = notify.NewPrinter(cmd.ErrOrStderr())
	}

	client := api.New(cfg.API(),
		api.WithNotifier(notifier),
		api.WithLogger(logger),
		api.WithUserAgent(version.GetInfo().UserAgent()),
	)

	storeOpts := []credstore.FileOption{credstore.WithLogger(logger)}
	if cfg.CredentialKey != "" {
		storeOpts = append(storeOpts, credstore.WithPassphrase(cfg.CredentialKey))
	}
	store := credstore.NewFileStore(cfg.CredentialDir, storeOpts...)

	sessionOpts := append([]session.Option{
		session.WithNotifier(notifier),
		session.WithLogger(logger),
	}, opts.session...)
	ctrl := session.NewController(client, store, sessionOpts...)

	logger.Debug("initialized",
		"api_url", cfg.APIURL,
		"credentials", store.Path(),
		"sealed", store.Sealed(),
	)

	return &deps{cfg: cfg, logger: logger, client: client, store: store, ctrl: ctrl}, nil
}

// cliDeps builds deps for a one-shot command; notifications go to stderr
func cliDeps(cmd *cobra.Command) (*deps, error) {
	return newDeps(cmd, depsOptions{})
}

func (d *deps) close() {
	d.ctrl.Close()
}

// runWithDeps is the signature of commands that need the API
type runWithDeps func(cmd *cobra.Command, args []string, d *deps) error

// protected runs fn only once the stored session has been verified
func protected(fn runWithDeps) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := cliDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		run := gate.RequireAuth(
			func() (gate.Bootstrapper, error) { return d.ctrl, nil },
			func(cmd *cobra.Command, args []string) error { return fn(cmd, args, d) },
		)
		return run(cmd, args)
	}
}

// public runs fn with deps but without requiring a session
func public(fn runWithDeps) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := cliDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()
		return fn(cmd, args, d)
	}
}

func noColor() bool {
	return os.Getenv("NO_COLOR") != ""
}
