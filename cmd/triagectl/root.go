package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pesio-ai/be-tbc-triage/internal/auth"
	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/config"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/httpclient"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/logger"
	"github.com/pesio-ai/be-tbc-triage/internal/tui"
)

// app carries what every command needs. Fields left nil are built in
// the root PersistentPreRunE.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *auth.Store
	rest   *httpclient.Client
	prompt tui.Prompter

	apiURL      string
	sessionPath string
	verbose     bool
	accessible  bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "triagectl",
		Short:         "Tuberculosis triage wizard and administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (default $API_URL)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", "", "session file (default under the user config dir)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&a.accessible, "accessible", false, "plain prompts for screen readers")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newAdminCmd(a),
		newDashboardCmd(a),
		newWizardCmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.apiURL != "" {
		a.cfg.Backend.BaseURL = a.apiURL
	}

	if a.log == nil {
		level := "warn"
		if a.verbose {
			level = "debug"
		}
		a.log = logger.New(logger.Config{Level: level, Environment: "development", Output: stderr})
	}

	if a.store == nil {
		path := a.sessionPath
		if path == "" {
			var err error
			if path, err = auth.DefaultPath(); err != nil {
				return err
			}
		}
		a.store = auth.NewStore(path)
	}

	if a.rest == nil {
		timeout := a.cfg.Backend.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		a.rest = httpclient.NewClient(a.cfg.Backend.BaseURL,
			httpclient.WithTimeout(timeout),
			httpclient.WithTokenSource(a.store.Token))
	}

	if a.prompt == nil {
		a.prompt = tui.HuhPrompter{Accessible: a.accessible || os.Getenv("ACCESSIBLE") != ""}
	}
	return nil
}

// requireSession fails unless an unexpired token is stored
func (a *app) requireSession() (*auth.Session, error) {
	sess, err := a.store.Session()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeUnauthorized, "not logged in, run: triagectl login")
	}
	return sess, nil
}

func (a *app) locations() *client.LocationsClient {
	return client.NewLocationsClient(a.rest, a.cfg.Backend.LocationsPrefix)
}
