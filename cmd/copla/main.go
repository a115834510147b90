// Copyright (c) 2026 CoPla. All rights reserved.

// Command copla is the terminal client for CoPla.
//
// It browses the artist directory, manages the login session and runs the
// Bluesky verification and following sync flows. Configuration lives in
// $XDG_CONFIG_HOME/copla/config.yaml; client state (the session token and the
// provider session) lives next to it in state.yaml. Logs go to a rotating
// file, never to the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/copla/copla/internal/client/clienterr"
	"github.com/copla/copla/internal/client/coplaapi"
	"github.com/copla/copla/internal/client/localstore"
	"github.com/copla/copla/internal/client/prefs"
	"github.com/copla/copla/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &app{in: os.Stdin, out: os.Stdout}
	err := newRootCommand(app).ExecuteContext(ctx)
	app.close()

	if err != nil {
		fmt.Fprintln(os.Stderr, app.theme().Error.Render("Error: "+clienterr.Message(err)))
		os.Exit(1)
	}
}

// app is the state shared by every command of one invocation.
type app struct {
	in  io.Reader
	out io.Writer

	// Flags
	configPath string
	apiURL     string
	themeFlag  string
	debug      bool

	config *cliConfig
	state  *localstore.Store
	api    *coplaapi.Client
	logger *slog.Logger
	prefs  prefs.Preferences

	logCloser io.Closer
}

func newRootCommand(app *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "copla",
		Short:         "Browse CoPla artists and link your Bluesky account",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/copla/config.yaml)")
	flags.StringVar(&app.apiURL, "api", "", "API base URL, overrides api_url")
	flags.StringVar(&app.themeFlag, "theme", "", "color theme: light or dark")
	flags.BoolVar(&app.debug, "debug", false, "write debug records to the log file")

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newArtistsCommand(app),
		newTagsCommand(app),
		newFollowingCommand(app),
		newThemeCommand(app),
		newBlueskyCommand(app),
	)
	return root
}

// setup loads configuration and builds the API client, state store and logger.
func (a *app) setup() error {
	if a.configPath == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		a.configPath = filepath.Join(dir, configFileName)
	}

	config, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		config.APIURL = a.apiURL
	}
	a.config = config

	mode := config.Theme
	if a.themeFlag != "" {
		if mode, err = prefs.ParseMode(a.themeFlag); err != nil {
			return err
		}
	}
	a.prefs = prefs.New(mode, nil)

	a.logger, a.logCloser = logging.New(logging.Options{
		Debug:    a.debug || config.Debug,
		FilePath: config.LogFile,
		Attrs:    []slog.Attr{slog.String("app", "copla-cli")},
	})
	slog.SetDefault(a.logger)

	a.state = localstore.Open(config.StateFile)

	a.api, err = coplaapi.New(config.APIURL, coplaapi.WithLogger(a.logger))
	if err != nil {
		return err
	}

	token, err := a.state.APIToken()
	if err != nil {
		return err
	}
	if token != "" {
		a.api.SetSessionToken(token)
	}
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// theme is usable before setup so startup errors are styled too.
func (a *app) theme() prefs.Theme {
	if a.config == nil {
		return prefs.NewTheme(prefs.ModeDark)
	}
	return a.prefs.Theme
}

// printf writes to the command output.
func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// currentUsername returns the logged-in username or NoSession.
func (a *app) currentUsername(ctx context.Context) (string, error) {
	username, err := a.api.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	if username == "" {
		return "", clienterr.New(clienterr.NoSession, "Not logged in; run copla login first")
	}
	return username, nil
}
