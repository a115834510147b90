// Copyright (c) 2026 CoPla. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/copla/copla/internal/client/clienterr"
)

func newLoginCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username or email>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := app.readPassword("Password: ")
			if err != nil {
				return err
			}

			user, err := app.api.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			if err := app.state.SetAPIToken(app.api.SessionToken()); err != nil {
				return err
			}

			app.logger.Info("cli_login", slog.Int64("user_id", user.ID))
			app.printf("%s\n", app.theme().Success.Render("Logged in as "+user.Username))
			return nil
		},
	}
}

func newLogoutCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The local token is dropped even if the server call fails.
			logoutErr := app.api.Logout(cmd.Context())
			if err := app.state.SetAPIToken(""); err != nil {
				return err
			}
			if logoutErr != nil {
				app.logger.Warn("cli_logout_failed", slog.Any("error", logoutErr))
			}
			app.printf("Logged out\n")
			return nil
		},
	}
}

func newWhoamiCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := app.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			if me.Username == "" {
				app.printf("%s\n", app.theme().Muted.Render("Not logged in"))
				return nil
			}

			role := me.Role
			if me.IsArtist {
				role += ", artist"
			}
			app.printf("%s %s\n", app.theme().Title.Render(me.Username), app.theme().Muted.Render("("+role+")"))
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func (a *app) readPassword(prompt string) (string, error) {
	if file, ok := a.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(a.out, prompt)
		raw, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("password_read_failed: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(a.in).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("password_read_failed: %w", err)
		}
		return "", clienterr.New(clienterr.Validation, "Password is required")
	}
	return line, nil
}
