// Copyright (c) 2026 CoPla. All rights reserved.

package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/copla/copla/internal/client/bluesky"
	"github.com/copla/copla/internal/client/clienterr"
	"github.com/copla/copla/internal/client/linking"
)

// providerLoader builds the provider client from the published client
// metadata on first use. An empty redirectURI takes the document's first one.
func (a *app) providerLoader(redirectURI string) *linking.Loader {
	return linking.NewLoader(func(ctx context.Context) (linking.IdentityProvider, error) {
		client, err := bluesky.Load(ctx, a.config.clientOrigin(), bluesky.Options{
			RedirectURI: redirectURI,
			States:      a.state,
			Sessions:    a.state,
			Logger:      a.logger,
		})
		if err != nil {
			return nil, err
		}
		return linking.FromBluesky(client), nil
	})
}

func newBlueskyCommand(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bluesky",
		Short: "Verify, disconnect and sync your Bluesky account",
	}
	cmd.AddCommand(
		newBlueskyVerifyCommand(app),
		newBlueskyDisconnectCommand(app),
		newBlueskySyncCommand(app),
	)
	return cmd
}

func newBlueskyVerifyCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [handle]",
		Short: "Prove you own a Bluesky account and link it to your profile",
		Long: `Signs in to Bluesky in the browser and links the account to your CoPla
profile. Linking a Bluesky account verifies an artist profile.

Without a handle the stored Bluesky session is reused when there is one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			username, err := app.currentUsername(ctx)
			if err != nil {
				return err
			}

			var handle string
			if len(args) == 1 {
				handle = bluesky.NormalizeHandle(args[0])
			}

			callback, err := listenCallback(app.config.CallbackPort, app.logger)
			if err != nil {
				return err
			}
			defer callback.Close()

			flow := linking.NewVerificationFlow(app.providerLoader(callback.RedirectURI()), app.api, app.state, app.logger)
			if err := flow.Init(ctx); err != nil {
				// A stale stored session is replaced by signing in again.
				if handle == "" {
					return err
				}
				app.logger.Warn("bluesky_restore_failed", slog.Any("error", err))
			}

			profile := flow.Profile()
			if profile == nil || (handle != "" && profile.Handle != handle) {
				if err := authenticate(ctx, app, flow, callback, username, handle); err != nil {
					return err
				}
			}

			message, err := flow.SubmitLink(ctx)
			if err != nil {
				return err
			}
			app.printf("%s\n", app.theme().Success.Render(message))
			return nil
		},
	}
}

// authenticate runs the browser redirect and waits for the callback.
func authenticate(ctx context.Context, app *app, flow *linking.VerificationFlow, callback *callbackServer, username, handle string) error {
	authURL, err := flow.BeginAuthentication(ctx, username, handle)
	if err != nil {
		return err
	}

	app.printf("Open this URL in your browser to authorize CoPla:\n\n  %s\n\n", authURL)
	app.printf("%s\n", app.theme().Muted.Render("Waiting for the redirect..."))

	waitCtx, cancel := context.WithTimeout(ctx, bluesky.PendingTTL)
	defer cancel()

	params, err := callback.Wait(waitCtx)
	if err != nil {
		return err
	}

	target, err := flow.HandleCallback(ctx, params)
	if err != nil {
		return err
	}
	if target != username {
		return clienterr.New(clienterr.Validation, "Verification was started for %s, not %s", target, username)
	}
	return nil
}

func newBlueskyDisconnectCommand(app *app) *cobra.Command {
	var unlink bool

	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Sign out of Bluesky on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			flow := linking.NewVerificationFlow(app.providerLoader(""), app.api, app.state, app.logger)
			if err := flow.Init(ctx); err != nil {
				return err
			}
			profile := flow.Profile()

			if err := flow.Disconnect(ctx); err != nil {
				app.logger.Warn("bluesky_sign_out_failed", slog.Any("error", err))
			}

			if unlink && profile != nil {
				username, err := app.currentUsername(ctx)
				if err != nil {
					return err
				}
				if err := app.api.UnlinkSocial(ctx, username, "bluesky", profile.Handle); err != nil {
					return err
				}
				app.printf("Removed %s from your profile\n", profile.Handle)
			}

			app.printf("Disconnected from Bluesky\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&unlink, "unlink", false, "also remove the account from your CoPla profile")
	return cmd
}

func newBlueskySyncCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Rebuild your following list from Bluesky",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			username, err := app.currentUsername(ctx)
			if err != nil {
				return err
			}

			refresh := func() {
				edges, err := app.api.FollowingEdges(ctx, username, false)
				if err != nil {
					app.logger.Warn("following_refresh_failed", slog.Any("error", err))
					return
				}
				app.printf("%s", renderFollowing(app.theme(), edges))
			}

			sync := linking.NewFollowingSync(app.providerLoader(""), app.api, app.logger)
			message, err := sync.Sync(ctx, username, refresh)
			if err != nil {
				return err
			}
			app.printf("%s\n", app.theme().Success.Render(message))
			return nil
		},
	}
}
