// Copyright (c) 2026 CoPla. All rights reserved.

package linking

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/copla/copla/internal/client/bluesky"
	"github.com/copla/copla/internal/client/clienterr"
)

// State is a step of the verification flow.
type State string

const (
	StateInitial         State = "initial"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateVerifySubmitted State = "verify-submitted"
)

// VerificationFlow proves ownership of a provider account and links it.
// One flow serves one viewer; its methods are safe to call concurrently.
type VerificationFlow struct {
	loader *Loader
	api    LinkingAPI
	hints  HintStore
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	session Session
	profile *bluesky.Profile
}

// NewVerificationFlow returns a flow in [StateInitial].
func NewVerificationFlow(loader *Loader, api LinkingAPI, hints HintStore, logger *slog.Logger) *VerificationFlow {
	return &VerificationFlow{loader: loader, api: api, hints: hints, logger: logger, state: StateInitial}
}

// State returns the current step.
func (f *VerificationFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Profile returns the authenticated provider profile, or nil.
func (f *VerificationFlow) Profile() *bluesky.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil {
		return nil
	}
	copied := *f.profile
	return &copied
}

/*
Init loads the provider and restores an existing session.

With a session the profile is fetched and the flow becomes authenticated;
otherwise it stays initial.
*/
func (f *VerificationFlow) Init(ctx context.Context) error {
	provider, err := f.loader.Get(ctx)
	if err != nil {
		return err
	}

	session, err := provider.Restore(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	return f.authenticate(ctx, session)
}

// authenticate fetches the profile of session and stores both.
func (f *VerificationFlow) authenticate(ctx context.Context, session Session) error {
	profile, err := session.GetProfile(ctx, session.DID())
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.session, f.profile, f.state = session, profile, StateAuthenticated
	f.mu.Unlock()

	f.logger.Info("bluesky_authenticated", slog.String("did", profile.DID), slog.String("handle", profile.Handle))
	return nil
}

/*
BeginAuthentication starts the provider redirect for username.

Parameters:
  - username: string (local account the link is for, kept as a hint)
  - handleHint: string (provider handle to authorize)

Returns:
  - string: The URL to send the user to
  - error: Validation on empty input, otherwise the provider error
*/
func (f *VerificationFlow) BeginAuthentication(ctx context.Context, username, handleHint string) (string, error) {
	if username == "" {
		return "", clienterr.New(clienterr.Validation, "Username is required")
	}
	if bluesky.NormalizeHandle(handleHint) == "" {
		return "", clienterr.New(clienterr.Validation, "Bluesky handle is required")
	}

	provider, err := f.loader.Get(ctx)
	if err != nil {
		return "", err
	}

	if err := f.hints.SetHint(ctx, HintKey, username); err != nil {
		return "", err
	}

	authURL, err := provider.Authorize(ctx, handleHint)
	if err != nil {
		_ = f.hints.ClearHint(ctx, HintKey)
		return "", err
	}

	f.mu.Lock()
	f.state = StateAuthenticating
	f.mu.Unlock()
	return authURL, nil
}

/*
HandleCallback completes the redirect and returns the username the flow was
started for. The hint is cleared whatever the outcome.
*/
func (f *VerificationFlow) HandleCallback(ctx context.Context, params url.Values) (string, error) {
	target, _, hintErr := f.hints.Hint(ctx, HintKey)
	defer func() {
		if err := f.hints.ClearHint(ctx, HintKey); err != nil {
			f.logger.Warn("verification_hint_clear_failed", slog.Any("error", err))
		}
	}()
	if hintErr != nil {
		return "", hintErr
	}

	provider, err := f.loader.Get(ctx)
	if err != nil {
		return "", err
	}

	session, err := provider.Callback(ctx, params)
	if err != nil {
		f.mu.Lock()
		f.state = StateInitial
		f.mu.Unlock()
		return "", err
	}

	if err := f.authenticate(ctx, session); err != nil {
		f.mu.Lock()
		f.session, f.profile, f.state = nil, nil, StateInitial
		f.mu.Unlock()
		return "", err
	}
	return target, nil
}

/*
SubmitLink sends the authenticated identity and its session to the backend.

Returns:
  - string: The success message
  - error: NoSession when not authenticated, otherwise the backend error.
    The flow stays authenticated so the call can be retried.
*/
func (f *VerificationFlow) SubmitLink(ctx context.Context) (string, error) {
	f.mu.Lock()
	session, profile := f.session, f.profile
	f.mu.Unlock()

	if session == nil || profile == nil {
		return "", clienterr.ErrNoSession
	}

	exported, err := session.Export()
	if err != nil {
		return "", err
	}

	displayName := profile.DisplayName
	if displayName == "" {
		displayName = profile.Handle
	}

	err = f.api.LinkBluesky(ctx, LinkRequest{
		RemoteID:          profile.DID,
		RemoteHandle:      profile.Handle,
		RemoteDisplayName: displayName,
		SessionData:       exported,
	})
	if err != nil {
		f.logger.Warn("bluesky_link_failed", slog.String("handle", profile.Handle), slog.Any("error", err))
		return "", err
	}

	f.mu.Lock()
	f.state = StateVerifySubmitted
	f.mu.Unlock()
	return fmt.Sprintf("Successfully linked Bluesky account %s", profile.Handle), nil
}

// Disconnect signs out of the provider and returns to [StateInitial].
// Local state is cleared even when sign-out fails.
func (f *VerificationFlow) Disconnect(ctx context.Context) error {
	provider, err := f.loader.Get(ctx)
	if err == nil {
		err = provider.SignOut(ctx)
	}

	f.mu.Lock()
	f.session, f.profile, f.state = nil, nil, StateInitial
	f.mu.Unlock()
	return err
}
