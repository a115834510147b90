// Copyright (c) 2026 CoPla. All rights reserved.

package clienterr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/copla/copla/internal/client/clienterr"
)

/*
TestFromStatus classifies HTTP statuses into kinds.
*/
func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   clienterr.Kind
	}{
		{404, clienterr.NotFound},
		{400, clienterr.Validation},
		{422, clienterr.Validation},
		{401, clienterr.Network},
		{409, clienterr.Network},
		{500, clienterr.Network},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := clienterr.FromStatus(tt.status, "boom")
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, tt.want, clienterr.KindOf(err))
		})
	}

	assert.Equal(t, "Request failed with status 503", clienterr.FromStatus(503, "").Error())
}

/*
TestMessage renders wrapped, foreign and nil errors without panicking.
*/
func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("sync: %w", clienterr.ErrNoSession)

	assert.Equal(t, "", clienterr.Message(nil))
	assert.Equal(t, "No active session found; verify account first", clienterr.Message(wrapped))
	assert.Equal(t, "plain", clienterr.Message(errors.New("plain")))
	assert.Equal(t, "not_found", clienterr.Message(&clienterr.Error{Kind: clienterr.NotFound}))

	assert.ErrorIs(t, wrapped, clienterr.NoSession)
	assert.NotErrorIs(t, wrapped, clienterr.Network)
}

/*
TestTransport keeps the cause reachable.
*/
func TestTransport(t *testing.T) {
	cause := errors.New("connection refused")
	err := clienterr.Transport(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, clienterr.Network)
	assert.Equal(t, clienterr.Network, clienterr.KindOf(errors.New("foreign")))
}
