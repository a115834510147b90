// Copyright (c) 2026 CoPla. All rights reserved.

package seal_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copla/copla/internal/platform/seal"
)

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

/*
TestSealer_RoundTrip verifies a sealed value opens with the same owner binding.
*/
func TestSealer_RoundTrip(t *testing.T) {
	sealer, err := seal.New(testSecret)
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte(`{"did":"did:plc:ana"}`), []byte("user:7"))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "did:plc")

	opened, err := sealer.Open(sealed, []byte("user:7"))
	require.NoError(t, err)
	assert.Equal(t, `{"did":"did:plc:ana"}`, string(opened))
}

/*
TestSealer_RejectsOtherOwnerAndTampering verifies authentication failures.
*/
func TestSealer_RejectsOtherOwnerAndTampering(t *testing.T) {
	sealer, err := seal.New(testSecret)
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("session"), []byte("user:7"))
	require.NoError(t, err)

	_, err = sealer.Open(sealed, []byte("user:8"))
	assert.ErrorIs(t, err, seal.ErrMalformed)

	_, err = sealer.Open("not base64!", []byte("user:7"))
	assert.ErrorIs(t, err, seal.ErrMalformed)

	_, err = sealer.Open("AAAA", []byte("user:7"))
	assert.ErrorIs(t, err, seal.ErrMalformed)
}

/*
TestNew_SecretRules verifies the accepted secret shapes.
*/
func TestNew_SecretRules(t *testing.T) {
	_, err := seal.New("short")
	assert.Error(t, err)

	_, err = seal.New(strings.Repeat("p", 40))
	assert.NoError(t, err)

	_, err = seal.New(testSecret)
	assert.NoError(t, err)
}
