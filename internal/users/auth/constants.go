// Copyright (c) 2026 CoPla. All rights reserved.

package auth

import "github.com/copla/copla/internal/platform/constants"

// # Authentication Constraints

const (
	// SessionTTL is how long a login cookie and its registry entry stay valid.
	SessionTTL = constants.SessionTTL

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)
