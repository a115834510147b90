// Copyright (c) 2026 CoPla. All rights reserved.

// Package requestutil reads path parameters, query flags, JSON bodies and the
// caller's identity from incoming requests.
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/ctxutil"
	"github.com/copla/copla/internal/platform/sec"
	"github.com/copla/copla/internal/platform/validate"
)

// maxBodyBytes bounds JSON bodies. A following sync is the largest payload.
const maxBodyBytes = 4 << 20

// DecodeJSON decodes the body into target, reporting any failure as
// [validate.ErrInvalidJSON].
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Int64Param parses a positive numeric path parameter such as {elementID}.
func Int64Param(request *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(Param(request, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return id, nil
}

// OptionalBool reads a tri-state query flag: nil when absent or unparsable.
func OptionalBool(request *http.Request, name string) *bool {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	if value, err := strconv.ParseBool(raw); err == nil {
		return &value
	}
	return nil
}

// Claims returns nil for anonymous requests.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims fails with 401 for anonymous requests.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	if claims := Claims(request); claims != nil {
		return claims, nil
	}
	return nil, apperr.Unauthorized("Authentication required")
}

// RequiredOwner fails with 401 for anonymous callers and 403 unless the
// caller is the account named by {username}.
func RequiredOwner(request *http.Request) (*sec.AuthClaims, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return nil, err
	}
	if !ctxutil.IsOwner(request.Context(), Param(request, "username")) {
		return nil, apperr.Forbidden("You can only modify your own account")
	}
	return claims, nil
}
