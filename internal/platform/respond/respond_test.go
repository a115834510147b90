// Copyright (c) 2026 CoPla. All rights reserved.

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/respond"
	"github.com/copla/copla/pkg/pagination"
)

/*
TestError maps errors onto status codes and envelopes without leaking causes.
*/
func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		code       string
		message    string
		retryAfter string
	}{
		{"not_found", apperr.NotFound("Artist"), http.StatusNotFound, apperr.CodeNotFound, "Artist not found", ""},
		{"wrapped_conflict", errors.Join(errors.New("ctx"), apperr.Conflict("Tag already exists")), http.StatusConflict, apperr.CodeConflict, "Tag already exists", ""},
		{"plain_error_hidden", errors.New("pq: relation does not exist"), http.StatusInternalServerError, apperr.CodeInternal, "An unexpected error occurred", ""},
		{"rate_limited", apperr.RateLimited(3), http.StatusTooManyRequests, apperr.CodeRateLimited, "Too many requests. Try again in 3s.", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			require.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.retryAfter, recorder.Header().Get("Retry-After"))

			var body respond.ErrorEnvelope
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Error)
		})
	}
}

/*
TestError_ValidationDetails keeps per-field details in the envelope.
*/
func TestError_ValidationDetails(t *testing.T) {
	recorder := httptest.NewRecorder()
	err := apperr.ValidationError("Invalid input", apperr.FieldError{Field: "title", Message: "Too long"})
	respond.Error(recorder, httptest.NewRequest(http.MethodPost, "/", nil), err)

	var body respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, []apperr.FieldError{{Field: "title", Message: "Too long"}}, body.Details)
}

/*
TestPaginated writes data and meta side by side.
*/
func TestPaginated(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Paginated(recorder, []string{"ana"}, pagination.NewMeta(1, 20, 1))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":["ana"],"meta":{"page":1,"limit":20,"total":1,"total_pages":1}}`, recorder.Body.String())
}

/*
TestMessage wraps outcome messages in the data envelope.
*/
func TestMessage(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Message(recorder, "Bluesky account unlinked")

	assert.JSONEq(t, `{"data":{"message":"Bluesky account unlinked"}}`, recorder.Body.String())
}
