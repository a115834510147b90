// Copyright (c) 2026 CoPla. All rights reserved.

// Package respond writes every JSON body the CoPla API returns.
//
// Three envelopes exist: {data}, {data,meta} for paginated lists and
// {error,code,details} for failures. The CLI client in internal/client/coplaapi
// decodes exactly these shapes.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/ctxkey"
	"github.com/copla/copla/pkg/pagination"
)

const contentTypeJSON = "application/json; charset=utf-8"

// # Envelopes

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type PaginatedEnvelope struct {
	Data any             `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// MessageBody is the payload of endpoints that only report an outcome.
type MessageBody struct {
	Message string `json:"message"`
}

// # Success

// JSON writes payload as-is with status.
func JSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", contentTypeJSON)
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		slog.Debug("respond_encode_failed", slog.Any("error", err))
	}
}

func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

// Paginated writes one page of a list with its metadata block.
func Paginated(writer http.ResponseWriter, data any, meta pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{Data: data, Meta: meta})
}

// Message writes {data:{message}}.
func Message(writer http.ResponseWriter, message string) {
	OK(writer, MessageBody{Message: message})
}

func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// # Failure

/*
Error renders err as an error envelope.

Errors that are not an [*apperr.AppError] are logged with the request id and
replaced by a generic 500 so internals never reach the client. Every 5xx is
logged with its cause. Throttling errors also set Retry-After.
*/
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger, requestID := requestLogger(request)

	appErr := apperr.As(err)
	if appErr == nil {
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		appErr = apperr.Internal(err)
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("request_id", requestID),
			slog.String("code", appErr.Code),
			slog.Any("cause", appErr.Cause),
		)
	}

	if appErr.RetryAfter > 0 {
		writer.Header().Set("Retry-After", strconv.Itoa(appErr.RetryAfter))
	}

	JSON(writer, appErr.HTTPStatus, ErrorEnvelope{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

func requestLogger(request *http.Request) (*slog.Logger, string) {
	ctx := request.Context()
	requestID, _ := ctxkey.RequestID.From(ctx)

	logger, ok := ctxkey.Logger.From(ctx)
	if !ok || logger == nil {
		logger = slog.Default()
	}
	return logger, requestID
}
