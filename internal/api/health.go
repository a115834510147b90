// Copyright (c) 2026 CoPla. All rights reserved.

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/respond"
)

// readinessTimeout bounds a single /ready evaluation.
const readinessTimeout = 3 * time.Second

// HealthCheck is one dependency checked by /ready, e.g. "postgres" or "redis".
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type checkResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

/*
NewHealthHandlers builds the health endpoints.

Returns:
  - liveness: GET /health, 200 while the process runs
  - readiness: GET /ready, 200 when every check passes and 503 "degraded" otherwise
*/
func NewHealthHandlers(checks []HealthCheck, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	liveness = func(writer http.ResponseWriter, _ *http.Request) {
		respond.OK(writer, map[string]string{
			constants.FieldStatus:  "ok",
			constants.FieldApp:     constants.AppName,
			constants.FieldVersion: constants.AppVersion,
		})
	}

	readiness = func(writer http.ResponseWriter, request *http.Request) {
		results := runChecks(request.Context(), checks, logger)

		status, code := "ready", http.StatusOK
		for _, result := range results {
			if !result.OK {
				status, code = "degraded", http.StatusServiceUnavailable
				break
			}
		}

		respond.JSON(writer, code, respond.SuccessEnvelope{Data: map[string]any{
			constants.FieldStatus: status,
			constants.FieldChecks: results,
		}})
	}

	return liveness, readiness
}

// runChecks checks every dependency concurrently and keeps results in input order.
func runChecks(ctx context.Context, checks []HealthCheck, logger *slog.Logger) []checkResult {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	results := make([]checkResult, len(checks))
	var group errgroup.Group

	for index, check := range checks {
		group.Go(func() error {
			result := checkResult{Name: check.Name, OK: true}
			if err := check.Check(ctx); err != nil {
				result.OK, result.Error = false, err.Error()
				logger.Error("readiness_check_failed", slog.String("dependency", check.Name), slog.Any("error", err))
			}
			results[index] = result
			return nil
		})
	}
	_ = group.Wait()

	return results
}
