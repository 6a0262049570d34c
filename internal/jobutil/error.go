// Package jobutil provides shared helpers for pipeline step failure handling.
//
// SetStepError unifies the error-writing pattern used by the validator,
// converter, stitcher, and optimizer Lambdas: log the failure and persist the
// failed status with its message to the session store.
package jobutil

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ErrorWriter persists a step failure to the backing store. The session store
// satisfies this with SetSessionError.
type ErrorWriter func(ctx context.Context, sessionID, status, message string) error

// SetStepError logs the failure and delegates persistence to the writer.
// The write error is returned so callers can decide whether a failed status
// write should surface as a handler error.
func SetStepError(ctx context.Context, sessionID, status, message string, write ErrorWriter) error {
	log.Error().
		Str("sessionId", sessionID).
		Str("status", status).
		Str("error", message).
		Msg("Pipeline step failed")
	return write(ctx, sessionID, status, message)
}
