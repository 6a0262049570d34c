// Package jobs provides identifier generation for pipeline sessions.
package jobs

import "github.com/google/uuid"

// NewSessionID creates a short session identifier. Session IDs appear in S3
// keys, URLs, and user-facing status pages, so the first 8 characters of a
// UUID keep them readable while staying unique enough for the session TTL.
func NewSessionID() string {
	return uuid.NewString()[:8]
}
