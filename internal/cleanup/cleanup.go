// Package cleanup reclaims storage for finished and abandoned sessions. The
// DynamoDB TTL deletes stale session records by itself, but never the S3
// objects under them; this package sweeps both.
package cleanup

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/s3util"
	"github.com/fpang/ai-demo-builder/internal/store"
)

// Cleanup modes accepted by the API.
const (
	ModeComplete     = "complete"
	ModeIntermediate = "intermediate"
)

// sessionPrefixes are the S3 key prefixes holding a session's objects.
var sessionPrefixes = []string{"videos/", "slides/", "demos/"}

// Policy decides which sessions the scheduled sweep reclaims.
type Policy struct {
	DaysToKeep        int
	FailedSessionDays int
}

// Sweeper deletes session data from S3 and DynamoDB.
type Sweeper struct {
	s3Client *s3.Client
	bucket   string
	sessions store.SessionStore
	policy   Policy
	now      func() time.Time
}

// New builds a Sweeper.
func New(s3Client *s3.Client, bucket string, sessions store.SessionStore, policy Policy) *Sweeper {
	return &Sweeper{
		s3Client: s3Client,
		bucket:   bucket,
		sessions: sessions,
		policy:   policy,
		now:      time.Now,
	}
}

// SessionResult reports one session's cleanup.
type SessionResult struct {
	SessionID    string         `json:"session_id"`
	FilesDeleted int            `json:"total_files_deleted"`
	ByPrefix     map[string]int `json:"details,omitempty"`
}

// SweepResult reports a scheduled sweep.
type SweepResult struct {
	SessionsFound   int      `json:"sessions_found"`
	SessionsCleaned int      `json:"sessions_cleaned"`
	FilesDeleted    int      `json:"total_files_deleted"`
	Errors          []string `json:"errors,omitempty"`
}

// CleanSession deletes every S3 object for the session and removes the
// session record.
func (s *Sweeper) CleanSession(ctx context.Context, sessionID string) (*SessionResult, error) {
	result := &SessionResult{SessionID: sessionID, ByPrefix: map[string]int{}}

	for _, prefix := range sessionPrefixes {
		full := prefix + sessionID + "/"
		deleted, err := s3util.DeletePrefix(ctx, s.s3Client, s.bucket, full)
		if err != nil {
			return result, err
		}
		result.ByPrefix[full] = deleted
		result.FilesDeleted += deleted
	}

	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return result, err
	}

	log.Info().
		Str("session_id", sessionID).
		Int("files_deleted", result.FilesDeleted).
		Msg("Session cleaned")
	return result, nil
}

// CleanIntermediate deletes raw uploads, slides, and the stitched output,
// keeping the final renditions and thumbnail. Used after optimization to cut
// storage costs without losing the deliverables.
func (s *Sweeper) CleanIntermediate(ctx context.Context, sessionID string) (*SessionResult, error) {
	result := &SessionResult{SessionID: sessionID, ByPrefix: map[string]int{}}

	for _, prefix := range []string{"videos/" + sessionID + "/", "slides/" + sessionID + "/"} {
		deleted, err := s3util.DeletePrefix(ctx, s.s3Client, s.bucket, prefix)
		if err != nil {
			return result, err
		}
		result.ByPrefix[prefix] = deleted
		result.FilesDeleted += deleted
	}

	demoPrefix := "demos/" + sessionID + "/"
	keys, err := s3util.ListKeys(ctx, s.s3Client, s.bucket, demoPrefix)
	if err != nil {
		return result, err
	}
	toDelete := intermediateDemoKeys(keys)
	if len(toDelete) > 0 {
		deleted, err := s3util.DeleteKeys(ctx, s.s3Client, s.bucket, toDelete)
		if err != nil {
			return result, err
		}
		result.ByPrefix[demoPrefix] = deleted
		result.FilesDeleted += deleted
	}

	log.Info().
		Str("session_id", sessionID).
		Int("files_deleted", result.FilesDeleted).
		Msg("Intermediate files cleaned")
	return result, nil
}

// intermediateDemoKeys selects the demos/ objects safe to delete: stitched
// output and anything that is not a final rendition or the thumbnail.
func intermediateDemoKeys(keys []string) []string {
	var out []string
	for _, key := range keys {
		base := key[strings.LastIndex(key, "/")+1:]
		if strings.HasPrefix(base, "stitched_") {
			out = append(out, key)
			continue
		}
		if !strings.HasPrefix(base, "final_") && base != "thumbnail.jpg" {
			out = append(out, key)
		}
	}
	return out
}

// SweepExpired is the scheduled cleanup: it scans all sessions and reclaims
// those past their retention window.
func (s *Sweeper) SweepExpired(ctx context.Context) (*SweepResult, error) {
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	now := s.now()

	for _, session := range sessions {
		if !s.expired(session, now) {
			continue
		}
		result.SessionsFound++

		cleaned, err := s.CleanSession(ctx, session.ID)
		if err != nil {
			log.Error().Err(err).Str("session_id", session.ID).Msg("Failed to clean session")
			result.Errors = append(result.Errors, session.ID+": "+err.Error())
			continue
		}
		result.SessionsCleaned++
		result.FilesDeleted += cleaned.FilesDeleted
	}

	log.Info().
		Int("found", result.SessionsFound).
		Int("cleaned", result.SessionsCleaned).
		Int("files_deleted", result.FilesDeleted).
		Msg("Scheduled cleanup complete")
	return result, nil
}

// expired applies the retention policy to one session.
func (s *Sweeper) expired(session *store.Session, now time.Time) bool {
	nowUnix := now.Unix()

	if session.ExpiresAt > 0 && session.ExpiresAt < nowUnix {
		return true
	}

	keepThreshold := now.AddDate(0, 0, -s.policy.DaysToKeep).Unix()
	if session.Status == store.StatusComplete && session.CreatedAt > 0 && session.CreatedAt < keepThreshold {
		return true
	}

	failedThreshold := now.AddDate(0, 0, -s.policy.FailedSessionDays).Unix()
	if store.IsFailed(session.Status) && session.CreatedAt > 0 && session.CreatedAt < failedThreshold {
		return true
	}

	return false
}
