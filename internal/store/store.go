// Package store provides persistent session state for the demo-building
// pipeline. A session tracks one GitHub repository from AI suggestions through
// upload, validation, conversion, stitching, and optimization.
//
// The package uses a single-table DynamoDB design: every session record has
// partition key SESSION#{sessionId} and sort key META. A TTL attribute
// (expiresAt) auto-deletes records 30 days after creation, matching the S3
// lifecycle policy on the media bucket.
package store

import (
	"context"
	"strconv"
	"time"
)

// SessionTTL is the time-to-live for session records and their S3 objects.
const SessionTTL = 30 * 24 * time.Hour

// Session status values, in pipeline order.
const (
	StatusReady              = "ready"
	StatusUploading          = "uploading"
	StatusReadyForProcessing = "ready_for_processing"
	StatusQueued             = "queued"
	StatusSlidesReady        = "slides_ready"
	StatusStitching          = "stitching"
	StatusStitched           = "stitched"
	StatusOptimizing         = "optimizing"
	StatusComplete           = "complete"

	StatusValidationFailed   = "validation_failed"
	StatusConversionFailed   = "conversion_failed"
	StatusStitchingFailed    = "stitching_failed"
	StatusOptimizationFailed = "optimization_failed"
)

// Per-video entry status values.
const (
	VideoInitiated        = "initiated"
	VideoUploaded         = "uploaded"
	VideoValidated        = "validated"
	VideoValidationFailed = "validation_failed"
	VideoConverted        = "converted"
	VideoConversionFailed = "conversion_failed"
)

// SessionStore defines the persistence interface for pipeline session state.
// Each method is safe for concurrent use. GetSession returns (nil, nil) when
// the session does not exist; PutSession performs full-item replacement.
type SessionStore interface {
	// PutSession creates or replaces a session record.
	PutSession(ctx context.Context, session *Session) error

	// GetSession retrieves a session by ID. Returns nil, nil if not found.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// UpdateSessionStatus atomically updates the status field without
	// overwriting other fields. Statuses with an associated timeline field
	// (queued, stitching, stitched, optimizing, complete, *_failed) also get
	// that timestamp set to now.
	UpdateSessionStatus(ctx context.Context, sessionID, status string) error

	// SetVideoEntry creates or replaces one entry in the session's
	// uploaded-videos map, keyed by suggestion ID.
	SetVideoEntry(ctx context.Context, sessionID, suggestionID string, entry *VideoEntry) error

	// MergeVideoEntry writes only the fields set on entry into an existing
	// videos-map entry, preserving timestamps and validation details recorded
	// by earlier pipeline stages. Fails if the entry does not exist.
	MergeVideoEntry(ctx context.Context, sessionID, suggestionID string, entry *VideoEntry) error

	// SetStitchProgress updates the stitch progress counters shown by the
	// status API.
	SetStitchProgress(ctx context.Context, sessionID string, currentItem, totalItems int, step string) error

	// SetSessionError marks the session failed: sets the failure status, the
	// error message, and failedAt.
	SetSessionError(ctx context.Context, sessionID, status, message string) error

	// SetResults writes the final output keys and presigned URLs.
	SetResults(ctx context.Context, sessionID string, results *Results) error

	// DeleteSession removes the session record.
	DeleteSession(ctx context.Context, sessionID string) error

	// ListSessions scans all session records. Used by the cleanup sweep;
	// the table stays small because of the TTL.
	ListSessions(ctx context.Context) ([]*Session, error)
}

// Suggestion is one AI-proposed video clip for the user to record.
type Suggestion struct {
	SequenceNumber   int      `json:"sequence_number" dynamodbav:"sequenceNumber"`
	Title            string   `json:"title" dynamodbav:"title"`
	Duration         string   `json:"duration" dynamodbav:"duration"`
	VideoType        string   `json:"video_type" dynamodbav:"videoType"`
	WhatToRecord     []string `json:"what_to_record" dynamodbav:"whatToRecord"`
	NarrationScript  string   `json:"narration_script" dynamodbav:"narrationScript"`
	KeyHighlights    []string `json:"key_highlights,omitempty" dynamodbav:"keyHighlights,omitempty"`
	TechnicalSetup   *Setup   `json:"technical_setup,omitempty" dynamodbav:"technicalSetup,omitempty"`
	ExpectedOutcome  string   `json:"expected_outcome,omitempty" dynamodbav:"expectedOutcome,omitempty"`
	TransitionToNext string   `json:"transition_to_next,omitempty" dynamodbav:"transitionToNext,omitempty"`
}

// Setup describes what the recorder needs before filming a clip.
type Setup struct {
	Prerequisites []string `json:"prerequisites,omitempty" dynamodbav:"prerequisites,omitempty"`
	Environment   string   `json:"environment,omitempty" dynamodbav:"environment,omitempty"`
	SampleData    string   `json:"sample_data,omitempty" dynamodbav:"sampleData,omitempty"`
}

// Validation holds the ffprobe verdict for an uploaded clip.
type Validation struct {
	Valid           bool     `json:"valid" dynamodbav:"valid"`
	Errors          []string `json:"errors,omitempty" dynamodbav:"errors,omitempty"`
	DurationSeconds float64  `json:"duration_seconds,omitempty" dynamodbav:"durationSeconds,omitempty"`
	Width           int      `json:"width,omitempty" dynamodbav:"width,omitempty"`
	Height          int      `json:"height,omitempty" dynamodbav:"height,omitempty"`
	FPS             float64  `json:"fps,omitempty" dynamodbav:"fps,omitempty"`
	Codec           string   `json:"codec,omitempty" dynamodbav:"codec,omitempty"`
	SizeBytes       int64    `json:"size_bytes,omitempty" dynamodbav:"sizeBytes,omitempty"`
}

// VideoEntry tracks one suggestion's clip through upload, validation, and
// conversion. Keyed by suggestion ID in Session.Videos.
type VideoEntry struct {
	Status          string      `json:"status" dynamodbav:"status"`
	S3Key           string      `json:"s3_key,omitempty" dynamodbav:"s3Key,omitempty"`
	StandardizedKey string      `json:"standardized_key,omitempty" dynamodbav:"standardizedKey,omitempty"`
	SizeBytes       int64       `json:"size_bytes,omitempty" dynamodbav:"sizeBytes,omitempty"`
	UploadedAt      int64       `json:"uploaded_at,omitempty" dynamodbav:"uploadedAt,omitempty"`
	ValidatedAt     int64       `json:"validated_at,omitempty" dynamodbav:"validatedAt,omitempty"`
	ConvertedAt     int64       `json:"converted_at,omitempty" dynamodbav:"convertedAt,omitempty"`
	Validation      *Validation `json:"validation,omitempty" dynamodbav:"validation,omitempty"`
	Error           string      `json:"error,omitempty" dynamodbav:"error,omitempty"`
}

// Results holds the final outputs written once optimization completes.
// Presigned URLs expire after a day; keys are permanent for re-signing.
type Results struct {
	StitchedKey    string `json:"stitched_key,omitempty" dynamodbav:"stitchedKey,omitempty"`
	FinalKey720    string `json:"final_key_720p,omitempty" dynamodbav:"finalKey720,omitempty"`
	FinalKey1080   string `json:"final_key_1080p,omitempty" dynamodbav:"finalKey1080,omitempty"`
	ThumbnailKey   string `json:"thumbnail_key,omitempty" dynamodbav:"thumbnailKey,omitempty"`
	DemoURL        string `json:"demo_url,omitempty" dynamodbav:"demoUrl,omitempty"`
	DemoURL720     string `json:"demo_url_720p,omitempty" dynamodbav:"demoUrl720,omitempty"`
	DemoURL1080    string `json:"demo_url_1080p,omitempty" dynamodbav:"demoUrl1080,omitempty"`
	ThumbnailURL   string `json:"thumbnail_url,omitempty" dynamodbav:"thumbnailUrl,omitempty"`
	FinalSizeBytes int64  `json:"final_size_bytes,omitempty" dynamodbav:"finalSizeBytes,omitempty"`
}

// Session is the pipeline state for one repository demo.
// ID is derived from the partition key on read and excluded from DynamoDB
// attributes on write (dynamodbav:"-"). Timestamps are Unix epoch seconds.
type Session struct {
	ID          string `json:"session_id" dynamodbav:"-"`
	ProjectName string `json:"project_name" dynamodbav:"projectName"`
	Owner       string `json:"github_owner" dynamodbav:"githubOwner"`
	Repo        string `json:"github_repo" dynamodbav:"githubRepo"`
	Status      string `json:"status" dynamodbav:"status"`

	Suggestions []Suggestion           `json:"suggestions,omitempty" dynamodbav:"suggestions,omitempty"`
	Videos      map[string]*VideoEntry `json:"uploaded_videos" dynamodbav:"videos"`

	ErrorMessage string `json:"error_message,omitempty" dynamodbav:"errorMessage,omitempty"`

	CreatedAt            int64 `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt            int64 `json:"updated_at" dynamodbav:"updatedAt"`
	QueuedAt             int64 `json:"queued_at,omitempty" dynamodbav:"queuedAt,omitempty"`
	StitchingStartedAt   int64 `json:"stitching_started_at,omitempty" dynamodbav:"stitchingStartedAt,omitempty"`
	StitchingCompletedAt int64 `json:"stitching_completed_at,omitempty" dynamodbav:"stitchingCompletedAt,omitempty"`
	OptimizingStartedAt  int64 `json:"optimizing_started_at,omitempty" dynamodbav:"optimizingStartedAt,omitempty"`
	CompletedAt          int64 `json:"completed_at,omitempty" dynamodbav:"completedAt,omitempty"`
	FailedAt             int64 `json:"failed_at,omitempty" dynamodbav:"failedAt,omitempty"`
	ExpiresAt            int64 `json:"expires_at" dynamodbav:"-"` // written by the store, mirrors the TTL attribute

	// Stitch progress, surfaced by the status API while stitching runs.
	CurrentItem    int    `json:"current_item,omitempty" dynamodbav:"currentItem,omitempty"`
	TotalItems     int    `json:"total_items,omitempty" dynamodbav:"totalItems,omitempty"`
	ProcessingStep string `json:"processing_step,omitempty" dynamodbav:"processingStep,omitempty"`

	Results *Results `json:"results,omitempty" dynamodbav:"results,omitempty"`
}

// SuggestionID converts a suggestion sequence number to the string key used
// in S3 object names and the uploaded-videos map.
func SuggestionID(n int) string {
	return strconv.Itoa(n)
}

// GitHubURL reconstructs the repository URL from the owner and repo fields.
func (s *Session) GitHubURL() string {
	if s.Owner == "" || s.Repo == "" {
		return ""
	}
	return "https://github.com/" + s.Owner + "/" + s.Repo
}

// PrimaryFinalKey returns the S3 key of the preferred final rendition, 720p
// when present.
func (r *Results) PrimaryFinalKey() string {
	if r.FinalKey720 != "" {
		return r.FinalKey720
	}
	return r.FinalKey1080
}

// IsFailed reports whether the status is a failure terminal.
func IsFailed(status string) bool {
	switch status {
	case StatusValidationFailed, StatusConversionFailed, StatusStitchingFailed, StatusOptimizationFailed:
		return true
	}
	return false
}

// SuggestionByID returns the suggestion whose sequence number matches the
// given suggestion ID string (e.g. "2"), or nil.
func (s *Session) SuggestionByID(id string) *Suggestion {
	for i := range s.Suggestions {
		if SuggestionID(s.Suggestions[i].SequenceNumber) == id {
			return &s.Suggestions[i]
		}
	}
	return nil
}

// AllConverted reports whether every suggestion has a converted video entry.
func (s *Session) AllConverted() bool {
	if len(s.Suggestions) == 0 {
		return false
	}
	for _, sug := range s.Suggestions {
		entry, ok := s.Videos[SuggestionID(sug.SequenceNumber)]
		if !ok || entry.Status != VideoConverted {
			return false
		}
	}
	return true
}
