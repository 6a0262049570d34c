// Package main provides the Lambda entry point for upload tracking.
//
// Two triggers share one function:
//   - S3 ObjectCreated events on videos/ mark the matching video entry
//     uploaded and fire the validator.
//   - GET /upload-status/{session} reports per-clip upload progress to the
//     frontend while the user records.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/apigw"
	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/invoke"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/s3util"
	"github.com/fpang/ai-demo-builder/internal/store"
)

var coldStart = true

var (
	cfg      *config.Config
	sessions *store.DynamoStore
	s3Client *s3.Client
	bucket   string
	invoker  *invoke.Invoker
)

func init() {
	initStart := time.Now()
	logging.Init()

	cfg = config.Load()
	aws := lambdaboot.InitAWS()
	s3s := lambdaboot.InitS3(aws.Config, cfg.Bucket)
	s3Client = s3s.Client
	bucket = s3s.Bucket
	sessions = lambdaboot.InitSessions(aws.Config, cfg.SessionTable)
	invoker = invoke.New(aws.Lambda)

	lambdaboot.StartupLog("upload-tracker-lambda", initStart).
		S3Bucket("media", bucket).
		DynamoTable("sessions", cfg.SessionTable).
		LambdaFunc("videoValidator", cfg.VideoValidatorFunction).
		Log()
}

func main() {
	lambda.Start(handler)
}

// handler dispatches on the raw event shape: S3 notification records or an
// API Gateway proxy request.
func handler(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "upload-tracker-lambda").Msg("Cold start — first invocation")
	}

	var probe struct {
		Records []struct {
			EventSource string `json:"eventSource"`
		} `json:"Records"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil &&
		len(probe.Records) > 0 && probe.Records[0].EventSource == "aws:s3" {
		var s3Event events.S3Event
		if err := json.Unmarshal(raw, &s3Event); err != nil {
			return nil, fmt.Errorf("parse S3 event: %w", err)
		}
		return nil, handleS3Event(ctx, s3Event)
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return handleStatusRequest(ctx, req)
}

// --- S3 upload events ---

func handleS3Event(ctx context.Context, event events.S3Event) error {
	rec := metrics.Pipeline()
	defer rec.Flush()

	for _, record := range event.Records {
		key := record.S3.Object.Key
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}

		sessionID, suggestionID, ok := parseUploadKey(key)
		if !ok {
			log.Debug().Str("key", key).Msg("Ignoring non-upload object")
			continue
		}

		entry := &store.VideoEntry{
			Status:     store.VideoUploaded,
			S3Key:      key,
			SizeBytes:  record.S3.Object.Size,
			UploadedAt: time.Now().Unix(),
		}
		if err := sessions.SetVideoEntry(ctx, sessionID, suggestionID, entry); err != nil {
			return fmt.Errorf("record upload %s: %w", key, err)
		}

		rec.Count("VideoUploaded").Metric("UploadBytes", float64(record.S3.Object.Size), metrics.UnitBytes)
		log.Info().
			Str("sessionId", sessionID).
			Str("suggestionId", suggestionID).
			Int64("sizeBytes", record.S3.Object.Size).
			Msg("Video upload recorded")

		dispatchValidation(ctx, sessionID, suggestionID, key, record.S3.Object.Size)
	}
	return nil
}

// parseUploadKey splits videos/{session}/{file} and derives the suggestion
// ID from the filename up to the first "." or "_".
func parseUploadKey(key string) (sessionID, suggestionID string, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "videos" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	name := parts[2]
	if i := strings.IndexAny(name, "._"); i > 0 {
		name = name[:i]
	}
	if name == "" || strings.HasPrefix(parts[2], "standardized") {
		return "", "", false
	}
	return parts[1], name, true
}

func dispatchValidation(ctx context.Context, sessionID, suggestionID, key string, size int64) {
	if cfg.VideoValidatorFunction == "" {
		log.Warn().Msg("VIDEO_VALIDATOR_FUNCTION not set — upload left unvalidated")
		return
	}
	payload := map[string]interface{}{
		"session_id":    sessionID,
		"suggestion_id": suggestionID,
		"s3_key":        key,
		"size_bytes":    size,
	}
	if err := invoker.Async(ctx, cfg.VideoValidatorFunction, payload); err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("Validator dispatch failed")
	}
}

// --- Upload status API ---

// ClipStatus is one suggestion's upload state.
type ClipStatus struct {
	SuggestionID string `json:"suggestion_id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	Exists       bool   `json:"exists"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
}

// UploadStatusResponse summarises upload progress for a session.
type UploadStatusResponse struct {
	SessionID    string       `json:"session_id"`
	Status       string       `json:"status"`
	Clips        []ClipStatus `json:"clips"`
	Total        int          `json:"total"`
	Uploaded     int          `json:"uploaded"`
	Validated    int          `json:"validated"`
	Pending      int          `json:"pending"`
	Percentage   int          `json:"percentage"`
	AllUploaded  bool         `json:"all_uploaded"`
	AllValidated bool         `json:"all_validated"`
}

func handleStatusRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	sessionID := req.PathParameters["session_id"]
	if sessionID == "" {
		sessionID = path.Base(strings.TrimSuffix(req.Path, "/"))
	}
	if sessionID == "" || sessionID == "upload-status" {
		return apigw.Error(400, "session_id is required")
	}

	session, err := sessions.GetSession(ctx, sessionID)
	if err != nil {
		return apigw.Error(500, "failed to load session", err.Error())
	}
	if session == nil {
		return apigw.Error(404, "session not found")
	}

	resp := &UploadStatusResponse{
		SessionID: sessionID,
		Status:    session.Status,
		Total:     len(session.Suggestions),
	}

	for _, sug := range session.Suggestions {
		id := store.SuggestionID(sug.SequenceNumber)
		clip := ClipStatus{SuggestionID: id, Title: sug.Title, Status: "pending"}

		if entry, ok := session.Videos[id]; ok {
			clip.Status = entry.Status
			clip.SizeBytes = entry.SizeBytes
			switch entry.Status {
			case store.VideoUploaded:
				resp.Uploaded++
			case store.VideoValidated, store.VideoConverted:
				resp.Uploaded++
				resp.Validated++
			}
		}

		// The S3 head check catches uploads whose event has not landed yet.
		key := fmt.Sprintf("videos/%s/%s.mp4", sessionID, id)
		size, exists, err := s3util.Head(ctx, s3Client, bucket, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Upload head check failed")
		}
		clip.Exists = exists
		if exists && clip.SizeBytes == 0 {
			clip.SizeBytes = size
		}

		resp.Clips = append(resp.Clips, clip)
	}

	resp.Pending = resp.Total - resp.Uploaded
	if resp.Total > 0 {
		resp.Percentage = resp.Uploaded * 100 / resp.Total
	}
	resp.AllUploaded = resp.Total > 0 && resp.Uploaded == resp.Total
	resp.AllValidated = resp.Total > 0 && resp.Validated == resp.Total

	return apigw.JSON(200, resp)
}
