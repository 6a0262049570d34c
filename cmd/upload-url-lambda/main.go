// Package main provides the Lambda entry point for presigned upload URLs.
//
// POST /upload-url hands the browser a presigned S3 PUT URL for one
// suggestion's clip, so uploads bypass Lambda payload limits entirely.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/apigw"
	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/s3util"
	"github.com/fpang/ai-demo-builder/internal/store"
)

// uploadExpiry bounds how long a presigned PUT URL stays valid.
const uploadExpiry = time.Hour

const uploadContentType = "video/mp4"

var coldStart = true

var (
	sessions  *store.DynamoStore
	presigner *s3.PresignClient
	bucket    string
)

func init() {
	initStart := time.Now()
	logging.Init()

	cfg := config.Load()
	aws := lambdaboot.InitAWS()
	s3s := lambdaboot.InitS3(aws.Config, cfg.Bucket)
	presigner = s3s.Presigner
	bucket = s3s.Bucket
	sessions = lambdaboot.InitSessions(aws.Config, cfg.SessionTable)

	lambdaboot.StartupLog("upload-url-lambda", initStart).
		S3Bucket("media", bucket).
		DynamoTable("sessions", cfg.SessionTable).
		Log()
}

func main() {
	lambda.Start(handler)
}

// UploadURLRequest is the POST /upload-url body.
type UploadURLRequest struct {
	SessionID    string `json:"session_id"`
	SuggestionID string `json:"suggestion_id"`
}

// UploadURLResponse carries the presigned URL and the key the browser must
// PUT to with Content-Type video/mp4.
type UploadURLResponse struct {
	UploadURL        string `json:"upload_url"`
	Key              string `json:"key"`
	ContentType      string `json:"content_type"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "upload-url-lambda").Msg("Cold start — first invocation")
	}
	rec := metrics.Pipeline()
	defer rec.Flush()

	var body UploadURLRequest
	if !apigw.ParseBody(req, &body) || body.SessionID == "" || body.SuggestionID == "" {
		return apigw.Error(400, "session_id and suggestion_id are required")
	}

	session, err := sessions.GetSession(ctx, body.SessionID)
	if err != nil {
		return apigw.Error(500, "failed to load session", err.Error())
	}
	if session == nil {
		return apigw.Error(404, "session not found")
	}

	if session.Status != store.StatusReady && session.Status != store.StatusUploading {
		return apigw.Error(409, fmt.Sprintf("session is %s — uploads are closed", session.Status))
	}
	if session.SuggestionByID(body.SuggestionID) == nil {
		return apigw.Error(400, "unknown suggestion_id for this session")
	}
	if entry, ok := session.Videos[body.SuggestionID]; ok && entry.Status != store.VideoInitiated {
		return apigw.Error(409, fmt.Sprintf("video %s is already %s", body.SuggestionID, entry.Status))
	}

	key := fmt.Sprintf("videos/%s/%s.mp4", body.SessionID, body.SuggestionID)
	url, err := s3util.PresignUpload(ctx, presigner, bucket, key, uploadContentType, uploadExpiry)
	if err != nil {
		return apigw.Error(500, "failed to create upload URL", err.Error())
	}

	if err := sessions.SetVideoEntry(ctx, body.SessionID, body.SuggestionID, &store.VideoEntry{
		Status: store.VideoInitiated,
		S3Key:  key,
	}); err != nil {
		return apigw.Error(500, "failed to record upload", err.Error())
	}
	if session.Status == store.StatusReady {
		if err := sessions.UpdateSessionStatus(ctx, body.SessionID, store.StatusUploading); err != nil {
			log.Warn().Err(err).Str("sessionId", body.SessionID).Msg("Status update to uploading failed")
		}
	}

	rec.Count("UploadURLIssued")
	log.Info().
		Str("sessionId", body.SessionID).
		Str("suggestionId", body.SuggestionID).
		Str("key", key).
		Msg("Presigned upload URL issued")

	return apigw.JSON(200, &UploadURLResponse{
		UploadURL:        url,
		Key:              key,
		ContentType:      uploadContentType,
		ExpiresInSeconds: int(uploadExpiry.Seconds()),
	})
}
