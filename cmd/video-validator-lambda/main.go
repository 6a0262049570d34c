// Package main provides the Lambda entry point for upload validation.
//
// Invoked asynchronously by the upload tracker once a clip lands in S3.
// Probes the file with ffprobe, checks it against the acceptance bounds, and
// hands valid clips to the format converter.
//
// Container: heavy (ffmpeg layer required)
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/invoke"
	"github.com/fpang/ai-demo-builder/internal/jobutil"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/media"
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
	tools    media.Tools
	limits   media.Limits
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
	tools = media.ResolveTools(cfg.FFmpegPath, cfg.FFprobePath)
	limits = media.Limits{
		MinDuration: cfg.MinVideoDuration,
		MaxDuration: cfg.MaxVideoDuration,
		MinSize:     config.MinFileSize,
		MaxSize:     cfg.MaxFileSize,
	}

	lambdaboot.StartupLog("video-validator-lambda", initStart).
		S3Bucket("media", bucket).
		DynamoTable("sessions", cfg.SessionTable).
		LambdaFunc("formatConverter", cfg.FormatConverterFunction).
		Config("ffprobe", tools.FFprobe).
		Log()
}

func main() {
	lambda.Start(handler)
}

// ValidateRequest identifies the uploaded clip to validate.
type ValidateRequest struct {
	SessionID    string `json:"session_id"`
	SuggestionID string `json:"suggestion_id"`
	S3Key        string `json:"s3_key"`
	SizeBytes    int64  `json:"size_bytes"`
}

func handler(ctx context.Context, req ValidateRequest) error {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "video-validator-lambda").Msg("Cold start — first invocation")
	}
	start := time.Now()
	rec := metrics.Pipeline()
	defer rec.Flush()

	if req.SessionID == "" || req.SuggestionID == "" || req.S3Key == "" {
		return fmt.Errorf("session_id, suggestion_id, and s3_key are required")
	}
	log.Info().
		Str("sessionId", req.SessionID).
		Str("suggestionId", req.SuggestionID).
		Str("key", req.S3Key).
		Msg("Validating uploaded clip")

	localPath, size, cleanup, err := s3util.DownloadToTemp(ctx, s3Client, bucket, req.S3Key, "validate-*.mp4")
	if err != nil {
		return fail(ctx, rec, &req, fmt.Sprintf("download failed: %v", err))
	}
	defer cleanup()
	if req.SizeBytes == 0 {
		req.SizeBytes = size
	}

	probe, err := tools.Probe(ctx, localPath)
	if err != nil {
		return fail(ctx, rec, &req, fmt.Sprintf("probe failed: %v", err))
	}

	validation := media.Validate(probe, req.SizeBytes, limits)
	if !validation.Valid {
		rec.Count("ValidationFailed").Duration("ValidateLatency", start)
		message := strings.Join(validation.Errors, "; ")
		if err := sessions.MergeVideoEntry(ctx, req.SessionID, req.SuggestionID, &store.VideoEntry{
			Status:     store.VideoValidationFailed,
			S3Key:      req.S3Key,
			SizeBytes:  req.SizeBytes,
			Validation: validation,
			Error:      message,
		}); err != nil {
			return err
		}
		return jobutil.SetStepError(ctx, req.SessionID, store.StatusValidationFailed,
			fmt.Sprintf("video %s rejected: %s", req.SuggestionID, message), sessions.SetSessionError)
	}

	// Merged so the uploadedAt stamp from the tracker survives.
	if err := sessions.MergeVideoEntry(ctx, req.SessionID, req.SuggestionID, &store.VideoEntry{
		Status:      store.VideoValidated,
		S3Key:       req.S3Key,
		SizeBytes:   req.SizeBytes,
		ValidatedAt: time.Now().Unix(),
		Validation:  validation,
	}); err != nil {
		return err
	}

	rec.Count("VideoValidated").
		Metric("ClipDurationSeconds", validation.DurationSeconds, metrics.UnitSeconds).
		Duration("ValidateLatency", start)
	log.Info().
		Str("sessionId", req.SessionID).
		Str("suggestionId", req.SuggestionID).
		Float64("duration", validation.DurationSeconds).
		Int("width", validation.Width).
		Int("height", validation.Height).
		Dur("elapsed", time.Since(start)).
		Msg("Clip validated")

	if cfg.FormatConverterFunction == "" {
		log.Warn().Msg("FORMAT_CONVERTER_FUNCTION not set — clip left unconverted")
		return nil
	}
	payload := map[string]interface{}{
		"session_id":    req.SessionID,
		"suggestion_id": req.SuggestionID,
		"s3_key":        req.S3Key,
	}
	if err := invoker.Async(ctx, cfg.FormatConverterFunction, payload); err != nil {
		log.Error().Err(err).Str("sessionId", req.SessionID).Msg("Converter dispatch failed")
		return err
	}
	return nil
}

// fail records an infrastructure-level validation failure on both the video
// entry and the session.
func fail(ctx context.Context, rec *metrics.Recorder, req *ValidateRequest, message string) error {
	rec.Count("ValidationError")
	if err := sessions.MergeVideoEntry(ctx, req.SessionID, req.SuggestionID, &store.VideoEntry{
		Status: store.VideoValidationFailed,
		S3Key:  req.S3Key,
		Error:  message,
	}); err != nil {
		log.Error().Err(err).Msg("Failed to record validation failure")
	}
	return jobutil.SetStepError(ctx, req.SessionID, store.StatusValidationFailed,
		fmt.Sprintf("video %s: %s", req.SuggestionID, message), sessions.SetSessionError)
}
