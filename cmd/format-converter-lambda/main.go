// Package main provides the Lambda entry point for format conversion.
//
// Invoked asynchronously by the validator for each accepted clip. Re-encodes
// to the 1920x1080@30 pipeline format so the stitcher can concatenate clips
// without re-negotiating codecs. When the last clip converts, the session
// moves to ready_for_processing and the stitch job is queued.
//
// Container: heavy (ffmpeg layer required)
// Timeout: 5 minutes
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/jobutil"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/media"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/queue"
	"github.com/fpang/ai-demo-builder/internal/s3util"
	"github.com/fpang/ai-demo-builder/internal/store"
)

var coldStart = true

var (
	cfg       *config.Config
	sessions  *store.DynamoStore
	s3Client  *s3.Client
	bucket    string
	tools     media.Tools
	publisher *queue.Publisher
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
	tools = media.ResolveTools(cfg.FFmpegPath, cfg.FFprobePath)
	publisher = queue.NewPublisher(awssqs.NewFromConfig(aws.Config), cfg.QueueURL)

	lambdaboot.StartupLog("format-converter-lambda", initStart).
		S3Bucket("media", bucket).
		DynamoTable("sessions", cfg.SessionTable).
		Queue("stitchJobs", cfg.QueueURL).
		Config("ffmpeg", tools.FFmpeg).
		Log()
}

func main() {
	lambda.Start(handler)
}

// ConvertRequest identifies the validated clip to standardize.
type ConvertRequest struct {
	SessionID    string `json:"session_id"`
	SuggestionID string `json:"suggestion_id"`
	S3Key        string `json:"s3_key"`
}

func handler(ctx context.Context, req ConvertRequest) error {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "format-converter-lambda").Msg("Cold start — first invocation")
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
		Msg("Converting clip to pipeline format")

	inputPath, _, cleanup, err := s3util.DownloadToTemp(ctx, s3Client, bucket, req.S3Key, "convert-in-*.mp4")
	if err != nil {
		return fail(ctx, rec, &req, fmt.Sprintf("download failed: %v", err))
	}
	defer cleanup()

	outputPath := filepath.Join(os.TempDir(), fmt.Sprintf("standardized_%s_%s.mp4", req.SessionID, req.SuggestionID))
	defer os.Remove(outputPath)

	if err := tools.Standardize(ctx, inputPath, outputPath); err != nil {
		return fail(ctx, rec, &req, fmt.Sprintf("conversion failed: %v", err))
	}

	standardizedKey := fmt.Sprintf("videos/%s/standardized_%s.mp4", req.SessionID, req.SuggestionID)
	size, err := s3util.UploadFile(ctx, s3Client, bucket, standardizedKey, outputPath, "video/mp4", nil)
	if err != nil {
		return fail(ctx, rec, &req, fmt.Sprintf("upload failed: %v", err))
	}

	// Merged so the validation details and upload/validation stamps survive.
	if err := sessions.MergeVideoEntry(ctx, req.SessionID, req.SuggestionID, &store.VideoEntry{
		Status:          store.VideoConverted,
		S3Key:           req.S3Key,
		StandardizedKey: standardizedKey,
		SizeBytes:       size,
		ConvertedAt:     time.Now().Unix(),
	}); err != nil {
		return err
	}

	rec.Count("VideoConverted").
		Metric("ConvertedBytes", float64(size), metrics.UnitBytes).
		Duration("ConvertLatency", start)
	log.Info().
		Str("sessionId", req.SessionID).
		Str("suggestionId", req.SuggestionID).
		Str("key", standardizedKey).
		Dur("elapsed", time.Since(start)).
		Msg("Clip converted")

	return maybeQueueStitch(ctx, req.SessionID)
}

// maybeQueueStitch checks whether every suggestion now has a converted clip
// and, if so, advances the session and enqueues the stitch job.
func maybeQueueStitch(ctx context.Context, sessionID string) error {
	session, err := sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil || !session.AllConverted() {
		return nil
	}

	if err := sessions.UpdateSessionStatus(ctx, sessionID, store.StatusReadyForProcessing); err != nil {
		return err
	}

	messageID, err := publisher.EnqueueStitch(ctx, sessionID, session.ProjectName, len(session.Suggestions), "format_converter")
	if err != nil {
		// The user can still trigger stitching through POST /generate.
		log.Warn().Err(err).Str("sessionId", sessionID).Msg("Stitch enqueue failed — waiting for manual generate")
		return nil
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("messageId", messageID).
		Int("videos", len(session.Suggestions)).
		Msg("All clips converted — stitch job queued")
	return nil
}

func fail(ctx context.Context, rec *metrics.Recorder, req *ConvertRequest, message string) error {
	rec.Count("ConversionFailed")
	if err := sessions.MergeVideoEntry(ctx, req.SessionID, req.SuggestionID, &store.VideoEntry{
		Status: store.VideoConversionFailed,
		S3Key:  req.S3Key,
		Error:  message,
	}); err != nil {
		log.Error().Err(err).Msg("Failed to record conversion failure")
	}
	return jobutil.SetStepError(ctx, req.SessionID, store.StatusConversionFailed,
		fmt.Sprintf("video %s: %s", req.SuggestionID, message), sessions.SetSessionError)
}
