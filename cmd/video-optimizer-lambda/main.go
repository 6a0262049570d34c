// Package main provides the Lambda entry point for output optimization.
//
// Invoked by the stitcher with the raw stitched demo. Produces the final
// 1080p and 720p renditions plus a thumbnail, presigns download URLs, and
// marks the session complete.
//
// Container: heavy (ffmpeg layer required)
// Timeout: 15 minutes
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
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

// downloadExpiry is the lifetime of the presigned result URLs. The keys are
// stored too, so expired URLs can be re-signed.
const downloadExpiry = 24 * time.Hour

var coldStart = true

var (
	cfg       *config.Config
	sessions  *store.DynamoStore
	s3Client  *s3.Client
	presigner *s3.PresignClient
	bucket    string
	invoker   *invoke.Invoker
	tools     media.Tools
)

func init() {
	initStart := time.Now()
	logging.Init()

	cfg = config.Load()
	aws := lambdaboot.InitAWS()
	s3s := lambdaboot.InitS3(aws.Config, cfg.Bucket)
	s3Client = s3s.Client
	presigner = s3s.Presigner
	bucket = s3s.Bucket
	sessions = lambdaboot.InitSessions(aws.Config, cfg.SessionTable)
	invoker = invoke.New(aws.Lambda)
	tools = media.ResolveTools(cfg.FFmpegPath, cfg.FFprobePath)

	lambdaboot.StartupLog("video-optimizer-lambda", initStart).
		S3Bucket("media", bucket).
		DynamoTable("sessions", cfg.SessionTable).
		LambdaFunc("notification", cfg.NotificationFunction).
		Config("ffmpeg", tools.FFmpeg).
		Log()
}

func main() {
	lambda.Start(handler)
}

// OptimizeRequest identifies the stitched demo to finalize.
type OptimizeRequest struct {
	SessionID   string `json:"session_id"`
	ProjectName string `json:"project_name"`
	StitchedKey string `json:"stitched_key"`
}

func handler(ctx context.Context, req OptimizeRequest) error {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "video-optimizer-lambda").Msg("Cold start — first invocation")
	}
	start := time.Now()
	rec := metrics.Pipeline()
	defer rec.Flush()

	if req.SessionID == "" || req.StitchedKey == "" {
		return fmt.Errorf("session_id and stitched_key are required")
	}

	if err := sessions.UpdateSessionStatus(ctx, req.SessionID, store.StatusOptimizing); err != nil {
		return err
	}

	results, err := optimize(ctx, &req)
	if err != nil {
		rec.Count("OptimizationFailed")
		return jobutil.SetStepError(ctx, req.SessionID, store.StatusOptimizationFailed, err.Error(), sessions.SetSessionError)
	}

	if err := sessions.SetResults(ctx, req.SessionID, results); err != nil {
		return err
	}
	if err := sessions.UpdateSessionStatus(ctx, req.SessionID, store.StatusComplete); err != nil {
		return err
	}

	rec.Count("DemoCompleted").
		Metric("FinalBytes", float64(results.FinalSizeBytes), metrics.UnitBytes).
		Duration("OptimizeLatency", start)
	log.Info().
		Str("sessionId", req.SessionID).
		Str("finalKey", results.PrimaryFinalKey()).
		Dur("elapsed", time.Since(start)).
		Msg("Demo complete")

	if cfg.NotificationFunction == "" {
		log.Debug().Msg("NOTIFICATION_FUNCTION not set — skipping notification")
		return nil
	}
	payload := map[string]string{"session_id": req.SessionID}
	if err := invoker.Async(ctx, cfg.NotificationFunction, payload); err != nil {
		// The demo is done; a lost notification is not a pipeline failure.
		log.Warn().Err(err).Str("sessionId", req.SessionID).Msg("Notification dispatch failed")
	}
	return nil
}

// optimize encodes the renditions and thumbnail and presigns their URLs.
func optimize(ctx context.Context, req *OptimizeRequest) (*store.Results, error) {
	inputPath, _, cleanup, err := s3util.DownloadToTemp(ctx, s3Client, bucket, req.StitchedKey, "optimize-in-*.mp4")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	workDir, err := os.MkdirTemp("", "optimize-"+req.SessionID+"-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	results := &store.Results{StitchedKey: req.StitchedKey}

	renditions := []string{"1080p", "720p"}
	for i, preset := range renditions {
		step := fmt.Sprintf("encoding_%s", preset)
		if err := sessions.SetStitchProgress(ctx, req.SessionID, i+1, len(renditions)+1, step); err != nil {
			log.Warn().Err(err).Msg("Progress update failed")
		}

		outputPath := filepath.Join(workDir, "final_"+preset+".mp4")
		if err := tools.Encode(ctx, inputPath, outputPath, preset); err != nil {
			return nil, fmt.Errorf("encode %s: %w", preset, err)
		}

		key := fmt.Sprintf("demos/%s/final_demo_%s_%s.mp4", req.SessionID, req.SessionID, preset)
		size, err := s3util.UploadFile(ctx, s3Client, bucket, key, outputPath, "video/mp4", nil)
		if err != nil {
			return nil, err
		}

		url, err := s3util.PresignDownload(ctx, presigner, bucket, key, downloadExpiry)
		if err != nil {
			return nil, err
		}

		switch preset {
		case "1080p":
			results.FinalKey1080 = key
			results.DemoURL1080 = url
		case "720p":
			results.FinalKey720 = key
			results.DemoURL720 = url
			results.FinalSizeBytes = size
		}
	}

	if err := sessions.SetStitchProgress(ctx, req.SessionID, len(renditions)+1, len(renditions)+1, "thumbnail"); err != nil {
		log.Warn().Err(err).Msg("Progress update failed")
	}

	thumbPath := filepath.Join(workDir, "thumbnail.jpg")
	if err := tools.Thumbnail(ctx, inputPath, thumbPath); err != nil {
		// Thumbnail loss is cosmetic; the demo itself is done.
		log.Warn().Err(err).Str("sessionId", req.SessionID).Msg("Thumbnail generation failed")
	} else {
		thumbKey := fmt.Sprintf("demos/%s/thumbnail.jpg", req.SessionID)
		if _, err := s3util.UploadFile(ctx, s3Client, bucket, thumbKey, thumbPath, "image/jpeg", nil); err != nil {
			log.Warn().Err(err).Msg("Thumbnail upload failed")
		} else {
			results.ThumbnailKey = thumbKey
			if url, err := s3util.PresignDownload(ctx, presigner, bucket, thumbKey, downloadExpiry); err == nil {
				results.ThumbnailURL = url
			}
		}
	}

	// The player URL prefers 720p: a fraction of the bytes at negligible
	// quality loss for screen recordings.
	results.DemoURL = results.DemoURL720
	if results.DemoURL == "" {
		results.DemoURL = results.DemoURL1080
	}
	return results, nil
}
