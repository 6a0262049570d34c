// Package main provides the Lambda entry point for slide rendering.
//
// Consumes stitch jobs from SQS (or a direct invoke with the same message
// shape) and renders the title, section, and end slides for the demo as
// 1920x1080 PNGs. Slides are pure Go image rendering; no ffmpeg here.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/invoke"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/queue"
	"github.com/fpang/ai-demo-builder/internal/s3util"
	"github.com/fpang/ai-demo-builder/internal/slides"
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

	lambdaboot.StartupLog("slide-creator-lambda", initStart).
		S3Bucket("media", bucket).
		DynamoTable("sessions", cfg.SessionTable).
		LambdaFunc("videoStitcher", cfg.VideoStitcherFunction).
		Log()
}

func main() {
	lambda.Start(handler)
}

// handler accepts either an SQS event batch or a direct stitch message.
func handler(ctx context.Context, raw json.RawMessage) error {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "slide-creator-lambda").Msg("Cold start — first invocation")
	}

	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(raw, &sqsEvent); err == nil && len(sqsEvent.Records) > 0 {
		for _, record := range sqsEvent.Records {
			msg, err := queue.ParseStitchMessage(record.Body)
			if err != nil {
				// A malformed message would retry forever; drop it loudly.
				log.Error().Err(err).Str("messageId", record.MessageId).Msg("Unparseable stitch message dropped")
				continue
			}
			if err := createSlides(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	msg, err := queue.ParseStitchMessage(string(raw))
	if err != nil {
		return fmt.Errorf("parse stitch message: %w", err)
	}
	return createSlides(ctx, msg)
}

func createSlides(ctx context.Context, msg *queue.StitchMessage) error {
	start := time.Now()
	rec := metrics.Pipeline()
	defer rec.Flush()

	session, err := sessions.GetSession(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %s not found", msg.SessionID)
	}

	projectName := session.ProjectName
	if projectName == "" {
		projectName = msg.ProjectName
	}
	log.Info().
		Str("sessionId", msg.SessionID).
		Str("project", projectName).
		Int("sections", len(session.Suggestions)).
		Msg("Rendering slides")

	if err := uploadSlide(ctx, slides.TitleKey(msg.SessionID), slides.Title(projectName, session.Owner)); err != nil {
		return err
	}
	for _, sug := range session.Suggestions {
		img := slides.Section(sug.SequenceNumber, sug.Title, sug.Duration)
		if err := uploadSlide(ctx, slides.SectionKey(msg.SessionID, sug.SequenceNumber), img); err != nil {
			return err
		}
	}
	if err := uploadSlide(ctx, slides.EndKey(msg.SessionID), slides.End(projectName)); err != nil {
		return err
	}

	if err := sessions.UpdateSessionStatus(ctx, msg.SessionID, store.StatusSlidesReady); err != nil {
		return err
	}

	rec.Count("SlidesRendered").
		Metric("SlideCount", float64(len(session.Suggestions)+2), metrics.UnitCount).
		Duration("SlideLatency", start)
	log.Info().
		Str("sessionId", msg.SessionID).
		Int("slides", len(session.Suggestions)+2).
		Dur("elapsed", time.Since(start)).
		Msg("Slides rendered")

	if cfg.VideoStitcherFunction == "" {
		log.Warn().Msg("VIDEO_STITCHER_FUNCTION not set — pipeline stops at slides_ready")
		return nil
	}
	payload := map[string]interface{}{
		"session_id":   msg.SessionID,
		"project_name": projectName,
	}
	if err := invoker.Async(ctx, cfg.VideoStitcherFunction, payload); err != nil {
		return fmt.Errorf("stitcher dispatch: %w", err)
	}
	return nil
}

func uploadSlide(ctx context.Context, key string, img *image.RGBA) error {
	encoded, err := slides.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s3util.UploadBytes(ctx, s3Client, bucket, key, encoded, "image/png")
}
