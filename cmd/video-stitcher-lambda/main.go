// Package main provides the Lambda entry point for video stitching.
//
// Invoked by the slide creator once slides are rendered. Builds the full
// demo sequence — title slide, then each section slide followed by its
// standardized clip, then the end slide — turns slides into short silent
// videos, and concatenates everything with the ffmpeg concat demuxer.
//
// Container: heavy (ffmpeg layer required)
// Memory: 3 GB (ffmpeg working set)
// Timeout: 15 minutes
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
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
	"github.com/fpang/ai-demo-builder/internal/slides"
	"github.com/fpang/ai-demo-builder/internal/store"
)

// endSlideOrder sorts the end slide after every section/clip pair; section
// and clip orders are seq*100 and seq*100+50.
const endSlideOrder = 999 * 100

var coldStart = true

var (
	cfg      *config.Config
	sessions *store.DynamoStore
	s3Client *s3.Client
	bucket   string
	invoker  *invoke.Invoker
	tools    media.Tools
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

	lambdaboot.StartupLog("video-stitcher-lambda", initStart).
		S3Bucket("media", bucket).
		DynamoTable("sessions", cfg.SessionTable).
		LambdaFunc("videoOptimizer", cfg.VideoOptimizerFunction).
		Config("ffmpeg", tools.FFmpeg).
		Log()
}

func main() {
	lambda.Start(handler)
}

// StitchRequest identifies the session to stitch.
type StitchRequest struct {
	SessionID   string `json:"session_id"`
	ProjectName string `json:"project_name"`
}

// sequenceItem is one entry in the ordered demo timeline.
type sequenceItem struct {
	order int
	kind  string // "slide" or "clip"
	key   string
	label string
}

func handler(ctx context.Context, req StitchRequest) error {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "video-stitcher-lambda").Msg("Cold start — first invocation")
	}
	start := time.Now()
	rec := metrics.Pipeline()
	defer rec.Flush()

	if req.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	session, err := sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %s not found", req.SessionID)
	}

	if err := sessions.UpdateSessionStatus(ctx, req.SessionID, store.StatusStitching); err != nil {
		return err
	}

	stitchedKey, err := stitch(ctx, session)
	if err != nil {
		rec.Count("StitchingFailed")
		return jobutil.SetStepError(ctx, req.SessionID, store.StatusStitchingFailed, err.Error(), sessions.SetSessionError)
	}

	if err := sessions.UpdateSessionStatus(ctx, req.SessionID, store.StatusStitched); err != nil {
		return err
	}

	rec.Count("DemoStitched").Duration("StitchLatency", start)
	log.Info().
		Str("sessionId", req.SessionID).
		Str("key", stitchedKey).
		Dur("elapsed", time.Since(start)).
		Msg("Demo stitched")

	if cfg.VideoOptimizerFunction == "" {
		log.Warn().Msg("VIDEO_OPTIMIZER_FUNCTION not set — pipeline stops at stitched")
		return nil
	}
	payload := map[string]interface{}{
		"session_id":   req.SessionID,
		"project_name": session.ProjectName,
		"stitched_key": stitchedKey,
	}
	if err := invoker.Async(ctx, cfg.VideoOptimizerFunction, payload); err != nil {
		return fmt.Errorf("optimizer dispatch: %w", err)
	}
	return nil
}

// stitch assembles the timeline, prepares each item as a local mp4, and
// concatenates. Returns the S3 key of the stitched demo.
func stitch(ctx context.Context, session *store.Session) (string, error) {
	items, err := buildSequence(session)
	if err != nil {
		return "", err
	}

	workDir, err := os.MkdirTemp("", "stitch-"+session.ID+"-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	total := len(items) + 1 // +1 for the concat step
	paths := make([]string, 0, len(items))
	for i, item := range items {
		if err := sessions.SetStitchProgress(ctx, session.ID, i+1, total, "preparing_"+item.label); err != nil {
			log.Warn().Err(err).Msg("Progress update failed")
		}

		path, err := prepareItem(ctx, workDir, i, item)
		if err != nil {
			return "", fmt.Errorf("prepare %s: %w", item.label, err)
		}
		paths = append(paths, path)
	}

	if err := sessions.SetStitchProgress(ctx, session.ID, total, total, "concatenating"); err != nil {
		log.Warn().Err(err).Msg("Progress update failed")
	}

	outputPath := filepath.Join(workDir, "stitched.mp4")
	if err := tools.Concat(ctx, paths, outputPath); err != nil {
		return "", err
	}

	stitchedKey := fmt.Sprintf("demos/%s/stitched_demo_%s_%s.mp4",
		session.ID, session.ID, time.Now().Format("20060102150405"))
	if _, err := s3util.UploadFile(ctx, s3Client, bucket, stitchedKey, outputPath, "video/mp4", nil); err != nil {
		return "", err
	}
	return stitchedKey, nil
}

// buildSequence orders the demo: title slide, per-suggestion section slide
// then clip, end slide. Missing converted clips abort the stitch.
func buildSequence(session *store.Session) ([]sequenceItem, error) {
	if len(session.Suggestions) == 0 {
		return nil, fmt.Errorf("session %s has no suggestions", session.ID)
	}

	items := []sequenceItem{
		{order: 0, kind: "slide", key: slides.TitleKey(session.ID), label: "title_slide"},
		{order: endSlideOrder, kind: "slide", key: slides.EndKey(session.ID), label: "end_slide"},
	}

	for _, sug := range session.Suggestions {
		id := store.SuggestionID(sug.SequenceNumber)
		entry, ok := session.Videos[id]
		if !ok || entry.StandardizedKey == "" {
			return nil, fmt.Errorf("video %s has no standardized clip", id)
		}
		items = append(items,
			sequenceItem{
				order: sug.SequenceNumber * 100,
				kind:  "slide",
				key:   slides.SectionKey(session.ID, sug.SequenceNumber),
				label: fmt.Sprintf("section_slide_%d", sug.SequenceNumber),
			},
			sequenceItem{
				order: sug.SequenceNumber*100 + 50,
				kind:  "clip",
				key:   entry.StandardizedKey,
				label: fmt.Sprintf("clip_%d", sug.SequenceNumber),
			},
		)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].order < items[j].order })
	return items, nil
}

// prepareItem produces a local mp4 for one timeline entry. Slides become
// 3-second videos with a silent stereo track so the concat demuxer sees
// uniform streams.
func prepareItem(ctx context.Context, workDir string, index int, item sequenceItem) (string, error) {
	pattern := fmt.Sprintf("item-%03d-*", index)

	localPath, _, cleanup, err := s3util.DownloadToTemp(ctx, s3Client, bucket, item.key, pattern)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if item.kind == "clip" {
		// Keep the clip alive past cleanup by copying into the work dir.
		dest := filepath.Join(workDir, fmt.Sprintf("item_%03d.mp4", index))
		if err := os.Rename(localPath, dest); err != nil {
			return "", fmt.Errorf("move clip: %w", err)
		}
		return dest, nil
	}

	videoPath := filepath.Join(workDir, fmt.Sprintf("item_%03d_silent.mp4", index))
	if err := tools.SlideToVideo(ctx, localPath, videoPath); err != nil {
		return "", err
	}

	withAudio := filepath.Join(workDir, fmt.Sprintf("item_%03d.mp4", index))
	if err := tools.AddSilentAudio(ctx, videoPath, withAudio); err != nil {
		return "", err
	}
	os.Remove(videoPath)
	return withAudio, nil
}
