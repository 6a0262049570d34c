// Package main provides the Lambda entry point for storage cleanup.
//
// Two triggers share one function:
//   - The EventBridge schedule sweeps expired sessions (TTL passed, complete
//     past the retention window, failed past the shorter failed window).
//   - POST /cleanup (or a direct invoke) cleans one session on demand, in
//     complete or intermediate mode.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/apigw"
	"github.com/fpang/ai-demo-builder/internal/cleanup"
	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
)

var coldStart = true

var sweeper *cleanup.Sweeper

func init() {
	initStart := time.Now()
	logging.Init()

	cfg := config.Load()
	aws := lambdaboot.InitAWS()
	s3s := lambdaboot.InitS3(aws.Config, cfg.Bucket)
	sessions := lambdaboot.InitSessions(aws.Config, cfg.SessionTable)
	sweeper = cleanup.New(s3s.Client, s3s.Bucket, sessions, cleanup.Policy{
		DaysToKeep:        cfg.DaysToKeep,
		FailedSessionDays: cfg.FailedDays,
	})

	lambdaboot.StartupLog("cleanup-lambda", initStart).
		S3Bucket("media", s3s.Bucket).
		DynamoTable("sessions", cfg.SessionTable).
		Config("daysToKeep", fmt.Sprintf("%d", cfg.DaysToKeep)).
		Config("failedSessionDays", fmt.Sprintf("%d", cfg.FailedDays)).
		Log()
}

func main() {
	lambda.Start(handler)
}

// CleanupRequest is the on-demand cleanup payload.
type CleanupRequest struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

// handler dispatches on the raw event shape: a scheduled EventBridge event,
// an API Gateway request, or a direct invoke payload.
func handler(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "cleanup-lambda").Msg("Cold start — first invocation")
	}
	rec := metrics.Pipeline()
	defer rec.Flush()

	var probe struct {
		Source     string `json:"source"`
		HTTPMethod string `json:"httpMethod"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}

	if probe.Source == "aws.events" {
		return handleScheduledSweep(ctx, rec)
	}

	if probe.HTTPMethod != "" {
		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("parse request: %w", err)
		}
		var body CleanupRequest
		if !apigw.ParseBody(req, &body) || body.SessionID == "" {
			return apigw.Error(400, "session_id is required")
		}
		result, err := cleanSession(ctx, rec, &body)
		if err != nil {
			return apigw.Error(500, "cleanup failed", err.Error())
		}
		return apigw.JSON(200, result)
	}

	var body CleanupRequest
	if err := json.Unmarshal(raw, &body); err != nil || body.SessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	return cleanSession(ctx, rec, &body)
}

func handleScheduledSweep(ctx context.Context, rec *metrics.Recorder) (*cleanup.SweepResult, error) {
	start := time.Now()
	log.Info().Msg("Scheduled cleanup sweep starting")

	result, err := sweeper.SweepExpired(ctx)
	if err != nil {
		rec.Count("CleanupSweepFailed")
		return nil, err
	}

	rec.Count("CleanupSweep").
		Metric("SessionsCleaned", float64(result.SessionsCleaned), metrics.UnitCount).
		Metric("FilesDeleted", float64(result.FilesDeleted), metrics.UnitCount).
		Duration("SweepLatency", start)
	log.Info().
		Int("sessionsCleaned", result.SessionsCleaned).
		Int("filesDeleted", result.FilesDeleted).
		Int("errors", len(result.Errors)).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled cleanup sweep finished")

	return result, nil
}

func cleanSession(ctx context.Context, rec *metrics.Recorder, req *CleanupRequest) (*cleanup.SessionResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = cleanup.ModeComplete
	}

	var result *cleanup.SessionResult
	var err error
	switch mode {
	case cleanup.ModeComplete:
		result, err = sweeper.CleanSession(ctx, req.SessionID)
	case cleanup.ModeIntermediate:
		result, err = sweeper.CleanIntermediate(ctx, req.SessionID)
	default:
		return nil, fmt.Errorf("unknown cleanup mode: %q", mode)
	}
	if err != nil {
		rec.Count("CleanupFailed")
		return nil, err
	}

	rec.Count("SessionCleaned").Dimension("Mode", mode)
	log.Info().
		Str("sessionId", req.SessionID).
		Str("mode", mode).
		Int("filesDeleted", result.FilesDeleted).
		Msg("Session cleaned")

	return result, nil
}
