// Package main provides the Lambda entry point for demo generation requests.
//
// POST /generate moves a fully-uploaded session into the processing queue.
// The converter normally queues the stitch job automatically; this endpoint
// covers manual retries and sessions whose auto-enqueue failed.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/apigw"
	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/queue"
	"github.com/fpang/ai-demo-builder/internal/store"
)

var coldStart = true

var (
	sessions  *store.DynamoStore
	publisher *queue.Publisher
)

func init() {
	initStart := time.Now()
	logging.Init()

	cfg := config.Load()
	aws := lambdaboot.InitAWS()
	sessions = lambdaboot.InitSessions(aws.Config, cfg.SessionTable)
	sqsClient, queueURL := lambdaboot.InitSQS(aws.Config)
	publisher = queue.NewPublisher(sqsClient, queueURL)

	lambdaboot.StartupLog("job-queue-lambda", initStart).
		DynamoTable("sessions", cfg.SessionTable).
		Queue("stitchJobs", queueURL).
		Log()
}

func main() {
	lambda.Start(handler)
}

// GenerateRequest is the POST /generate body.
type GenerateRequest struct {
	SessionID string `json:"session_id"`
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "job-queue-lambda").Msg("Cold start — first invocation")
	}
	rec := metrics.Pipeline()
	defer rec.Flush()

	var body GenerateRequest
	if !apigw.ParseBody(req, &body) || body.SessionID == "" {
		return apigw.Error(400, "session_id is required")
	}

	session, err := sessions.GetSession(ctx, body.SessionID)
	if err != nil {
		return apigw.Error(500, "failed to load session", err.Error())
	}
	if session == nil {
		return apigw.Error(404, "session not found")
	}

	switch session.Status {
	case store.StatusComplete:
		return apigw.Error(409, "Demo already generated")
	case store.StatusQueued, store.StatusSlidesReady, store.StatusStitching,
		store.StatusStitched, store.StatusOptimizing:
		return apigw.Error(409, fmt.Sprintf("Demo is already processing (status: %s)", session.Status))
	case store.StatusReadyForProcessing:
		// Ready to queue.
	case store.StatusUploading:
		if !session.AllConverted() {
			return apigw.Error(409, "not all videos are uploaded and converted yet")
		}
	default:
		return apigw.Error(409, fmt.Sprintf("session is not ready for generation (status: %s)", session.Status))
	}

	if err := sessions.UpdateSessionStatus(ctx, body.SessionID, store.StatusQueued); err != nil {
		return apigw.Error(500, "failed to queue session", err.Error())
	}

	messageID, err := publisher.EnqueueStitch(ctx, body.SessionID, session.ProjectName, len(session.Suggestions), "user_request")
	if err != nil {
		return apigw.Error(500, "failed to queue demo generation", err.Error())
	}

	rec.Count("GenerationQueued")
	log.Info().
		Str("sessionId", body.SessionID).
		Str("messageId", messageID).
		Msg("Demo generation queued")

	return apigw.JSON(202, map[string]interface{}{
		"session_id": body.SessionID,
		"status":     store.StatusQueued,
		"message_id": messageID,
		"message":    "Demo generation queued",
	})
}
