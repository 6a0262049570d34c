// Package main provides the Lambda entry point for completion notifications.
//
// Invoked by the optimizer when a demo finishes. Fans the announcement out
// to the log banner, an optional HTTP webhook, and an optional SNS topic.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/notify"
	"github.com/fpang/ai-demo-builder/internal/store"
)

var coldStart = true

var (
	sessions *store.DynamoStore
	notifier *notify.Notifier
)

func init() {
	initStart := time.Now()
	logging.Init()

	cfg := config.Load()
	aws := lambdaboot.InitAWS()
	sessions = lambdaboot.InitSessions(aws.Config, cfg.SessionTable)
	snsClient, topicARN := lambdaboot.InitSNS(aws.Config)
	notifier = notify.New(snsClient, topicARN, cfg.WebhookURL)

	lambdaboot.StartupLog("notification-lambda", initStart).
		DynamoTable("sessions", cfg.SessionTable).
		Topic("demoReady", topicARN).
		Config("webhookConfigured", fmt.Sprintf("%t", cfg.WebhookURL != "")).
		Log()
}

func main() {
	lambda.Start(handler)
}

// NotifyRequest identifies the completed session to announce.
type NotifyRequest struct {
	SessionID string `json:"session_id"`
}

func handler(ctx context.Context, req NotifyRequest) error {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "notification-lambda").Msg("Cold start — first invocation")
	}
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
	if session.Status != store.StatusComplete || session.Results == nil || session.Results.DemoURL == "" {
		return fmt.Errorf("session %s is not complete (status: %s)", req.SessionID, session.Status)
	}

	result := notifier.Send(ctx, &notify.Event{
		SessionID:    session.ID,
		ProjectName:  session.ProjectName,
		DemoURL:      session.Results.DemoURL,
		ThumbnailURL: session.Results.ThumbnailURL,
	})

	rec.Count("NotificationSent").
		Metric("NotificationChannelErrors", float64(len(result.Errors)), metrics.UnitCount)
	log.Info().
		Str("sessionId", session.ID).
		Bool("webhook", result.Webhook).
		Bool("sns", result.SNS).
		Int("channelErrors", len(result.Errors)).
		Msg("Completion notification dispatched")

	if !result.Delivered() {
		return fmt.Errorf("every notification channel failed for session %s", req.SessionID)
	}
	return nil
}
