// Package main provides the Lambda entry point for session creation.
//
// Invoked asynchronously by the suggestion Lambda once a recording plan is
// served. Writes the initial session record that the rest of the pipeline
// updates in place.
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
	"github.com/fpang/ai-demo-builder/internal/store"
)

var coldStart = true

var sessions *store.DynamoStore

func init() {
	initStart := time.Now()
	logging.Init()

	cfg := config.Load()
	aws := lambdaboot.InitAWS()
	sessions = lambdaboot.InitSessions(aws.Config, cfg.SessionTable)

	lambdaboot.StartupLog("session-creator-lambda", initStart).
		DynamoTable("sessions", cfg.SessionTable).
		Log()
}

func main() {
	lambda.Start(handler)
}

// CreateRequest is the session-creation payload from the suggestion Lambda.
type CreateRequest struct {
	SessionID   string             `json:"session_id"`
	ProjectName string             `json:"project_name"`
	Owner       string             `json:"github_owner"`
	Repo        string             `json:"github_repo"`
	Suggestions []store.Suggestion `json:"suggestions"`
}

func handler(ctx context.Context, req CreateRequest) error {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "session-creator-lambda").Msg("Cold start — first invocation")
	}
	rec := metrics.Pipeline()
	defer rec.Flush()

	if req.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if len(req.Suggestions) == 0 {
		return fmt.Errorf("session %s has no suggestions", req.SessionID)
	}

	session := &store.Session{
		ID:          req.SessionID,
		ProjectName: req.ProjectName,
		Owner:       req.Owner,
		Repo:        req.Repo,
		Status:      store.StatusReady,
		Suggestions: req.Suggestions,
		Videos:      map[string]*store.VideoEntry{},
	}
	if err := sessions.PutSession(ctx, session); err != nil {
		return err
	}

	rec.Count("SessionCreated")
	log.Info().
		Str("sessionId", req.SessionID).
		Str("project", req.ProjectName).
		Int("suggestions", len(req.Suggestions)).
		Msg("Session created")

	return nil
}
