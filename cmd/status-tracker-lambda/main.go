// Package main provides the Lambda entry point for the status API.
//
// GET /status/{session} returns a full progress report: percentage,
// pipeline step, timeline, per-clip detail, result URLs once complete, and
// error detail on failure. Responses are never cached — the frontend polls
// this endpoint while a demo builds.
package main

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/apigw"
	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/status"
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

	lambdaboot.StartupLog("status-tracker-lambda", initStart).
		DynamoTable("sessions", cfg.SessionTable).
		Log()
}

func main() {
	lambda.Start(handler)
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "status-tracker-lambda").Msg("Cold start — first invocation")
	}
	rec := metrics.Pipeline()
	defer rec.Flush()

	sessionID := extractSessionID(req)
	if sessionID == "" {
		return apigw.Error(400, "session_id is required")
	}

	session, err := sessions.GetSession(ctx, sessionID)
	if err != nil {
		return apigw.Error(500, "failed to load session", err.Error())
	}
	if session == nil {
		return apigw.Error(404, "session not found")
	}

	report := status.Build(session, time.Now())
	rec.Count("StatusServed")

	return apigw.JSONWithHeaders(200, map[string]interface{}{"data": report}, map[string]string{
		"Cache-Control": "no-cache",
	})
}

// extractSessionID accepts the session ID from the path, the query string,
// or a JSON body, in that order.
func extractSessionID(req events.APIGatewayProxyRequest) string {
	if id := req.PathParameters["session_id"]; id != "" {
		return id
	}
	if base := path.Base(strings.TrimSuffix(req.Path, "/")); base != "" && base != "status" && base != "." {
		return base
	}
	if id := req.QueryStringParameters["session_id"]; id != "" {
		return id
	}
	if req.Body != "" {
		var body struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal([]byte(req.Body), &body); err == nil {
			return body.SessionID
		}
	}
	return ""
}
