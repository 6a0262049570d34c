// Package main provides the Lambda entry point for recording suggestions.
//
// POST /suggestions takes the analysis produced by /analyze and asks Gemini
// for a recording plan: which clips to film, in what order, with narration
// scripts. A new session is created for the plan via the session-creator
// Lambda so uploads can start immediately.
package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/analyze"
	"github.com/fpang/ai-demo-builder/internal/apigw"
	"github.com/fpang/ai-demo-builder/internal/cache"
	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/githubapi"
	"github.com/fpang/ai-demo-builder/internal/invoke"
	"github.com/fpang/ai-demo-builder/internal/jobs"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/readme"
	"github.com/fpang/ai-demo-builder/internal/store"
	"github.com/fpang/ai-demo-builder/internal/suggest"
)

// suggestionsTTL keeps generated plans around longer than raw analyses;
// Gemini calls are the expensive step, and a plan for an unchanged commit
// stays useful.
const suggestionsTTL = 2 * time.Hour

var coldStart = true

var (
	cfg        *config.Config
	cacheStore *cache.Store
	generator  *suggest.Generator
	invoker    *invoke.Invoker
)

func init() {
	initStart := time.Now()
	logging.Init()

	cfg = config.Load()
	aws := lambdaboot.InitAWS()
	sessions := lambdaboot.InitSessions(aws.Config, cfg.SessionTable)
	cacheStore = lambdaboot.InitCache(sessions.Client(), cfg.CacheTable)
	invoker = invoke.New(aws.Lambda)
	lambdaboot.LoadGeminiKey(aws.SSM)

	var err error
	generator, err = suggest.NewGenerator(context.Background(), logging.EnvOrDefault("GEMINI_API_KEY", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	lambdaboot.StartupLog("suggestion-lambda", initStart).
		DynamoTable("cache", cfg.CacheTable).
		LambdaFunc("sessionCreator", cfg.SessionCreatorFunction).
		Config("geminiModel", suggest.ModelName).
		Log()
}

func main() {
	lambda.Start(handler)
}

// SuggestRequest is the POST /suggestions body — the /analyze response
// echoed back by the frontend.
type SuggestRequest struct {
	Owner         string                `json:"owner"`
	Repo          string                `json:"repo"`
	CommitSHA     string                `json:"commit_sha"`
	Repository    *githubapi.Repository `json:"repository"`
	Readme        *readme.Analysis      `json:"readme_analysis"`
	Analysis      *analyze.Analysis     `json:"project_analysis"`
	ReadmeContent string                `json:"readme_content"`
}

// SuggestResponse is the recording plan plus the session created for it.
type SuggestResponse struct {
	SessionID              string             `json:"session_id"`
	ProjectName            string             `json:"project_name"`
	Videos                 []store.Suggestion `json:"videos"`
	OverallFlow            string             `json:"overall_flow,omitempty"`
	TotalEstimatedDuration string             `json:"total_estimated_duration,omitempty"`
	ProjectSpecificTips    []string           `json:"project_specific_tips,omitempty"`
	Cached                 bool               `json:"cached"`
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "suggestion-lambda").Msg("Cold start — first invocation")
	}
	start := time.Now()
	rec := metrics.Pipeline()
	defer rec.Flush()

	var body SuggestRequest
	if !apigw.ParseBody(req, &body) || body.Repository == nil || body.Analysis == nil {
		return apigw.Error(400, "analysis payload is required — call /analyze first")
	}

	projectName := body.Repository.Name
	if body.Readme != nil && body.Readme.Title != "" && body.Readme.Title != "Unknown Project" {
		projectName = body.Readme.Title
	}
	rec.Property("repo", body.Owner+"/"+body.Repo)

	set, cached := suggestionPlan(ctx, &body, projectName)

	sessionID := jobs.NewSessionID()
	createSession(ctx, sessionID, projectName, &body, set.Videos)

	rec.Count("SuggestionsServed").
		Metric("SuggestionCount", float64(len(set.Videos)), metrics.UnitCount).
		Duration("SuggestLatency", start)

	log.Info().
		Str("sessionId", sessionID).
		Str("project", projectName).
		Int("videos", len(set.Videos)).
		Bool("cached", cached).
		Msg("Recording plan served")

	return apigw.JSON(200, &SuggestResponse{
		SessionID:              sessionID,
		ProjectName:            projectName,
		Videos:                 set.Videos,
		OverallFlow:            set.OverallFlow,
		TotalEstimatedDuration: set.TotalEstimatedDuration,
		ProjectSpecificTips:    set.ProjectSpecificTips,
		Cached:                 cached,
	})
}

// suggestionPlan returns the cached plan for this commit when present,
// otherwise generates one and caches it.
func suggestionPlan(ctx context.Context, body *SuggestRequest, projectName string) (*suggest.SuggestionSet, bool) {
	cacheKey := cache.SuggestionsKey(body.Owner, body.Repository.Name, body.CommitSHA)

	if cachedPlan, ok := cacheStore.Get(ctx, cacheKey); ok {
		var set suggest.SuggestionSet
		if err := json.Unmarshal([]byte(cachedPlan), &set); err == nil && len(set.Videos) > 0 {
			return &set, true
		}
		log.Warn().Str("key", cacheKey).Msg("Cached suggestion plan unreadable — regenerating")
	}

	set := generator.Generate(ctx, &suggest.Input{
		ProjectName:       projectName,
		Owner:             body.Owner,
		Stars:             body.Repository.StargazersCount,
		Language:          body.Repository.Language,
		Description:       body.Repository.Description,
		ProjectType:       body.Analysis.ProjectType,
		Complexity:        body.Analysis.Complexity,
		TechStack:         body.Analysis.TechStack,
		KeyFeatures:       body.Analysis.KeyFeatures,
		ReadmeFeatures:    readmeFeatures(body.Readme),
		Readme:            body.ReadmeContent,
		SuggestedSegments: body.Analysis.SuggestedSegments,
	})

	if encoded, err := json.Marshal(set); err == nil {
		cacheStore.Set(ctx, cacheKey, string(encoded), suggestionsTTL)
	}
	return set, false
}

// createSession fires the session-creator Lambda. A dispatch failure is
// logged but does not fail the response; the CLI can recreate the session.
func createSession(ctx context.Context, sessionID, projectName string, body *SuggestRequest, videos []store.Suggestion) {
	if cfg.SessionCreatorFunction == "" {
		log.Warn().Msg("SESSION_CREATOR_FUNCTION not set — session not persisted")
		return
	}
	payload := map[string]interface{}{
		"session_id":   sessionID,
		"project_name": projectName,
		"github_owner": body.Owner,
		"github_repo":  body.Repo,
		"suggestions":  videos,
	}
	if err := invoker.Async(ctx, cfg.SessionCreatorFunction, payload); err != nil {
		log.Warn().Err(err).Str("sessionId", sessionID).Msg("Session creation dispatch failed")
	}
}

func readmeFeatures(rd *readme.Analysis) []string {
	if rd == nil {
		return nil
	}
	return rd.Features
}
