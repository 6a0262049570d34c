// Package main provides the Lambda entry point for project analysis.
//
// Invoked synchronously by the github-fetcher Lambda with repository
// metadata and the parsed README; returns project type, complexity, tech
// stack, and the suggested demo segment count.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/analyze"
	"github.com/fpang/ai-demo-builder/internal/githubapi"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/readme"
)

var coldStart = true

func init() {
	initStart := time.Now()
	logging.Init()
	lambdaboot.StartupLog("project-analyzer-lambda", initStart).Log()
}

func main() {
	lambda.Start(handler)
}

// AnalyzeRequest pairs repository metadata with its README analysis.
type AnalyzeRequest struct {
	Repository     *githubapi.Repository `json:"repository"`
	ReadmeAnalysis *readme.Analysis      `json:"readme_analysis"`
}

func handler(ctx context.Context, req AnalyzeRequest) (*analyze.Analysis, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "project-analyzer-lambda").Msg("Cold start — first invocation")
	}
	start := time.Now()
	rec := metrics.Pipeline()
	defer rec.Flush()

	if req.Repository == nil {
		return nil, fmt.Errorf("repository metadata is required")
	}
	if req.ReadmeAnalysis == nil {
		req.ReadmeAnalysis = readme.Parse("")
	}

	result := analyze.Analyze(req.Repository, req.ReadmeAnalysis)

	rec.Count("ProjectAnalyzed").Duration("AnalyzeLatency", start)
	log.Info().
		Str("repo", req.Repository.FullName).
		Str("projectType", result.ProjectType).
		Str("complexity", result.Complexity).
		Int("suggestedSegments", result.SuggestedSegments).
		Msg("Project analyzed")

	return result, nil
}
