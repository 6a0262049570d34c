// Package main provides the Lambda entry point for README parsing.
//
// Invoked synchronously by the github-fetcher Lambda with raw README
// markdown; returns the extracted title, features, and key sections.
package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/readme"
)

var coldStart = true

func init() {
	initStart := time.Now()
	logging.Init()
	lambdaboot.StartupLog("readme-parser-lambda", initStart).Log()
}

func main() {
	lambda.Start(handler)
}

// ParseRequest carries the raw README markdown.
type ParseRequest struct {
	ReadmeContent string `json:"readme_content"`
}

func handler(ctx context.Context, req ParseRequest) (*readme.Analysis, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "readme-parser-lambda").Msg("Cold start — first invocation")
	}
	start := time.Now()
	rec := metrics.Pipeline()
	defer rec.Flush()

	result := readme.Parse(req.ReadmeContent)

	rec.Count("ReadmeParsed").
		Metric("ReadmeBytes", float64(len(req.ReadmeContent)), metrics.UnitBytes).
		Duration("ParseLatency", start)

	log.Info().
		Str("title", result.Title).
		Int("features", len(result.Features)).
		Bool("hasDocumentation", result.HasDocumentation).
		Msg("README parsed")

	return result, nil
}
