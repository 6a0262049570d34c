// Package suggest generates video recording suggestions for a repository
// using the Gemini API. Every failure path degrades to a generic fallback
// plan so the pipeline never blocks on the AI.
package suggest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/ai-demo-builder/internal/store"
)

// ModelName is the Gemini model used for suggestion generation.
const ModelName = "gemini-2.0-flash-exp"

// maxVideos caps how many clips a user is asked to record, regardless of how
// many segments the analyzer suggested.
const maxVideos = 3

// Input carries everything the prompt needs about the repository.
type Input struct {
	ProjectName       string
	Owner             string
	Stars             int
	Language          string
	Description       string
	ProjectType       string
	Complexity        string
	TechStack         []string
	KeyFeatures       []string
	ReadmeFeatures    []string
	Readme            string
	SuggestedSegments int
}

// SuggestionSet is the structured plan returned by Gemini (or the fallback).
type SuggestionSet struct {
	Videos                 []store.Suggestion `json:"videos"`
	OverallFlow            string             `json:"overall_flow"`
	TotalEstimatedDuration string             `json:"total_estimated_duration"`
	ProjectSpecificTips    []string           `json:"project_specific_tips"`
}

// Generator calls Gemini to produce recording suggestions.
type Generator struct {
	client *genai.Client
}

// NewGenerator creates a Gemini-backed generator. A nil client is allowed;
// Generate then always returns the fallback plan.
func NewGenerator(ctx context.Context, apiKey string) (*Generator, error) {
	if apiKey == "" {
		return &Generator{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Generator{client: client}, nil
}

// Generate produces a recording plan for the repository. On any AI failure
// (no client, API error, unparseable response) it logs and returns Fallback.
func (g *Generator) Generate(ctx context.Context, in *Input) *SuggestionSet {
	if g.client == nil {
		log.Warn().Msg("Gemini client not configured, using fallback suggestions")
		return Fallback(in.ProjectName)
	}

	prompt := BuildPrompt(in)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}

	log.Debug().
		Str("model", ModelName).
		Int("prompt_length", len(prompt)).
		Str("project", in.ProjectName).
		Msg("Starting Gemini API call for video suggestions")

	callStart := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, ModelName, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Gemini suggestion call failed, using fallback")
		return Fallback(in.ProjectName)
	}
	if resp == nil {
		log.Error().Dur("duration", duration).Msg("Empty Gemini response, using fallback")
		return Fallback(in.ProjectName)
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", duration).
		Msg("Gemini suggestion response received")

	set, err := decodeSuggestionSet(responseText)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse Gemini suggestions, using fallback")
		return Fallback(in.ProjectName)
	}
	if len(set.Videos) == 0 {
		log.Warn().Msg("Gemini returned no video suggestions, using fallback")
		return Fallback(in.ProjectName)
	}

	log.Info().
		Int("video_count", len(set.Videos)).
		Dur("duration", duration).
		Msg("Video suggestions generated")
	return set
}

// videoCount returns how many clips to ask for, capped at maxVideos.
func videoCount(suggestedSegments int) int {
	if suggestedSegments < 1 {
		return 1
	}
	if suggestedSegments > maxVideos {
		return maxVideos
	}
	return suggestedSegments
}
