// Package main provides the Lambda entry point for repository analysis.
//
// POST /analyze takes a GitHub URL, fetches repository metadata and the
// README, and fans out to the readme-parser and project-analyzer Lambdas.
// Results are cached per commit SHA so repeat analyses of an unchanged
// repository skip the GitHub API entirely.
package main

import (
	"context"
	"encoding/json"
	"errors"
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
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
	"github.com/fpang/ai-demo-builder/internal/readme"
)

// analysisTTL is how long a cached analysis stays valid. Keyed by commit SHA,
// so a push invalidates the entry naturally; the TTL just bounds staleness of
// star counts and topics.
const analysisTTL = time.Hour

var coldStart = true

var (
	cfg        *config.Config
	github     *githubapi.Client
	cacheStore *cache.Store
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
	github = githubapi.New(cfg.GitHubAPI, lambdaboot.LoadGitHubToken(aws.SSM))

	lambdaboot.StartupLog("github-fetcher-lambda", initStart).
		DynamoTable("cache", cfg.CacheTable).
		LambdaFunc("readmeParser", cfg.ReadmeParserFunction).
		LambdaFunc("projectAnalyzer", cfg.ProjectAnalyzerFunction).
		Config("githubApi", cfg.GitHubAPI).
		Log()
}

func main() {
	lambda.Start(handler)
}

// AnalyzeRequest is the POST /analyze body.
type AnalyzeRequest struct {
	GitHubURL string `json:"github_url"`
}

// AnalyzeResponse is returned to the frontend and passed verbatim to
// POST /suggestions, so the suggestion Lambda sees the same shape.
type AnalyzeResponse struct {
	Owner      string                `json:"owner"`
	Repo       string                `json:"repo"`
	CommitSHA  string                `json:"commit_sha"`
	Cached     bool                  `json:"cached"`
	Repository *githubapi.Repository `json:"repository"`
	Readme     *readme.Analysis      `json:"readme_analysis"`
	Analysis   *analyze.Analysis     `json:"project_analysis"`

	// ReadmeContent feeds the suggestion prompt; the prompt builder truncates
	// it, so the full text rides along here.
	ReadmeContent string `json:"readme_content,omitempty"`
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "github-fetcher-lambda").Msg("Cold start — first invocation")
	}
	start := time.Now()
	rec := metrics.Pipeline()
	defer rec.Flush()

	var body AnalyzeRequest
	if !apigw.ParseBody(req, &body) || body.GitHubURL == "" {
		return apigw.Error(400, "github_url is required")
	}

	owner, repo, err := githubapi.ParseRepoURL(body.GitHubURL)
	if err != nil {
		return apigw.Error(400, "invalid GitHub repository URL", err.Error())
	}

	log.Info().Str("owner", owner).Str("repo", repo).Msg("Analyzing repository")
	rec.Property("repo", owner+"/"+repo)

	sha := github.LatestCommitSHA(ctx, owner, repo)
	cacheKey := cache.AnalysisKey(owner, repo, sha)

	if cached, ok := cacheStore.Get(ctx, cacheKey); ok {
		var resp AnalyzeResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			resp.Cached = true
			rec.Count("AnalysisCacheHit").Duration("AnalyzeLatency", start)
			return apigw.JSON(200, &resp)
		}
		log.Warn().Str("key", cacheKey).Msg("Cached analysis unreadable — refetching")
	}

	repository, err := github.GetRepository(ctx, owner, repo)
	if err != nil {
		rec.Count("GitHubFetchError")
		switch {
		case errors.Is(err, githubapi.ErrNotFound):
			return apigw.Error(404, "repository not found")
		case errors.Is(err, githubapi.ErrRateLimited):
			return apigw.Error(403, "GitHub API rate limit exceeded — try again later")
		case errors.Is(err, githubapi.ErrBadCredentials):
			return apigw.Error(502, "GitHub authentication failed", err.Error())
		default:
			return apigw.Error(502, "failed to fetch repository", err.Error())
		}
	}

	readmeContent, err := github.GetReadme(ctx, owner, repo)
	if err != nil {
		// Analysis still works from metadata alone.
		log.Warn().Err(err).Msg("README fetch failed — continuing without it")
		readmeContent = ""
	}

	readmeAnalysis := parseReadme(ctx, readmeContent)
	projectAnalysis := analyzeProject(ctx, repository, readmeAnalysis)

	resp := &AnalyzeResponse{
		Owner:         owner,
		Repo:          repo,
		CommitSHA:     sha,
		Repository:    repository,
		Readme:        readmeAnalysis,
		Analysis:      projectAnalysis,
		ReadmeContent: readmeContent,
	}

	if encoded, err := json.Marshal(resp); err == nil {
		cacheStore.Set(ctx, cacheKey, string(encoded), analysisTTL)
	}

	rec.Count("RepositoryAnalyzed").Duration("AnalyzeLatency", start)
	log.Info().
		Str("repo", owner+"/"+repo).
		Str("projectType", projectAnalysis.ProjectType).
		Str("complexity", projectAnalysis.Complexity).
		Dur("elapsed", time.Since(start)).
		Msg("Repository analyzed")

	return apigw.JSON(200, resp)
}

// parseReadme delegates to the readme-parser Lambda when configured and falls
// back to in-process parsing otherwise. An invoke failure degrades to a
// placeholder result rather than failing the analysis.
func parseReadme(ctx context.Context, content string) *readme.Analysis {
	fn := cfg.ReadmeParserFunction
	if fn == "" {
		return readme.Parse(content)
	}

	var out readme.Analysis
	payload := map[string]string{"readme_content": content}
	if err := invoker.Sync(ctx, fn, payload, &out); err != nil {
		log.Warn().Err(err).Str("function", fn).Msg("README parser invoke failed — using placeholder")
		return readme.Parse("")
	}
	return &out
}

// analyzeProject mirrors parseReadme for the project-analyzer Lambda.
func analyzeProject(ctx context.Context, repository *githubapi.Repository, rd *readme.Analysis) *analyze.Analysis {
	fn := cfg.ProjectAnalyzerFunction
	if fn == "" {
		return analyze.Analyze(repository, rd)
	}

	var out analyze.Analysis
	payload := map[string]interface{}{
		"repository":      repository,
		"readme_analysis": rd,
	}
	if err := invoker.Sync(ctx, fn, payload, &out); err != nil {
		log.Warn().Err(err).Str("function", fn).Msg("Project analyzer invoke failed — using placeholder")
		return analyze.Analyze(repository, readme.Parse(""))
	}
	return &out
}
