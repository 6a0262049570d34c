// Package analyze scores a repository for demo planning: what kind of project
// it is, how complex it looks, which technologies it uses, and how many video
// segments its demo should have.
package analyze

import (
	"strings"

	"github.com/fpang/ai-demo-builder/internal/githubapi"
	"github.com/fpang/ai-demo-builder/internal/readme"
)

// Complexity levels.
const (
	ComplexityLow    = "low"
	ComplexityMedium = "medium"
	ComplexityHigh   = "high"
)

const (
	maxTechStack   = 10
	maxKeyFeatures = 5
	minSegments    = 1
	maxSegments    = 10
)

// Analysis is the analyzer's verdict on a repository.
type Analysis struct {
	ProjectType       string   `json:"project_type"`
	Complexity        string   `json:"complexity"`
	TechStack         []string `json:"tech_stack"`
	KeyFeatures       []string `json:"key_features"`
	SuggestedSegments int      `json:"suggested_segments"`
}

// typeKeywords classifies projects by description/topic keywords, checked in
// priority order so "framework" beats "library" when both appear.
var typeKeywords = []struct {
	name     string
	keywords []string
}{
	{"framework", []string{"framework"}},
	{"library", []string{"library", "sdk", "package", "module"}},
	{"cli-tool", []string{"cli", "command-line", "command line", "terminal"}},
	{"application", []string{"app", "application", "platform", "service", "server"}},
	{"plugin", []string{"plugin", "extension", "addon", "add-on"}},
}

// segmentBase maps complexity to a baseline demo segment count.
var segmentBase = map[string]int{
	ComplexityLow:    2,
	ComplexityMedium: 4,
	ComplexityHigh:   6,
}

// segmentModifier adjusts the segment count by project type: applications
// demo more surface area than libraries or plugins.
var segmentModifier = map[string]int{
	"framework":   2,
	"library":     1,
	"application": 3,
	"cli-tool":    1,
	"plugin":      1,
	"unknown":     1,
}

// commonTech is the vocabulary recognized when scanning language, topics, and
// feature text for the tech stack.
var commonTech = []string{
	"go", "golang", "python", "javascript", "typescript", "rust", "java",
	"kotlin", "swift", "ruby", "php", "c++", "c#",
	"react", "vue", "angular", "svelte", "next.js", "node.js", "express",
	"django", "flask", "fastapi", "rails", "spring",
	"docker", "kubernetes", "terraform", "aws", "gcp", "azure", "serverless",
	"lambda", "postgresql", "mysql", "mongodb", "redis", "sqlite", "dynamodb",
	"graphql", "grpc", "rest", "websocket", "kafka", "rabbitmq",
	"tensorflow", "pytorch", "machine learning", "ai", "llm",
}

// Analyze scores the repository using its GitHub metadata and README analysis.
func Analyze(repo *githubapi.Repository, rd *readme.Analysis) *Analysis {
	projectType := classifyType(repo)
	complexity := scoreComplexity(repo, rd)

	keyFeatures := rd.Features
	if len(keyFeatures) > maxKeyFeatures {
		keyFeatures = keyFeatures[:maxKeyFeatures]
	}

	return &Analysis{
		ProjectType:       projectType,
		Complexity:        complexity,
		TechStack:         techStack(repo, rd),
		KeyFeatures:       keyFeatures,
		SuggestedSegments: suggestedSegments(complexity, projectType),
	}
}

// classifyType matches description and topics against the keyword table.
// A repo with a detected language but no keyword match is most likely a
// library; "unknown" is reserved for repos without even a language.
func classifyType(repo *githubapi.Repository) string {
	haystack := strings.ToLower(repo.Description + " " + strings.Join(repo.Topics, " "))
	for _, t := range typeKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(haystack, kw) {
				return t.name
			}
		}
	}
	if repo.Language != "" {
		return "library"
	}
	return "unknown"
}

// scoreComplexity combines popularity and documentation signals:
// stars contribute up to 3 points, feature count up to 2, and the presence of
// documentation, installation, and usage sections 1 point each.
func scoreComplexity(repo *githubapi.Repository, rd *readme.Analysis) string {
	score := 0

	switch {
	case repo.StargazersCount > 10000:
		score += 3
	case repo.StargazersCount > 1000:
		score += 2
	case repo.StargazersCount > 100:
		score++
	}

	switch {
	case len(rd.Features) > 10:
		score += 2
	case len(rd.Features) > 5:
		score++
	}

	if rd.HasDocumentation {
		score++
	}
	if rd.Installation != "" {
		score++
	}
	if rd.Usage != "" {
		score++
	}

	switch {
	case score >= 5:
		return ComplexityHigh
	case score >= 3:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

// techStack collects recognized technologies from the primary language,
// repository topics, and feature text, deduped and capped.
func techStack(repo *githubapi.Repository, rd *readme.Analysis) []string {
	seen := map[string]bool{}
	var stack []string

	add := func(tech string) {
		if tech == "" || seen[tech] || len(stack) >= maxTechStack {
			return
		}
		seen[tech] = true
		stack = append(stack, tech)
	}

	if repo.Language != "" {
		add(strings.ToLower(repo.Language))
	}

	for _, topic := range repo.Topics {
		lower := strings.ToLower(topic)
		for _, tech := range commonTech {
			if lower == tech {
				add(tech)
			}
		}
	}

	featureText := strings.ToLower(strings.Join(rd.Features, " "))
	for _, tech := range commonTech {
		if strings.Contains(featureText, tech) {
			add(tech)
		}
	}

	return stack
}

// suggestedSegments derives the demo video count from complexity and type,
// clamped to a range a viewer will actually sit through.
func suggestedSegments(complexity, projectType string) int {
	n := segmentBase[complexity] + segmentModifier[projectType]
	if n < minSegments {
		n = minSegments
	}
	if n > maxSegments {
		n = maxSegments
	}
	return n
}
