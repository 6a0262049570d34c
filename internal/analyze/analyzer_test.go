package analyze

import (
	"testing"

	"github.com/fpang/ai-demo-builder/internal/githubapi"
	"github.com/fpang/ai-demo-builder/internal/readme"
)

func TestClassifyType(t *testing.T) {
	tests := []struct {
		name string
		repo githubapi.Repository
		want string
	}{
		{"framework wins", githubapi.Repository{Description: "A web framework library"}, "framework"},
		{"library", githubapi.Repository{Description: "An HTTP client library"}, "library"},
		{"cli from topic", githubapi.Repository{Topics: []string{"cli", "productivity"}}, "cli-tool"},
		{"application", githubapi.Repository{Description: "A chat application"}, "application"},
		{"plugin", githubapi.Repository{Description: "A vim plugin"}, "plugin"},
		{"language without keywords is a library", githubapi.Repository{Description: "fast JSON parsing", Language: "Rust"}, "library"},
		{"no language no keywords", githubapi.Repository{Description: "some experiment"}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyType(&tt.repo); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScoreComplexity(t *testing.T) {
	manyFeatures := make([]string, 12)
	for i := range manyFeatures {
		manyFeatures[i] = "f"
	}

	tests := []struct {
		name string
		repo githubapi.Repository
		rd   readme.Analysis
		want string
	}{
		{
			"bare repo is low",
			githubapi.Repository{StargazersCount: 10},
			readme.Analysis{},
			ComplexityLow,
		},
		{
			"popular with docs is high",
			githubapi.Repository{StargazersCount: 20000},
			readme.Analysis{HasDocumentation: true, Installation: "go install"},
			ComplexityHigh,
		},
		{
			"mid stars plus usage is medium",
			githubapi.Repository{StargazersCount: 5000},
			readme.Analysis{Usage: "run it"},
			ComplexityMedium,
		},
		{
			"feature-heavy readme counts",
			githubapi.Repository{StargazersCount: 200},
			readme.Analysis{Features: manyFeatures, HasDocumentation: true, Installation: "x", Usage: "y"},
			ComplexityHigh,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreComplexity(&tt.repo, &tt.rd); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTechStack(t *testing.T) {
	repo := githubapi.Repository{
		Language: "Go",
		Topics:   []string{"docker", "kubernetes", "not-a-tech"},
	}
	rd := readme.Analysis{
		Features: []string{"Deploys to AWS Lambda", "Uses Redis caching", "Written in Go"},
	}

	stack := techStack(&repo, &rd)

	want := map[string]bool{"go": true, "docker": true, "kubernetes": true, "aws": true, "lambda": true, "redis": true}
	for _, tech := range stack {
		if !want[tech] {
			t.Errorf("unexpected tech %q in %v", tech, stack)
		}
	}

	// "go" appears in language and features but must only be listed once.
	count := 0
	for _, tech := range stack {
		if tech == "go" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected go once, got %d times in %v", count, stack)
	}
}

func TestTechStack_Cap(t *testing.T) {
	repo := githubapi.Repository{
		Language: "Python",
		Topics: []string{"docker", "kubernetes", "terraform", "aws", "gcp", "azure",
			"postgresql", "mysql", "mongodb", "redis", "kafka", "graphql"},
	}
	stack := techStack(&repo, &readme.Analysis{})
	if len(stack) != maxTechStack {
		t.Errorf("expected %d entries, got %d: %v", maxTechStack, len(stack), stack)
	}
}

func TestSuggestedSegments(t *testing.T) {
	tests := []struct {
		complexity  string
		projectType string
		want        int
	}{
		{ComplexityLow, "library", 3},
		{ComplexityMedium, "framework", 6},
		{ComplexityHigh, "application", 9},
		{ComplexityLow, "unknown", 3},
		{ComplexityHigh, "framework", 8},
	}
	for _, tt := range tests {
		if got := suggestedSegments(tt.complexity, tt.projectType); got != tt.want {
			t.Errorf("suggestedSegments(%s, %s) = %d, want %d", tt.complexity, tt.projectType, got, tt.want)
		}
	}
}

func TestAnalyze_KeyFeatureCap(t *testing.T) {
	features := []string{"a", "b", "c", "d", "e", "f", "g"}
	a := Analyze(&githubapi.Repository{}, &readme.Analysis{Features: features})
	if len(a.KeyFeatures) != maxKeyFeatures {
		t.Errorf("expected %d key features, got %d", maxKeyFeatures, len(a.KeyFeatures))
	}
	if a.ProjectType != "unknown" {
		t.Errorf("expected unknown type, got %s", a.ProjectType)
	}
}
