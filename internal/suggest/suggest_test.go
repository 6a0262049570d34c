package suggest

import (
	"context"
	"strings"
	"testing"
)

func TestVideoCount(t *testing.T) {
	tests := []struct {
		segments int
		want     int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 3},
		{7, 3},
	}
	for _, tt := range tests {
		if got := videoCount(tt.segments); got != tt.want {
			t.Errorf("videoCount(%d) = %d, want %d", tt.segments, got, tt.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	in := &Input{
		ProjectName:       "demo-toolkit",
		Owner:             "octocat",
		Stars:             1500,
		Language:          "Go",
		ProjectType:       "cli-tool",
		Complexity:        "medium",
		TechStack:         []string{"go", "docker"},
		KeyFeatures:       []string{"fast rendering"},
		ReadmeFeatures:    []string{"plugin system"},
		Readme:            "# demo-toolkit\n\nA toolkit.",
		SuggestedSegments: 5,
	}

	prompt := BuildPrompt(in)

	for _, want := range []string{
		"demo-toolkit",
		"octocat",
		"go, docker",
		"- fast rendering",
		"- plugin system",
		"Create 3 video suggestions",
		"sequence_number",
		"narration_script",
		"technical_setup",
		"transition_to_next",
		"overall_flow",
		"project_specific_tips",
		"Return ONLY valid JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_TruncatesReadme(t *testing.T) {
	in := &Input{
		ProjectName:       "x",
		Readme:            strings.Repeat("a", maxReadmeLength+500),
		SuggestedSegments: 2,
	}
	prompt := BuildPrompt(in)
	if strings.Contains(prompt, strings.Repeat("a", maxReadmeLength+1)) {
		t.Error("expected README to be truncated")
	}
	if !strings.Contains(prompt, strings.Repeat("a", maxReadmeLength)+"...") {
		t.Error("expected truncation marker")
	}
}

func TestBuildPrompt_EmptyFieldsGetPlaceholders(t *testing.T) {
	prompt := BuildPrompt(&Input{ProjectName: "x", SuggestedSegments: 1})
	if !strings.Contains(prompt, "Not Specified") {
		t.Error("expected Not Specified placeholder")
	}
	if !strings.Contains(prompt, "Language: Unknown") {
		t.Error("expected Unknown language placeholder")
	}
}

func TestFallback(t *testing.T) {
	set := Fallback("demo-toolkit")

	if len(set.Videos) != 2 {
		t.Fatalf("expected 2 fallback videos, got %d", len(set.Videos))
	}
	if set.Videos[0].SequenceNumber != 1 || set.Videos[1].SequenceNumber != 2 {
		t.Error("fallback videos must be numbered 1 and 2")
	}
	if !strings.Contains(set.Videos[0].Title, "demo-toolkit") {
		t.Errorf("expected project name in title, got %q", set.Videos[0].Title)
	}
	if set.Videos[0].VideoType != "installation" || set.Videos[1].VideoType != "feature_demo" {
		t.Errorf("unexpected video types %q, %q", set.Videos[0].VideoType, set.Videos[1].VideoType)
	}
	if len(set.ProjectSpecificTips) == 0 {
		t.Error("expected recording tips")
	}
}

func TestGenerate_NoClientFallsBack(t *testing.T) {
	g, err := NewGenerator(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := g.Generate(context.Background(), &Input{ProjectName: "x", SuggestedSegments: 3})
	if len(set.Videos) != 2 {
		t.Fatalf("expected fallback suggestions, got %d videos", len(set.Videos))
	}
}
