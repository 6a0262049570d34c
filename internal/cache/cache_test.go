package cache

import "testing"

func TestAnalysisKey(t *testing.T) {
	got := AnalysisKey("octocat", "hello-world", "a1b2c3d")
	want := "github_octocat_hello-world_a1b2c3d"
	if got != want {
		t.Errorf("AnalysisKey() = %q, want %q", got, want)
	}
}

func TestSuggestionsKey(t *testing.T) {
	got := SuggestionsKey("octocat", "hello-world", "unknown")
	want := "suggestions_octocat_hello-world_unknown"
	if got != want {
		t.Errorf("SuggestionsKey() = %q, want %q", got, want)
	}
}
