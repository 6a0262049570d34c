package suggest

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"videos":[]}`, `{"videos":[]}`},
		{"json fence", "```json\n{\"videos\":[]}\n```", `{"videos":[]}`},
		{"bare fence", "```\n{\"videos\":[]}\n```", `{"videos":[]}`},
		{"surrounding whitespace", "  ```json\n{\"videos\":[]}\n```  ", `{"videos":[]}`},
		{"unterminated fence", "```json\n{\"videos\":[]}", `{"videos":[]}`},
		{"fence only", "```", "```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeSuggestionSet(t *testing.T) {
	raw := "```json\n" +
		`{"videos":[{"sequence_number":1,"title":"Setup","duration":"30-45 seconds"}],` +
		`"overall_flow":"install then demo","total_estimated_duration":"2 minutes"}` +
		"\n```"

	set, err := decodeSuggestionSet(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Videos) != 1 || set.Videos[0].Title != "Setup" {
		t.Errorf("unexpected videos: %+v", set.Videos)
	}
	if set.OverallFlow != "install then demo" {
		t.Errorf("unexpected flow: %s", set.OverallFlow)
	}
}

func TestDecodeSuggestionSet_ProseWrapped(t *testing.T) {
	raw := `Here is your recording plan: {"videos":[{"sequence_number":1,"title":"Demo"}]} Good luck!`

	set, err := decodeSuggestionSet(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Videos) != 1 || set.Videos[0].Title != "Demo" {
		t.Errorf("unexpected videos: %+v", set.Videos)
	}
}

func TestDecodeSuggestionSet_Errors(t *testing.T) {
	if _, err := decodeSuggestionSet("the model refused to answer"); err == nil {
		t.Error("expected error for response without JSON")
	}
	if _, err := decodeSuggestionSet(`{"videos": [`); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
