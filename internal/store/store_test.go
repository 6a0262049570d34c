package store

import (
	"strings"
	"testing"
)

func sessionWithVideos(statuses ...string) *Session {
	s := &Session{
		ID:     "abc12345",
		Videos: map[string]*VideoEntry{},
	}
	for i, st := range statuses {
		seq := i + 1
		s.Suggestions = append(s.Suggestions, Suggestion{SequenceNumber: seq, Title: "clip"})
		if st != "" {
			s.Videos[SuggestionID(seq)] = &VideoEntry{Status: st}
		}
	}
	return s
}

func TestAllConverted(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     bool
	}{
		{"all converted", []string{VideoConverted, VideoConverted}, true},
		{"one pending", []string{VideoConverted, VideoUploaded}, false},
		{"missing entry", []string{VideoConverted, ""}, false},
		{"no suggestions", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sessionWithVideos(tt.statuses...).AllConverted(); got != tt.want {
				t.Errorf("AllConverted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeVideoExpr_LeavesEarlierStageFieldsAlone(t *testing.T) {
	// The converter writes status, keys, size, and convertedAt. The merge
	// expression must not touch the attributes recorded at upload and
	// validation time, or the session loses its clip history.
	expr, names, _, err := mergeVideoExpr("2", &VideoEntry{
		Status:          VideoConverted,
		S3Key:           "videos/abc12345/2.mp4",
		StandardizedKey: "videos/abc12345/standardized_2.mp4",
		SizeBytes:       1024,
		ConvertedAt:     1700000000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if names["#vid"] != "2" {
		t.Errorf("expected #vid = 2, got %q", names["#vid"])
	}
	touched := map[string]bool{}
	for placeholder, attr := range names {
		if placeholder != "#vid" {
			touched[attr] = true
		}
	}
	for _, attr := range []string{"status", "s3Key", "standardizedKey", "sizeBytes", "convertedAt"} {
		if !touched[attr] {
			t.Errorf("expected %s in update, got %v", attr, touched)
		}
	}
	for _, attr := range []string{"uploadedAt", "validatedAt", "validation", "error"} {
		if touched[attr] {
			t.Errorf("merge must not overwrite %s", attr)
		}
	}
	if !strings.Contains(expr, "videos.#vid.") {
		t.Errorf("expected document-path writes, got %q", expr)
	}
}

func TestMergeVideoExpr_ValidationDetails(t *testing.T) {
	_, names, _, err := mergeVideoExpr("1", &VideoEntry{
		Status:      VideoValidated,
		ValidatedAt: 1700000000,
		Validation:  &Validation{Valid: true, DurationSeconds: 12.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	touched := map[string]bool{}
	for placeholder, attr := range names {
		if placeholder != "#vid" {
			touched[attr] = true
		}
	}
	if !touched["validation"] || !touched["validatedAt"] {
		t.Errorf("expected validation fields in update, got %v", touched)
	}
	if touched["uploadedAt"] || touched["sizeBytes"] {
		t.Errorf("merge must not clear upload-time attributes: %v", touched)
	}
}

func TestSuggestionByID(t *testing.T) {
	s := sessionWithVideos(VideoUploaded, VideoUploaded)

	sug := s.SuggestionByID("2")
	if sug == nil || sug.SequenceNumber != 2 {
		t.Fatalf("expected suggestion 2, got %+v", sug)
	}
	if s.SuggestionByID("9") != nil {
		t.Error("expected nil for unknown suggestion ID")
	}
}

func TestIsFailed(t *testing.T) {
	for _, st := range []string{StatusValidationFailed, StatusConversionFailed, StatusStitchingFailed, StatusOptimizationFailed} {
		if !IsFailed(st) {
			t.Errorf("expected %s to be a failure status", st)
		}
	}
	for _, st := range []string{StatusReady, StatusComplete, StatusStitching} {
		if IsFailed(st) {
			t.Errorf("did not expect %s to be a failure status", st)
		}
	}
}
