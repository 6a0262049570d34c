package status

import (
	"testing"
	"time"

	"github.com/fpang/ai-demo-builder/internal/store"
)

func session(status string, videoStatuses ...string) *store.Session {
	s := &store.Session{
		ID:          "abc12345",
		ProjectName: "demo-toolkit",
		Owner:       "octocat",
		Repo:        "demo-toolkit",
		Status:      status,
		Videos:      map[string]*store.VideoEntry{},
	}
	for i, vs := range videoStatuses {
		n := i + 1
		s.Suggestions = append(s.Suggestions, store.Suggestion{SequenceNumber: n, Title: "Clip", Duration: "1 minute"})
		if vs != "" {
			s.Videos[store.SuggestionID(n)] = &store.VideoEntry{Status: vs, S3Key: "videos/abc12345/" + store.SuggestionID(n) + ".mp4"}
		}
	}
	return s
}

func TestProgress_Percentages(t *testing.T) {
	tests := []struct {
		status string
		want   int
		step   int
	}{
		{store.StatusReady, 10, 1},
		{store.StatusReadyForProcessing, 50, 3},
		{store.StatusQueued, 55, 4},
		{store.StatusSlidesReady, 60, 4},
		{store.StatusStitching, 70, 5},
		{store.StatusStitched, 80, 5},
		{store.StatusOptimizing, 90, 6},
		{store.StatusComplete, 100, 7},
		{store.StatusValidationFailed, 0, 2},
		{store.StatusStitchingFailed, 0, 5},
	}
	for _, tt := range tests {
		p := progress(session(tt.status))
		if p.Percentage != tt.want || p.StepNumber != tt.step {
			t.Errorf("%s: got %d%% step %d, want %d%% step %d",
				tt.status, p.Percentage, p.StepNumber, tt.want, tt.step)
		}
	}
}

func TestProgress_UploadingScalesWithUploads(t *testing.T) {
	// One of three clips uploaded.
	s := session(store.StatusUploading, store.VideoUploaded, "", "")
	p := progress(s)
	if p.Percentage != 26 {
		t.Errorf("percentage = %d, want 26", p.Percentage)
	}
	if p.Videos.Uploaded != 1 || p.Videos.Pending != 2 {
		t.Errorf("counts = %+v", p.Videos)
	}

	// No suggestions at all.
	p = progress(session(store.StatusUploading))
	if p.Percentage != 20 {
		t.Errorf("percentage = %d, want 20", p.Percentage)
	}
}

func TestProgress_CountsCascade(t *testing.T) {
	s := session(store.StatusUploading, store.VideoConverted, store.VideoValidated, store.VideoUploaded)
	p := progress(s)

	want := VideoCounts{Total: 3, Uploaded: 3, Validated: 2, Converted: 1, Pending: 0}
	if p.Videos != want {
		t.Errorf("counts = %+v, want %+v", p.Videos, want)
	}
}

func TestProgress_CurrentOperation(t *testing.T) {
	s := session(store.StatusStitching)
	s.CurrentItem = 3
	s.TotalItems = 8
	if op := progress(s).CurrentOperation; op != "Processing item 3 of 8" {
		t.Errorf("operation = %q", op)
	}

	s = session(store.StatusOptimizing)
	s.ProcessingStep = "Encoding 720p"
	if op := progress(s).CurrentOperation; op != "Encoding 720p" {
		t.Errorf("operation = %q", op)
	}
}

func TestProgress_UnknownStatus(t *testing.T) {
	p := progress(session("bogus"))
	if p.Percentage != 0 || p.Step != "Unknown" {
		t.Errorf("got %+v", p)
	}
}

func TestBuild_CompleteIncludesResults(t *testing.T) {
	s := session(store.StatusComplete, store.VideoConverted)
	s.CreatedAt = time.Now().Unix() - 125
	s.Results = &store.Results{
		DemoURL:        "https://example.com/720.mp4",
		DemoURL720:     "https://example.com/720.mp4",
		DemoURL1080:    "https://example.com/1080.mp4",
		FinalKey720:    "demos/abc12345/final_demo_abc12345_720p.mp4",
		FinalSizeBytes: 1234567,
	}

	r := Build(s, time.Now())
	if r.Result == nil {
		t.Fatal("expected result URLs")
	}
	if r.Result.FinalVideoKey != "demos/abc12345/final_demo_abc12345_720p.mp4" {
		t.Errorf("final key = %s", r.Result.FinalVideoKey)
	}
	if r.GitHubURL != "https://github.com/octocat/demo-toolkit" {
		t.Errorf("github url = %s", r.GitHubURL)
	}
	if r.Timeline.ElapsedFormatted != "2m 5s" {
		t.Errorf("elapsed = %s", r.Timeline.ElapsedFormatted)
	}
	if r.Error != nil {
		t.Error("complete session must not carry error info")
	}
}

func TestBuild_IncompleteHidesResults(t *testing.T) {
	s := session(store.StatusOptimizing)
	s.Results = &store.Results{DemoURL: "https://example.com/720.mp4"}
	if r := Build(s, time.Now()); r.Result != nil {
		t.Error("result URLs must only appear when complete")
	}
}

func TestBuild_FailedIncludesError(t *testing.T) {
	s := session(store.StatusStitchingFailed)
	s.ErrorMessage = "concat failed"
	s.FailedAt = 1700000000

	r := Build(s, time.Now())
	if r.Error == nil {
		t.Fatal("expected error info")
	}
	if r.Error.Step != "stitching" || r.Error.Message != "concat failed" {
		t.Errorf("error = %+v", r.Error)
	}
}

func TestBuild_VideoDetails(t *testing.T) {
	s := session(store.StatusUploading, store.VideoConverted, "")
	r := Build(s, time.Now())

	if len(r.Videos) != 2 {
		t.Fatalf("expected 2 details, got %d", len(r.Videos))
	}
	first, second := r.Videos[0], r.Videos[1]
	if !first.Converted || !first.Validated || !first.Uploaded {
		t.Errorf("first = %+v", first)
	}
	if second.Status != "pending" || second.Uploaded {
		t.Errorf("second = %+v", second)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{42, "42s"},
		{60, "1m 0s"},
		{190, "3m 10s"},
		{3900, "1h 5m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
