// Package status builds the status API response: overall progress, timeline,
// per-video detail, result URLs, and error info, all derived from the session
// record.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/fpang/ai-demo-builder/internal/store"
)

const totalSteps = 7

// Progress describes how far along the pipeline a session is.
type Progress struct {
	Percentage       int         `json:"percentage"`
	Step             string      `json:"step"`
	StepNumber       int         `json:"step_number"`
	TotalSteps       int         `json:"total_steps"`
	Message          string      `json:"message"`
	CurrentOperation string      `json:"current_operation,omitempty"`
	Videos           VideoCounts `json:"videos"`
}

// VideoCounts summarizes per-clip progress.
type VideoCounts struct {
	Total     int `json:"total"`
	Uploaded  int `json:"uploaded"`
	Validated int `json:"validated"`
	Converted int `json:"converted"`
	Pending   int `json:"pending"`
}

// Timeline carries the session's lifecycle timestamps as Unix seconds, plus
// elapsed time since creation.
type Timeline struct {
	CreatedAt            int64  `json:"created_at,omitempty"`
	QueuedAt             int64  `json:"queued_at,omitempty"`
	StitchingStartedAt   int64  `json:"stitching_started_at,omitempty"`
	StitchingCompletedAt int64  `json:"stitching_completed_at,omitempty"`
	OptimizingStartedAt  int64  `json:"optimizing_started_at,omitempty"`
	CompletedAt          int64  `json:"completed_at,omitempty"`
	ElapsedSeconds       int64  `json:"elapsed_seconds,omitempty"`
	ElapsedFormatted     string `json:"elapsed_formatted,omitempty"`
}

// VideoDetail is the per-suggestion view in the status response.
type VideoDetail struct {
	SequenceNumber string `json:"sequence_number"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	Uploaded       bool   `json:"uploaded"`
	Validated      bool   `json:"validated"`
	Converted      bool   `json:"converted"`
	S3Key          string `json:"s3_key,omitempty"`
	Duration       string `json:"duration"`
}

// ResultURLs exposes the final outputs. Only present once the session is
// complete.
type ResultURLs struct {
	DemoURL       string `json:"demo_url"`
	DemoURL720p   string `json:"demo_url_720p"`
	DemoURL1080p  string `json:"demo_url_1080p"`
	ThumbnailURL  string `json:"thumbnail_url"`
	FinalVideoKey string `json:"final_video_key"`
	FinalSize     int64  `json:"final_video_size"`
}

// ErrorInfo describes a failed session.
type ErrorInfo struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	FailedAt int64  `json:"failed_at,omitempty"`
	Step     string `json:"step"`
}

// Report is the full status API payload for one session.
type Report struct {
	SessionID        string        `json:"session_id"`
	ProjectName      string        `json:"project_name"`
	Owner            string        `json:"owner"`
	GitHubURL        string        `json:"github_url"`
	Status           string        `json:"status"`
	Progress         *Progress     `json:"progress"`
	Timeline         *Timeline     `json:"timeline"`
	Videos           []VideoDetail `json:"videos"`
	SuggestionsCount int           `json:"suggestions_count"`
	Result           *ResultURLs   `json:"result,omitempty"`
	Error            *ErrorInfo    `json:"error,omitempty"`
}

// stepInfo is one entry in the status map.
type stepInfo struct {
	percentage int
	step       string
	stepNumber int
	message    string
}

var statusSteps = map[string]stepInfo{
	store.StatusReady:              {10, "Ready for Upload", 1, "Session created. Ready to upload videos."},
	store.StatusReadyForProcessing: {50, "Videos Ready", 3, "All videos uploaded and validated. Ready for processing."},
	store.StatusQueued:             {55, "Queued for Processing", 4, "Demo generation job queued. Processing will start shortly..."},
	store.StatusSlidesReady:        {60, "Creating Slides", 4, "Generating transition slides..."},
	store.StatusStitching:          {70, "Stitching Videos", 5, "Combining videos and slides together..."},
	store.StatusStitched:           {80, "Stitching Complete", 5, "Videos stitched successfully. Starting optimization..."},
	store.StatusOptimizing:         {90, "Optimizing Video", 6, "Generating optimized versions (720p, 1080p)..."},
	store.StatusComplete:           {100, "Complete", 7, "Your demo video is ready!"},

	store.StatusValidationFailed:   {0, "Validation Failed", 2, "Video validation failed. Please check your videos."},
	store.StatusConversionFailed:   {0, "Conversion Failed", 3, "Video conversion failed. Please try again."},
	store.StatusStitchingFailed:    {0, "Stitching Failed", 5, "Video stitching failed. Please contact support."},
	store.StatusOptimizationFailed: {0, "Optimization Failed", 6, "Video optimization failed. Please try again."},
}

// Build assembles the full status report for a session.
func Build(session *store.Session, now time.Time) *Report {
	report := &Report{
		SessionID:        session.ID,
		ProjectName:      orDefault(session.ProjectName, "Unknown Project"),
		Owner:            orDefault(session.Owner, "unknown"),
		GitHubURL:        session.GitHubURL(),
		Status:           session.Status,
		Progress:         progress(session),
		Timeline:         timeline(session, now),
		Videos:           videoDetails(session),
		SuggestionsCount: len(session.Suggestions),
	}
	if session.Status == store.StatusComplete && session.Results != nil {
		report.Result = &ResultURLs{
			DemoURL:       session.Results.DemoURL,
			DemoURL720p:   session.Results.DemoURL720,
			DemoURL1080p:  session.Results.DemoURL1080,
			ThumbnailURL:  session.Results.ThumbnailURL,
			FinalVideoKey: session.Results.PrimaryFinalKey(),
			FinalSize:     session.Results.FinalSizeBytes,
		}
	}
	if store.IsFailed(session.Status) {
		report.Error = &ErrorInfo{
			Status:   session.Status,
			Message:  orDefault(session.ErrorMessage, "An error occurred during processing"),
			FailedAt: session.FailedAt,
			Step:     strings.TrimSuffix(session.Status, "_failed"),
		}
	}
	return report
}

func progress(session *store.Session) *Progress {
	counts := countVideos(session)

	info, ok := statusSteps[session.Status]
	if !ok && session.Status == store.StatusUploading {
		pct := 20
		if counts.Total > 0 {
			pct = 20 + counts.Uploaded*20/counts.Total
		}
		info = stepInfo{
			percentage: pct,
			step:       "Uploading Videos",
			stepNumber: 2,
			message:    fmt.Sprintf("Uploading videos... (%d/%d uploaded)", counts.Uploaded, counts.Total),
		}
		ok = true
	}
	if !ok {
		info = stepInfo{0, "Unknown", 0, "Status: " + session.Status}
	}

	return &Progress{
		Percentage:       info.percentage,
		Step:             info.step,
		StepNumber:       info.stepNumber,
		TotalSteps:       totalSteps,
		Message:          info.message,
		CurrentOperation: currentOperation(session),
		Videos:           counts,
	}
}

// currentOperation surfaces the fine-grained progress written by the stitcher
// and optimizer.
func currentOperation(session *store.Session) string {
	switch session.Status {
	case store.StatusStitching:
		if session.CurrentItem > 0 && session.TotalItems > 0 {
			return fmt.Sprintf("Processing item %d of %d", session.CurrentItem, session.TotalItems)
		}
	case store.StatusOptimizing:
		return session.ProcessingStep
	}
	return ""
}

func countVideos(session *store.Session) VideoCounts {
	counts := VideoCounts{Total: len(session.Suggestions)}
	for _, entry := range session.Videos {
		switch entry.Status {
		case store.VideoUploaded:
			counts.Uploaded++
		case store.VideoValidated:
			counts.Uploaded++
			counts.Validated++
		case store.VideoConverted:
			counts.Uploaded++
			counts.Validated++
			counts.Converted++
		}
	}
	counts.Pending = counts.Total - counts.Uploaded
	return counts
}

func timeline(session *store.Session, now time.Time) *Timeline {
	tl := &Timeline{
		CreatedAt:            session.CreatedAt,
		QueuedAt:             session.QueuedAt,
		StitchingStartedAt:   session.StitchingStartedAt,
		StitchingCompletedAt: session.StitchingCompletedAt,
		OptimizingStartedAt:  session.OptimizingStartedAt,
		CompletedAt:          session.CompletedAt,
	}
	if session.CreatedAt > 0 {
		elapsed := now.Unix() - session.CreatedAt
		if elapsed < 0 {
			elapsed = 0
		}
		tl.ElapsedSeconds = elapsed
		tl.ElapsedFormatted = FormatDuration(elapsed)
	}
	return tl
}

func videoDetails(session *store.Session) []VideoDetail {
	details := make([]VideoDetail, 0, len(session.Suggestions))
	for _, suggestion := range session.Suggestions {
		id := store.SuggestionID(suggestion.SequenceNumber)
		entry := session.Videos[id]

		detail := VideoDetail{
			SequenceNumber: id,
			Title:          orDefault(suggestion.Title, "Video "+id),
			Status:         "pending",
			Duration:       orDefault(suggestion.Duration, "N/A"),
		}
		if entry != nil {
			detail.Status = entry.Status
			detail.Uploaded = true
			detail.Validated = entry.Status == store.VideoValidated || entry.Status == store.VideoConverted
			detail.Converted = entry.Status == store.VideoConverted
			detail.S3Key = entry.S3Key
		}
		details = append(details, detail)
	}
	return details
}

// FormatDuration renders elapsed seconds as "42s", "3m 10s", or "1h 5m".
func FormatDuration(seconds int64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
