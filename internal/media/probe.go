package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fpang/ai-demo-builder/internal/store"
)

const probeTimeout = 30 * time.Second

// Resolution bounds accepted for uploaded clips. The upper bound is 8K.
const (
	minWidth  = 320
	minHeight = 240
	maxWidth  = 7680
	maxHeight = 4320
)

// Limits are the upload acceptance bounds, taken from configuration.
type Limits struct {
	MinDuration time.Duration
	MaxDuration time.Duration
	MinSize     int64
	MaxSize     int64
}

// ProbeResult holds the stream properties extracted from a video file.
type ProbeResult struct {
	Duration float64
	Width    int
	Height   int
	FPS      float64
	Codec    string
	HasAudio bool
}

// ffprobeOutput mirrors the JSON structure emitted by ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type ffprobeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
}

// Probe extracts video properties with ffprobe.
func (t Tools) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("ffprobe timed out after %s", probeTimeout)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	result := &ProbeResult{}
	if probe.Format.Duration != "" {
		result.Duration, _ = strconv.ParseFloat(probe.Format.Duration, 64)
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if result.Width == 0 {
				result.Width = stream.Width
				result.Height = stream.Height
				result.Codec = stream.CodecName
				result.FPS = parseFrameRate(stream.RFrameRate)
			}
		case "audio":
			result.HasAudio = true
		}
	}

	if result.Width == 0 && result.Codec == "" {
		return nil, fmt.Errorf("no video stream found")
	}
	return result, nil
}

// Validate checks an uploaded clip against the acceptance bounds. A non-nil
// Validation is always returned; Valid is false when any check fails.
func Validate(pr *ProbeResult, sizeBytes int64, lim Limits) *store.Validation {
	var errs []string

	if sizeBytes > lim.MaxSize {
		errs = append(errs, fmt.Sprintf("File too large: %d bytes (max: %d bytes)", sizeBytes, lim.MaxSize))
	}
	if sizeBytes < lim.MinSize {
		errs = append(errs, fmt.Sprintf("File too small: %d bytes (likely corrupted)", sizeBytes))
	}

	minSec := lim.MinDuration.Seconds()
	maxSec := lim.MaxDuration.Seconds()
	if pr.Duration < minSec {
		errs = append(errs, fmt.Sprintf("Video too short: %.1fs (minimum: %.0fs)", pr.Duration, minSec))
	}
	if pr.Duration > maxSec {
		errs = append(errs, fmt.Sprintf("Video too long: %.1fs (maximum: %.0fs)", pr.Duration, maxSec))
	}

	if pr.Width < minWidth || pr.Height < minHeight {
		errs = append(errs, fmt.Sprintf("Resolution too low: %dx%d (minimum: %dx%d)", pr.Width, pr.Height, minWidth, minHeight))
	}
	if pr.Width > maxWidth || pr.Height > maxHeight {
		errs = append(errs, fmt.Sprintf("Resolution too high: %dx%d (maximum: 8K)", pr.Width, pr.Height))
	}

	return &store.Validation{
		Valid:           len(errs) == 0,
		Errors:          errs,
		DurationSeconds: round2(pr.Duration),
		Width:           pr.Width,
		Height:          pr.Height,
		FPS:             round2(pr.FPS),
		Codec:           pr.Codec,
		SizeBytes:       sizeBytes,
	}
}

// parseFrameRate parses ffprobe fractions like "30/1" or "24000/1001".
func parseFrameRate(value string) float64 {
	parts := strings.Split(value, "/")
	if len(parts) == 2 {
		num, _ := strconv.ParseFloat(parts[0], 64)
		den, _ := strconv.ParseFloat(parts[1], 64)
		if den != 0 {
			return num / den
		}
		return 0
	}
	rate, _ := strconv.ParseFloat(value, 64)
	return rate
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
