package media

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SlideDuration is how long each slide holds on screen in the stitched demo.
const SlideDuration = 3

const (
	slideTimeout       = 60 * time.Second
	silentAudioTimeout = 120 * time.Second
	concatTimeout      = 600 * time.Second
)

// SlideToVideo renders a still slide image as a short video clip in the
// standard output format.
func (t Tools) SlideToVideo(ctx context.Context, slidePath, outputPath string) error {
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		outputWidth, outputHeight, outputWidth, outputHeight)

	args := []string{
		"-y",
		"-loop", "1",
		"-i", slidePath,
		"-c:v", "libx264",
		"-t", fmt.Sprintf("%d", SlideDuration),
		"-pix_fmt", "yuv420p",
		"-vf", vf,
		"-r", fmt.Sprintf("%d", outputFPS),
		"-preset", "fast",
		outputPath,
	}

	log.Debug().Str("slide", slidePath).Msg("Creating video from slide")
	_, err := run(ctx, slideTimeout, t.FFmpeg, args)
	return err
}

// AddSilentAudio adds a silent stereo AAC track. Slide clips have no audio
// and the concat demuxer needs every input to carry the same streams.
func (t Tools) AddSilentAudio(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-f", "lavfi",
		"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}

	log.Debug().Str("input", inputPath).Msg("Adding silent audio track")
	_, err := run(ctx, silentAudioTimeout, t.FFmpeg, args)
	return err
}

// Concat joins the ordered clips into one video using the concat demuxer.
func (t Tools) Concat(ctx context.Context, videoPaths []string, outputPath string) error {
	concatFile := strings.TrimSuffix(outputPath, ".mp4") + "_concat.txt"
	if err := os.WriteFile(concatFile, []byte(concatList(videoPaths)), 0o644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(concatFile)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatFile,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		outputPath,
	}

	log.Info().Int("clip_count", len(videoPaths)).Msg("Concatenating videos")
	_, err := run(ctx, concatTimeout, t.FFmpeg, args)
	return err
}

// concatList renders the concat demuxer file list, escaping single quotes.
func concatList(videoPaths []string) string {
	var b strings.Builder
	for _, path := range videoPaths {
		escaped := strings.ReplaceAll(path, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	return b.String()
}
