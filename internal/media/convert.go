package media

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Standard output format for every clip entering the stitcher. Mixed
// resolutions and frame rates break the concat demuxer.
const (
	outputWidth  = 1920
	outputHeight = 1080
	outputFPS    = 30
)

// convertTimeout leaves headroom inside the 5 minute Lambda timeout.
const convertTimeout = 280 * time.Second

// minOutputSize guards against ffmpeg exiting 0 with a garbage file.
const minOutputSize = 1000

// Standardize converts a clip to 1920x1080 at 30fps H.264/AAC.
func (t Tools) Standardize(ctx context.Context, inputPath, outputPath string) error {
	args := standardizeArgs(inputPath, outputPath)

	log.Info().
		Str("input", inputPath).
		Int("width", outputWidth).
		Int("height", outputHeight).
		Int("fps", outputFPS).
		Msg("Running ffmpeg standardization")

	if _, err := run(ctx, convertTimeout, t.FFmpeg, args); err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("ffmpeg did not create output file: %w", err)
	}
	if info.Size() < minOutputSize {
		return fmt.Errorf("output file too small: %d bytes (likely failed)", info.Size())
	}
	return nil
}

func standardizeArgs(inputPath, outputPath string) []string {
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,fps=%d",
		outputWidth, outputHeight, outputWidth, outputHeight, outputFPS)

	return []string{
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-vf", vf,
		"-b:v", "2M",
		"-maxrate", "2M",
		"-bufsize", "4M",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ar", "44100",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}
}
