package media

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	encodeTimeout    = 900 * time.Second
	thumbnailTimeout = 60 * time.Second
)

// Preset describes one output rendition.
type Preset struct {
	Width        int
	Height       int
	Bitrate      string
	Maxrate      string
	Bufsize      string
	CRF          int
	AudioBitrate string
}

// Presets are the supported output renditions.
var Presets = map[string]Preset{
	"1080p": {Width: 1920, Height: 1080, Bitrate: "5M", Maxrate: "6M", Bufsize: "10M", CRF: 23, AudioBitrate: "192k"},
	"720p":  {Width: 1280, Height: 720, Bitrate: "2.5M", Maxrate: "3M", Bufsize: "5M", CRF: 24, AudioBitrate: "128k"},
	"480p":  {Width: 854, Height: 480, Bitrate: "1M", Maxrate: "1.5M", Bufsize: "2M", CRF: 25, AudioBitrate: "96k"},
}

// Encode produces one rendition of the stitched demo. Unknown preset names
// fall back to 1080p.
func (t Tools) Encode(ctx context.Context, inputPath, outputPath, presetName string) error {
	preset, ok := Presets[presetName]
	if !ok {
		preset = Presets["1080p"]
	}

	log.Info().Str("preset", presetName).Str("input", inputPath).Msg("Encoding rendition")
	_, err := run(ctx, encodeTimeout, t.FFmpeg, encodeArgs(inputPath, outputPath, preset))
	return err
}

func encodeArgs(inputPath, outputPath string, preset Preset) []string {
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		preset.Width, preset.Height, preset.Width, preset.Height)

	return []string{
		"-y",
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", fmt.Sprintf("%d", preset.CRF),
		"-maxrate", preset.Maxrate,
		"-bufsize", preset.Bufsize,
		"-vf", vf,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", preset.AudioBitrate,
		"-ar", "44100",
		"-ac", "2",
		"-movflags", "+faststart",
		"-brand", "mp42",
		outputPath,
	}
}

// Thumbnail captures a 640x360 JPEG from one second into the video.
func (t Tools) Thumbnail(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-ss", "00:00:01",
		"-vframes", "1",
		"-vf", "scale=640:360:force_original_aspect_ratio=decrease,pad=640:360:(ow-iw)/2:(oh-ih)/2:black",
		"-q:v", "2",
		outputPath,
	}

	log.Debug().Str("input", inputPath).Msg("Generating thumbnail")
	_, err := run(ctx, thumbnailTimeout, t.FFmpeg, args)
	return err
}
