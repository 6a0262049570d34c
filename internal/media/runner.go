// Package media wraps the ffmpeg and ffprobe binaries shipped in the Lambda
// layer: probing and validating uploads, standardizing clips, stitching the
// final demo, and producing the optimized renditions and thumbnail.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// Tools holds resolved paths to the ffmpeg and ffprobe binaries.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// ResolveTools returns the tool paths, preferring the configured layer paths
// and falling back to PATH lookup for local runs.
func ResolveTools(ffmpegPath, ffprobePath string) Tools {
	return Tools{
		FFmpeg:  resolveBinary(ffmpegPath, "ffmpeg"),
		FFprobe: resolveBinary(ffprobePath, "ffprobe"),
	}
}

func resolveBinary(configured, name string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
		log.Debug().Str("path", configured).Str("binary", name).Msg("Configured binary not found, trying PATH")
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	// Keep the configured path so the eventual exec error names it.
	if configured != "" {
		return configured
	}
	return name
}

// run executes a binary with a deadline and returns its combined output.
func run(ctx context.Context, timeout time.Duration, bin string, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, bin, args...)
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return output, fmt.Errorf("%s timed out after %s", bin, timeout)
		}
		return output, fmt.Errorf("%s failed: %w\nOutput: %s", bin, err, truncate(string(output), 500))
	}

	log.Debug().
		Str("binary", bin).
		Dur("duration", elapsed).
		Msg("Command completed")
	return output, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
