// Package config centralizes environment configuration shared across the
// pipeline's Lambda functions. Each function reads the subset it needs once
// at cold start; defaults match the deployed stack so local runs work with
// minimal setup.
package config

import (
	"os"
	"strconv"
	"time"
)

// Default resource names and limits for the deployed stack.
const (
	DefaultBucket       = "ai-demo-builder"
	DefaultSessionTable = "ai-demo-sessions"
	DefaultCacheTable   = "ai-demo-cache"
	DefaultGitHubAPI    = "https://api.github.com"

	// MaxFileSize is the upload size ceiling in bytes (100 MB).
	MaxFileSize = 104857600

	// MinFileSize rejects empty or truncated uploads.
	MinFileSize = 1000

	// MinVideoDuration and MaxVideoDuration bound accepted clip lengths.
	MinVideoDuration = 5 * time.Second
	MaxVideoDuration = 120 * time.Second

	// DaysToKeep is how long completed sessions survive before cleanup.
	DaysToKeep = 30

	// FailedSessionDays is how long failed sessions survive before cleanup.
	FailedSessionDays = 7
)

// Config holds the environment configuration for a Lambda function.
type Config struct {
	Region       string
	Bucket       string
	SessionTable string
	CacheTable   string
	QueueURL     string
	TopicARN     string
	WebhookURL   string
	GitHubAPI    string

	FFmpegPath  string
	FFprobePath string

	MaxFileSize      int64
	MinVideoDuration time.Duration
	MaxVideoDuration time.Duration
	DaysToKeep       int
	FailedDays       int

	// Downstream function names for async invokes.
	ReadmeParserFunction    string
	ProjectAnalyzerFunction string
	SessionCreatorFunction  string
	VideoValidatorFunction  string
	FormatConverterFunction string
	SlideCreatorFunction    string
	VideoStitcherFunction   string
	VideoOptimizerFunction  string
	NotificationFunction    string
}

// Load reads the full configuration from the environment.
func Load() *Config {
	return &Config{
		Region:       os.Getenv("AWS_REGION"),
		Bucket:       envOr("S3_BUCKET", DefaultBucket),
		SessionTable: envOr("DYNAMODB_TABLE", DefaultSessionTable),
		CacheTable:   envOr("CACHE_TABLE", DefaultCacheTable),
		QueueURL:     os.Getenv("SQS_QUEUE_URL"),
		TopicARN:     os.Getenv("SNS_TOPIC_ARN"),
		WebhookURL:   os.Getenv("HTTP_WEBHOOK_URL"),
		GitHubAPI:    envOr("GITHUB_API", DefaultGitHubAPI),

		FFmpegPath:  envOr("FFMPEG_PATH", "/opt/bin/ffmpeg"),
		FFprobePath: envOr("FFPROBE_PATH", "/opt/bin/ffprobe"),

		MaxFileSize:      envInt64("MAX_FILE_SIZE", MaxFileSize),
		MinVideoDuration: envSeconds("MIN_VIDEO_DURATION", MinVideoDuration),
		MaxVideoDuration: envSeconds("MAX_VIDEO_DURATION", MaxVideoDuration),
		DaysToKeep:       envInt("DAYS_TO_KEEP", DaysToKeep),
		FailedDays:       envInt("FAILED_SESSION_DAYS", FailedSessionDays),

		ReadmeParserFunction:    os.Getenv("README_PARSER_FUNCTION"),
		ProjectAnalyzerFunction: os.Getenv("PROJECT_ANALYZER_FUNCTION"),
		SessionCreatorFunction:  os.Getenv("SESSION_CREATOR_FUNCTION"),
		VideoValidatorFunction:  os.Getenv("VIDEO_VALIDATOR_FUNCTION"),
		FormatConverterFunction: os.Getenv("FORMAT_CONVERTER_FUNCTION"),
		SlideCreatorFunction:    os.Getenv("SLIDE_CREATOR_FUNCTION"),
		VideoStitcherFunction:   os.Getenv("VIDEO_STITCHER_FUNCTION"),
		VideoOptimizerFunction:  os.Getenv("VIDEO_OPTIMIZER_FUNCTION"),
		NotificationFunction:    os.Getenv("NOTIFICATION_FUNCTION"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
