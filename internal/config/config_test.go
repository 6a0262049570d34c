package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Bucket != DefaultBucket {
		t.Errorf("expected default bucket %s, got %s", DefaultBucket, cfg.Bucket)
	}
	if cfg.SessionTable != DefaultSessionTable {
		t.Errorf("expected default session table, got %s", cfg.SessionTable)
	}
	if cfg.GitHubAPI != DefaultGitHubAPI {
		t.Errorf("expected default GitHub API, got %s", cfg.GitHubAPI)
	}
	if cfg.MaxFileSize != MaxFileSize {
		t.Errorf("expected max file size %d, got %d", int64(MaxFileSize), cfg.MaxFileSize)
	}
	if cfg.MinVideoDuration != 5*time.Second || cfg.MaxVideoDuration != 120*time.Second {
		t.Errorf("unexpected duration bounds: %v..%v", cfg.MinVideoDuration, cfg.MaxVideoDuration)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("S3_BUCKET", "my-bucket")
	t.Setenv("MAX_VIDEO_DURATION", "60")
	t.Setenv("MAX_FILE_SIZE", "1000000")
	t.Setenv("DAYS_TO_KEEP", "14")

	cfg := Load()

	if cfg.Bucket != "my-bucket" {
		t.Errorf("expected bucket my-bucket, got %s", cfg.Bucket)
	}
	if cfg.MaxVideoDuration != 60*time.Second {
		t.Errorf("expected 60s max duration, got %v", cfg.MaxVideoDuration)
	}
	if cfg.MaxFileSize != 1000000 {
		t.Errorf("expected max file size 1000000, got %d", cfg.MaxFileSize)
	}
	if cfg.DaysToKeep != 14 {
		t.Errorf("expected 14 days to keep, got %d", cfg.DaysToKeep)
	}
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("MIN_VIDEO_DURATION", "")

	cfg := Load()

	if cfg.MaxFileSize != MaxFileSize {
		t.Errorf("expected fallback max file size, got %d", cfg.MaxFileSize)
	}
	if cfg.MinVideoDuration != MinVideoDuration {
		t.Errorf("expected fallback min duration, got %v", cfg.MinVideoDuration)
	}
}
