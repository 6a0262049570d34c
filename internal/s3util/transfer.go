package s3util

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// DownloadToTemp streams an S3 object to a temporary file so ffmpeg can read
// it. The cleanup function MUST be called to remove the file.
func DownloadToTemp(ctx context.Context, client *s3.Client, bucket, key, pattern string) (path string, size int64, cleanup func(), err error) {
	start := time.Now()

	obj, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return "", 0, nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Body.Close()

	tempFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", 0, nil, fmt.Errorf("create temp file: %w", err)
	}
	path = tempFile.Name()

	cleanup = func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove temp file")
		}
	}

	size, err = io.Copy(tempFile, obj.Body)
	closeErr := tempFile.Close()
	if err != nil {
		cleanup()
		return "", 0, nil, fmt.Errorf("download %s to %s: %w", key, path, err)
	}
	if closeErr != nil {
		cleanup()
		return "", 0, nil, fmt.Errorf("close temp file %s: %w", path, closeErr)
	}

	log.Debug().
		Str("key", key).
		Str("path", path).
		Int64("sizeBytes", size).
		Dur("elapsed", time.Since(start)).
		Msg("S3 object downloaded to temp file")

	return path, size, cleanup, nil
}

// UploadFile uploads a local file to S3 with the given content type and
// optional object metadata.
func UploadFile(ctx context.Context, client *s3.Client, bucket, key, path, contentType string, metadata map[string]string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}

	start := time.Now()
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        f,
		ContentType: &contentType,
		Metadata:    metadata,
	})
	if err != nil {
		return 0, fmt.Errorf("put object %s: %w", key, err)
	}

	log.Debug().
		Str("key", key).
		Int64("sizeBytes", info.Size()).
		Dur("elapsed", time.Since(start)).
		Msg("File uploaded to S3")

	return info.Size(), nil
}

// UploadBytes writes an in-memory payload (e.g. a rendered slide) to S3.
func UploadBytes(ctx context.Context, client *s3.Client, bucket, key string, body []byte, contentType string) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	log.Debug().Str("key", key).Int("sizeBytes", len(body)).Msg("Bytes uploaded to S3")
	return nil
}
