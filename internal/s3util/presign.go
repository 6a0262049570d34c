// Package s3util provides shared S3 helpers: presigned URLs, temp-file
// transfer for ffmpeg steps, and prefix deletion for cleanup.
package s3util

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// PresignUpload creates a presigned PUT URL for a video upload. The client
// must send the same Content-Type or S3 rejects the signature.
func PresignUpload(ctx context.Context, presigner *s3.PresignClient, bucket, key, contentType string, expiry time.Duration) (string, error) {
	result, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign PutObject %s: %w", key, err)
	}
	return result.URL, nil
}

// PresignDownload creates a presigned GET URL for an S3 object.
func PresignDownload(ctx context.Context, presigner *s3.PresignClient, bucket, key string, expiry time.Duration) (string, error) {
	result, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign GetObject %s: %w", key, err)
	}
	return result.URL, nil
}

// Head returns the object size, or exists=false when the object is missing.
func Head(ctx context.Context, client *s3.Client, bucket, key string) (size int64, exists bool, err error) {
	result, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		// HeadObject reports a missing key as NotFound; callers only care
		// about existence, so fold that into exists=false.
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return 0, false, nil
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("head %s: %w", key, err)
	}
	return aws.ToInt64(result.ContentLength), true, nil
}
