package s3util

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// maxBatchDelete is the S3 DeleteObjects limit per call.
const maxBatchDelete = 1000

// ListKeys returns every object key under the given prefix, paginating
// through ListObjectsV2.
func ListKeys(ctx context.Context, client *s3.Client, bucket, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}

	return keys, nil
}

// DeleteKeys removes the given objects, batching at the S3 limit of 1000
// keys per DeleteObjects call. Returns the number of objects deleted.
func DeleteKeys(ctx context.Context, client *s3.Client, bucket string, keys []string) (int, error) {
	deleted := 0

	for i := 0; i < len(keys); i += maxBatchDelete {
		end := i + maxBatchDelete
		if end > len(keys) {
			end = len(keys)
		}

		objects := make([]types.ObjectIdentifier, 0, end-i)
		for _, key := range keys[i:end] {
			k := key
			objects = append(objects, types.ObjectIdentifier{Key: &k})
		}

		result, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: &bucket,
			Delete: &types.Delete{Objects: objects},
		})
		if err != nil {
			return deleted, fmt.Errorf("delete objects batch (%d keys): %w", len(objects), err)
		}
		deleted += len(result.Deleted)

		for _, e := range result.Errors {
			log.Warn().
				Str("key", stringOr(e.Key)).
				Str("code", stringOr(e.Code)).
				Str("message", stringOr(e.Message)).
				Msg("S3 delete error")
		}
	}

	return deleted, nil
}

// DeletePrefix removes every object under the prefix. Returns the number of
// objects deleted.
func DeletePrefix(ctx context.Context, client *s3.Client, bucket, prefix string) (int, error) {
	keys, err := ListKeys(ctx, client, bucket, prefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	deleted, err := DeleteKeys(ctx, client, bucket, keys)
	if err != nil {
		return deleted, err
	}

	log.Info().Str("prefix", prefix).Int("deleted", deleted).Msg("S3 prefix deleted")
	return deleted, nil
}

func stringOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
