// Package cache provides a DynamoDB-backed cache with TTL expiry for GitHub
// API responses and AI suggestion results. Cache failures are never fatal:
// callers treat an error exactly like a miss and fall through to the source.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is used when Set is called with ttl <= 0.
const DefaultTTL = time.Hour

// Store is a DynamoDB cache table. Items carry cacheKey, value (a JSON
// document serialized by the caller), and ttl (Unix epoch seconds). The table
// has DynamoDB TTL enabled on the ttl attribute; Get additionally checks
// expiry itself because TTL deletion can lag by hours.
type Store struct {
	client    *dynamodb.Client
	tableName string

	// now is swappable for tests.
	now func() time.Time
}

// New creates a cache Store for the given table.
func New(client *dynamodb.Client, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// Get returns the cached value for key, or ok=false on miss, expiry, or error.
// Stale entries found before DynamoDB's TTL sweep are deleted lazily.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"cacheKey": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("cacheKey", key).Msg("Cache read failed — treating as miss")
		return "", false
	}
	if result.Item == nil {
		return "", false
	}

	if ttlAttr, ok := result.Item["ttl"].(*types.AttributeValueMemberN); ok {
		expiry, _ := strconv.ParseInt(ttlAttr.Value, 10, 64)
		if expiry > 0 && s.now().Unix() > expiry {
			log.Debug().Str("cacheKey", key).Msg("Cache entry expired — deleting lazily")
			s.Delete(ctx, key)
			return "", false
		}
	}

	valAttr, ok := result.Item["value"].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}

	log.Debug().Str("cacheKey", key).Msg("Cache hit")
	return valAttr.Value, true
}

// Set stores value under key with the given TTL. Errors are logged and
// swallowed; a failed cache write must not fail the operation being cached.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	expiry := s.now().Add(ttl).Unix()

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item: map[string]types.AttributeValue{
			"cacheKey": &types.AttributeValueMemberS{Value: key},
			"value":    &types.AttributeValueMemberS{Value: value},
			"ttl":      &types.AttributeValueMemberN{Value: strconv.FormatInt(expiry, 10)},
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("cacheKey", key).Msg("Cache write failed — continuing without cache")
		return
	}

	log.Debug().Str("cacheKey", key).Dur("ttl", ttl).Msg("Cache entry stored")
}

// Delete removes a cache entry. Errors are logged and swallowed.
func (s *Store) Delete(ctx context.Context, key string) {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"cacheKey": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("cacheKey", key).Msg("Cache delete failed")
	}
}

// AnalysisKey builds the cache key for a repository analysis pinned to a commit.
func AnalysisKey(owner, repo, sha string) string {
	return fmt.Sprintf("github_%s_%s_%s", owner, repo, sha)
}

// SuggestionsKey builds the cache key for AI suggestions pinned to a commit.
func SuggestionsKey(owner, project, sha string) string {
	return fmt.Sprintf("suggestions_%s_%s_%s", owner, project, sha)
}
