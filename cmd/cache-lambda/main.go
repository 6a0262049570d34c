// Package main provides the Lambda entry point for the shared cache.
//
// Invoked with get/set/delete operations on the DynamoDB cache table.
// Callers that share the table (github-fetcher, suggestion) use the cache
// package directly; this Lambda exists for components outside the Go
// codebase and for operational pokes via the CLI.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/cache"
	"github.com/fpang/ai-demo-builder/internal/config"
	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/metrics"
)

var coldStart = true

var cacheStore *cache.Store

func init() {
	initStart := time.Now()
	logging.Init()

	cfg := config.Load()
	aws := lambdaboot.InitAWS()
	sessions := lambdaboot.InitSessions(aws.Config, cfg.SessionTable)
	cacheStore = lambdaboot.InitCache(sessions.Client(), cfg.CacheTable)

	lambdaboot.StartupLog("cache-lambda", initStart).
		DynamoTable("cache", cfg.CacheTable).
		Log()
}

func main() {
	lambda.Start(handler)
}

// CacheRequest selects a cache operation. TTLSeconds applies to set only and
// defaults to one hour.
type CacheRequest struct {
	Operation  string `json:"operation"`
	Key        string `json:"key"`
	Value      string `json:"value,omitempty"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

// CacheResponse reports the outcome. Value is set only for a get hit.
type CacheResponse struct {
	Operation string `json:"operation"`
	Key       string `json:"key"`
	Found     bool   `json:"found,omitempty"`
	Value     string `json:"value,omitempty"`
}

func handler(ctx context.Context, req CacheRequest) (*CacheResponse, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "cache-lambda").Msg("Cold start — first invocation")
	}
	rec := metrics.Pipeline()
	defer rec.Flush()

	if req.Key == "" {
		return nil, fmt.Errorf("key is required")
	}

	resp := &CacheResponse{Operation: req.Operation, Key: req.Key}

	switch req.Operation {
	case "get":
		resp.Value, resp.Found = cacheStore.Get(ctx, req.Key)
		if resp.Found {
			rec.Count("CacheHit")
		} else {
			rec.Count("CacheMiss")
		}
	case "set":
		ttl := cache.DefaultTTL
		if req.TTLSeconds > 0 {
			ttl = time.Duration(req.TTLSeconds) * time.Second
		}
		cacheStore.Set(ctx, req.Key, req.Value, ttl)
		rec.Count("CacheSet")
	case "delete":
		cacheStore.Delete(ctx, req.Key)
		rec.Count("CacheDelete")
	default:
		return nil, fmt.Errorf("unknown cache operation: %q", req.Operation)
	}

	return resp, nil
}
