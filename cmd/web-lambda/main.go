// Package main provides the Lambda entry point for the web frontend.
//
// Serves the embedded single-page app through API Gateway. The /api/*
// routes are wired by API Gateway directly to the pipeline Lambdas, so this
// function only owns the static assets. Outside Lambda it runs as a plain
// HTTP server for local development.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/lambdaboot"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/webapp"
)

func init() {
	initStart := time.Now()
	logging.Init()
	lambdaboot.StartupLog("web-lambda", initStart).Log()
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/", webapp.Handler())

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		adapter := httpadapter.NewV2(mux)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	addr := ":" + logging.EnvOrDefault("PORT", "8080")
	log.Info().Str("addr", addr).Msg("Serving frontend locally")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
}
