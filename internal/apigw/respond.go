// Package apigw provides JSON response helpers for API Gateway proxy Lambdas.
// Client-facing error messages stay clean; internal details are logged
// server-side and never leak S3 paths, ARNs, or stack traces.
package apigw

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
)

// corsHeaders are attached to every response so the frontend can call the
// API from any origin during development.
func corsHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
	}
}

// JSON builds an API Gateway proxy response with the given status and body.
func JSON(status int, data interface{}) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response body")
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Headers:    corsHeaders(),
			Body:       `{"error":"internal error"}`,
		}, nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(),
		Body:       string(body),
	}, nil
}

// JSONWithHeaders is JSON with extra response headers merged in.
func JSONWithHeaders(status int, data interface{}, headers map[string]string) (events.APIGatewayProxyResponse, error) {
	resp, err := JSON(status, data)
	for k, v := range headers {
		resp.Headers[k] = v
	}
	return resp, err
}

// Error builds a JSON error response. clientMsg is returned to the caller;
// optional internalDetails are logged but never sent to the client.
func Error(status int, clientMsg string, internalDetails ...string) (events.APIGatewayProxyResponse, error) {
	if len(internalDetails) > 0 {
		log.Error().
			Int("status", status).
			Str("clientMsg", clientMsg).
			Strs("internalDetails", internalDetails).
			Msg("HTTP error with internal details")
	}
	return JSON(status, map[string]string{"error": clientMsg})
}

// ParseBody unmarshals a request body into out. Returns false if the body is
// empty or invalid JSON.
func ParseBody(req events.APIGatewayProxyRequest, out interface{}) bool {
	if req.Body == "" {
		return false
	}
	if err := json.Unmarshal([]byte(req.Body), out); err != nil {
		log.Warn().Err(err).Msg("Failed to parse request body")
		return false
	}
	return true
}
