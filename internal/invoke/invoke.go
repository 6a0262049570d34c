// Package invoke wraps asynchronous Lambda-to-Lambda dispatch. Downstream
// steps (validation, conversion, stitching, optimization, notification) are
// fired as Event invocations so the caller returns immediately.
package invoke

import (
	"context"
	"encoding/json"
	"fmt"

	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog/log"
)

// Invoker dispatches payloads to other Lambda functions.
type Invoker struct {
	client *awslambda.Client
}

// New creates an Invoker backed by the given Lambda client.
func New(client *awslambda.Client) *Invoker {
	return &Invoker{client: client}
}

// Async fires an Event invocation of functionName with the JSON-marshaled
// payload. Returns an error when the dispatch itself fails; the downstream
// function's result is not awaited.
func (i *Invoker) Async(ctx context.Context, functionName string, payload interface{}) error {
	if functionName == "" {
		return fmt.Errorf("async invoke: function name is empty")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", functionName, err)
	}

	_, err = i.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName:   &functionName,
		InvocationType: lambdatypes.InvocationTypeEvent,
		Payload:        body,
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", functionName, err)
	}

	log.Debug().Str("function", functionName).Int("payloadBytes", len(body)).Msg("Async invocation dispatched")
	return nil
}

// Sync runs a RequestResponse invocation and unmarshals the result into out.
// Used by the analyzer orchestration where the caller needs the result.
func (i *Invoker) Sync(ctx context.Context, functionName string, payload, out interface{}) error {
	if functionName == "" {
		return fmt.Errorf("sync invoke: function name is empty")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", functionName, err)
	}

	result, err := i.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: &functionName,
		Payload:      body,
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", functionName, err)
	}
	if result.FunctionError != nil {
		return fmt.Errorf("invoke %s: function error: %s", functionName, *result.FunctionError)
	}

	if out != nil {
		if err := json.Unmarshal(result.Payload, out); err != nil {
			return fmt.Errorf("unmarshal %s response: %w", functionName, err)
		}
	}
	return nil
}
