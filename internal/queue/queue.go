// Package queue puts stitch jobs on SQS. The slide-creator consumes them.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
)

// ActionStitch is the only job action currently queued.
const ActionStitch = "stitch_videos"

// StitchMessage is the SQS message body for a stitch job.
type StitchMessage struct {
	SessionID   string `json:"session_id"`
	Action      string `json:"action"`
	ProjectName string `json:"project_name"`
	TotalVideos int    `json:"total_videos"`
	Timestamp   string `json:"timestamp"`
	Source      string `json:"source"`
}

// Publisher sends stitch jobs to the processing queue.
type Publisher struct {
	client   *sqs.Client
	queueURL string
}

// NewPublisher wires an SQS client to a queue URL.
func NewPublisher(client *sqs.Client, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

// EnqueueStitch queues a stitch job for the session. Returns the SQS message
// ID on success.
func (p *Publisher) EnqueueStitch(ctx context.Context, sessionID, projectName string, totalVideos int, source string) (string, error) {
	if p.queueURL == "" {
		return "", fmt.Errorf("SQS queue URL not configured")
	}
	if projectName == "" {
		projectName = "unknown"
	}

	msg := StitchMessage{
		SessionID:   sessionID,
		Action:      ActionStitch,
		ProjectName: projectName,
		TotalVideos: totalVideos,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Source:      source,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stitch message: %w", err)
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"session_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(sessionID),
			},
			"action": {
				DataType:    aws.String("String"),
				StringValue: aws.String(ActionStitch),
			},
			"project_name": {
				DataType:    aws.String("String"),
				StringValue: aws.String(projectName),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send stitch message: %w", err)
	}

	messageID := aws.ToString(out.MessageId)
	log.Info().
		Str("session_id", sessionID).
		Str("message_id", messageID).
		Int("total_videos", totalVideos).
		Msg("Stitch job queued")
	return messageID, nil
}

// ParseStitchMessage decodes an SQS message body into a StitchMessage.
func ParseStitchMessage(body string) (*StitchMessage, error) {
	var msg StitchMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return nil, fmt.Errorf("invalid stitch message: %w", err)
	}
	if msg.SessionID == "" {
		return nil, fmt.Errorf("stitch message missing session_id")
	}
	return &msg, nil
}
