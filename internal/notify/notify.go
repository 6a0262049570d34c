// Package notify announces a finished demo over the configured channels: a
// CloudWatch log banner (always), an HTTP webhook, and an SNS topic. Channel
// failures are recorded per channel; delivery counts as successful when any
// channel got through.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"
)

const (
	eventDemoReady = "demo_ready"
	userAgent      = "AI-Demo-Builder/1.0"
	webhookTimeout = 10 * time.Second
)

// Event describes a completed demo.
type Event struct {
	SessionID    string
	ProjectName  string
	DemoURL      string
	ThumbnailURL string
}

// Result reports per-channel delivery.
type Result struct {
	Log     bool              `json:"log"`
	Webhook bool              `json:"webhook"`
	SNS     bool              `json:"sns"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Delivered reports whether at least one channel got the notification out.
func (r *Result) Delivered() bool {
	return r.Log || r.Webhook || r.SNS
}

// Notifier fans a demo-ready event out to all configured channels.
type Notifier struct {
	snsClient  *sns.Client
	topicARN   string
	webhookURL string
	httpClient *http.Client
	now        func() time.Time
}

// New builds a Notifier. Empty topicARN or webhookURL disables that channel.
func New(snsClient *sns.Client, topicARN, webhookURL string) *Notifier {
	return &Notifier{
		snsClient:  snsClient,
		topicARN:   topicARN,
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: webhookTimeout},
		now:        time.Now,
	}
}

// Send delivers the event on every configured channel.
func (n *Notifier) Send(ctx context.Context, ev *Event) *Result {
	result := &Result{Errors: map[string]string{}}

	n.logBanner(ev)
	result.Log = true

	if n.webhookURL == "" {
		log.Info().Msg("HTTP webhook not configured, skipping")
	} else if err := n.sendWebhook(ctx, ev); err != nil {
		log.Error().Err(err).Msg("HTTP webhook failed")
		result.Errors["webhook"] = err.Error()
	} else {
		result.Webhook = true
	}

	if n.topicARN == "" {
		log.Info().Msg("SNS topic not configured, skipping")
	} else if err := n.sendSNS(ctx, ev); err != nil {
		log.Error().Err(err).Msg("SNS notification failed")
		result.Errors["sns"] = err.Error()
	} else {
		result.SNS = true
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result
}

// logBanner writes the always-available CloudWatch notification.
func (n *Notifier) logBanner(ev *Event) {
	thumbnail := ev.ThumbnailURL
	if thumbnail == "" {
		thumbnail = "N/A"
	}
	log.Info().
		Str("session_id", ev.SessionID).
		Str("project_name", ev.ProjectName).
		Str("demo_url", ev.DemoURL).
		Str("thumbnail_url", thumbnail).
		Time("completed_at", n.now().UTC()).
		Msg("DEMO VIDEO READY: your demo video is ready for download")
}

// webhookPayload is the JSON body POSTed to the configured webhook.
type webhookPayload struct {
	Event        string `json:"event"`
	SessionID    string `json:"session_id"`
	ProjectName  string `json:"project_name"`
	DemoURL      string `json:"demo_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
}

func (n *Notifier) sendWebhook(ctx context.Context, ev *Event) error {
	payload := webhookPayload{
		Event:        eventDemoReady,
		SessionID:    ev.SessionID,
		ProjectName:  ev.ProjectName,
		DemoURL:      ev.DemoURL,
		ThumbnailURL: ev.ThumbnailURL,
		Message:      fmt.Sprintf("Your demo video for %s is ready!", ev.ProjectName),
		Timestamp:    n.now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	log.Info().Int("status", resp.StatusCode).Msg("HTTP webhook sent")
	return nil
}

func (n *Notifier) sendSNS(ctx context.Context, ev *Event) error {
	data := map[string]string{
		"event":         eventDemoReady,
		"session_id":    ev.SessionID,
		"project_name":  ev.ProjectName,
		"demo_url":      ev.DemoURL,
		"thumbnail_url": ev.ThumbnailURL,
		"timestamp":     n.now().UTC().Format(time.RFC3339),
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal SNS payload: %w", err)
	}

	text := emailText(ev, n.now().UTC())

	// Per-protocol message: formatted text for email readers, JSON for
	// SQS/Lambda subscribers.
	envelope, err := json.Marshal(map[string]string{
		"default": text,
		"email":   text,
		"sqs":     string(dataJSON),
		"lambda":  string(dataJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal SNS envelope: %w", err)
	}

	out, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn:         aws.String(n.topicARN),
		Subject:          aws.String("Demo Ready: " + ev.ProjectName),
		Message:          aws.String(string(envelope)),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return fmt.Errorf("SNS publish failed: %w", err)
	}
	log.Info().Str("message_id", aws.ToString(out.MessageId)).Msg("SNS notification sent")
	return nil
}

func emailText(ev *Event, now time.Time) string {
	text := fmt.Sprintf(`Demo Video Ready!

Project: %s
Session: %s

Your demo video is ready to download:
%s
`, ev.ProjectName, ev.SessionID, ev.DemoURL)
	if ev.ThumbnailURL != "" {
		text += fmt.Sprintf("\nThumbnail: %s\n", ev.ThumbnailURL)
	}
	text += fmt.Sprintf("\nGenerated at: %s UTC\n", now.Format("2006-01-02 15:04:05"))
	return text
}
