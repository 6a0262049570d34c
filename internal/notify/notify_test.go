package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
}

func TestSend_WebhookPayload(t *testing.T) {
	var got webhookPayload
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(nil, "", srv.URL)
	n.now = fixedNow

	result := n.Send(context.Background(), &Event{
		SessionID:    "abc12345",
		ProjectName:  "demo-toolkit",
		DemoURL:      "https://example.com/demo.mp4",
		ThumbnailURL: "https://example.com/thumb.jpg",
	})

	if !result.Webhook || !result.Log {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !result.Delivered() {
		t.Error("expected Delivered")
	}
	if gotUA != "AI-Demo-Builder/1.0" {
		t.Errorf("user agent = %q", gotUA)
	}
	if got.Event != "demo_ready" || got.SessionID != "abc12345" {
		t.Errorf("payload = %+v", got)
	}
	if !strings.Contains(got.Message, "demo-toolkit") {
		t.Errorf("message = %q", got.Message)
	}
	if got.Timestamp != "2026-01-15T12:00:00Z" {
		t.Errorf("timestamp = %q", got.Timestamp)
	}
}

func TestSend_WebhookFailureRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(nil, "", srv.URL)
	result := n.Send(context.Background(), &Event{SessionID: "x", ProjectName: "y"})

	if result.Webhook {
		t.Error("webhook should have failed")
	}
	if result.Errors["webhook"] == "" {
		t.Error("expected webhook error recorded")
	}
	// The log banner always delivers.
	if !result.Delivered() {
		t.Error("log channel should still count as delivered")
	}
}

func TestSend_UnconfiguredChannelsSkipped(t *testing.T) {
	n := New(nil, "", "")
	result := n.Send(context.Background(), &Event{SessionID: "x", ProjectName: "y"})

	if result.Webhook || result.SNS {
		t.Errorf("unexpected channel success: %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Errorf("skipped channels must not record errors: %+v", result.Errors)
	}
}

func TestEmailText(t *testing.T) {
	text := emailText(&Event{
		SessionID:    "abc12345",
		ProjectName:  "demo-toolkit",
		DemoURL:      "https://example.com/demo.mp4",
		ThumbnailURL: "https://example.com/thumb.jpg",
	}, fixedNow())

	for _, want := range []string{
		"Demo Video Ready!",
		"Project: demo-toolkit",
		"Session: abc12345",
		"https://example.com/demo.mp4",
		"Thumbnail: https://example.com/thumb.jpg",
		"Generated at: 2026-01-15 12:00:00 UTC",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("email text missing %q:\n%s", want, text)
		}
	}
}

func TestEmailText_NoThumbnail(t *testing.T) {
	text := emailText(&Event{SessionID: "a", ProjectName: "b", DemoURL: "c"}, fixedNow())
	if strings.Contains(text, "Thumbnail") {
		t.Error("thumbnail line should be omitted")
	}
}
