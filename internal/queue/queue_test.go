package queue

import (
	"testing"
)

func TestParseStitchMessage(t *testing.T) {
	body := `{"session_id":"abc12345","action":"stitch_videos","project_name":"demo-toolkit","total_videos":3,"timestamp":"2026-01-01T00:00:00Z","source":"job-queue"}`

	msg, err := ParseStitchMessage(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.SessionID != "abc12345" || msg.Action != ActionStitch || msg.TotalVideos != 3 {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestParseStitchMessage_Invalid(t *testing.T) {
	if _, err := ParseStitchMessage("not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := ParseStitchMessage(`{"action":"stitch_videos"}`); err == nil {
		t.Error("expected error for missing session_id")
	}
}
