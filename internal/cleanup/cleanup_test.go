package cleanup

import (
	"testing"
	"time"

	"github.com/fpang/ai-demo-builder/internal/store"
)

func testSweeper() *Sweeper {
	return &Sweeper{
		policy: Policy{DaysToKeep: 30, FailedSessionDays: 7},
		now:    time.Now,
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s := testSweeper()

	daysAgo := func(d int) int64 { return now.AddDate(0, 0, -d).Unix() }

	tests := []struct {
		name    string
		session store.Session
		want    bool
	}{
		{"ttl passed", store.Session{ExpiresAt: daysAgo(1)}, true},
		{"ttl in future", store.Session{ExpiresAt: now.Add(time.Hour).Unix(), Status: store.StatusReady}, false},
		{"old complete", store.Session{Status: store.StatusComplete, CreatedAt: daysAgo(31)}, true},
		{"recent complete", store.Session{Status: store.StatusComplete, CreatedAt: daysAgo(5)}, false},
		{"old failed", store.Session{Status: store.StatusStitchingFailed, CreatedAt: daysAgo(8)}, true},
		{"recent failed", store.Session{Status: store.StatusStitchingFailed, CreatedAt: daysAgo(2)}, false},
		{"old in-flight kept", store.Session{Status: store.StatusUploading, CreatedAt: daysAgo(20)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.expired(&tt.session, now); got != tt.want {
				t.Errorf("expired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntermediateDemoKeys(t *testing.T) {
	keys := []string{
		"demos/abc/stitched_demo_abc_1700000000.mp4",
		"demos/abc/final_demo_abc_720p.mp4",
		"demos/abc/final_demo_abc_1080p.mp4",
		"demos/abc/thumbnail.jpg",
		"demos/abc/scratch.tmp",
	}

	got := intermediateDemoKeys(keys)

	want := map[string]bool{
		"demos/abc/stitched_demo_abc_1700000000.mp4": true,
		"demos/abc/scratch.tmp":                      true,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for _, key := range got {
		if !want[key] {
			t.Errorf("unexpected key %s", key)
		}
	}
}
