package media

import (
	"strings"
	"testing"
	"time"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"30/1", 30},
		{"60/1", 60},
		{"24000/1001", 23.976023976023978},
		{"0/0", 0},
		{"25", 25},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := parseFrameRate(tt.input); got != tt.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func testLimits() Limits {
	return Limits{
		MinDuration: 5 * time.Second,
		MaxDuration: 120 * time.Second,
		MinSize:     1000,
		MaxSize:     104857600,
	}
}

func TestValidate(t *testing.T) {
	good := ProbeResult{Duration: 42.5, Width: 1920, Height: 1080, FPS: 30, Codec: "h264"}

	tests := []struct {
		name    string
		pr      ProbeResult
		size    int64
		valid   bool
		errPart string
	}{
		{"valid clip", good, 5_000_000, true, ""},
		{"too large", good, 200_000_000, false, "too large"},
		{"too small", good, 12, false, "too small"},
		{"too short", ProbeResult{Duration: 2, Width: 1920, Height: 1080}, 5_000_000, false, "too short"},
		{"too long", ProbeResult{Duration: 600, Width: 1920, Height: 1080}, 5_000_000, false, "too long"},
		{"low resolution", ProbeResult{Duration: 30, Width: 100, Height: 80}, 5_000_000, false, "Resolution too low"},
		{"high resolution", ProbeResult{Duration: 30, Width: 8000, Height: 4400}, 5_000_000, false, "8K"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(&tt.pr, tt.size, testLimits())
			if v.Valid != tt.valid {
				t.Fatalf("Valid = %v, errors: %v", v.Valid, v.Errors)
			}
			if tt.errPart != "" {
				found := false
				for _, e := range v.Errors {
					if strings.Contains(e, tt.errPart) {
						found = true
					}
				}
				if !found {
					t.Errorf("expected error containing %q, got %v", tt.errPart, v.Errors)
				}
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	v := Validate(&ProbeResult{Duration: 1, Width: 10, Height: 10}, 5, testLimits())
	if len(v.Errors) < 3 {
		t.Errorf("expected multiple errors, got %v", v.Errors)
	}
}

func TestValidate_RoundsProperties(t *testing.T) {
	v := Validate(&ProbeResult{Duration: 42.556, Width: 1920, Height: 1080, FPS: 29.970029}, 5000, testLimits())
	if v.DurationSeconds != 42.56 {
		t.Errorf("duration = %v", v.DurationSeconds)
	}
	if v.FPS != 29.97 {
		t.Errorf("fps = %v", v.FPS)
	}
}

func TestStandardizeArgs(t *testing.T) {
	args := standardizeArgs("/tmp/in.mp4", "/tmp/out.mp4")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-c:v libx264",
		"-preset medium",
		"-crf 23",
		"scale=1920:1080:force_original_aspect_ratio=decrease",
		"pad=1920:1080:(ow-iw)/2:(oh-ih)/2:black",
		"fps=30",
		"-b:v 2M",
		"-maxrate 2M",
		"-bufsize 4M",
		"-b:a 128k",
		"-ar 44100",
		"-movflags +faststart",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Errorf("output path must be last, got %s", args[len(args)-1])
	}
}

func TestEncodeArgs_PresetValues(t *testing.T) {
	args := encodeArgs("/tmp/in.mp4", "/tmp/out.mp4", Presets["720p"])
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-crf 24",
		"-maxrate 3M",
		"-bufsize 5M",
		"scale=1280:720",
		"-b:a 128k",
		"-ac 2",
		"-brand mp42",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("720p args missing %q: %s", want, joined)
		}
	}
}

func TestPresets(t *testing.T) {
	for _, name := range []string{"1080p", "720p", "480p"} {
		if _, ok := Presets[name]; !ok {
			t.Errorf("missing preset %s", name)
		}
	}
	if Presets["1080p"].Width != 1920 || Presets["480p"].Width != 854 {
		t.Error("unexpected preset dimensions")
	}
}

func TestConcatList(t *testing.T) {
	got := concatList([]string{"/tmp/a.mp4", "/tmp/it's.mp4"})
	want := "file '/tmp/a.mp4'\nfile '/tmp/it'\\''s.mp4'\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
