package slides

import (
	"bytes"
	"image/png"
	"testing"
)

func TestTitleSlide(t *testing.T) {
	img := Title("demo-toolkit", "octocat")

	if img.Bounds().Dx() != Width || img.Bounds().Dy() != Height {
		t.Fatalf("unexpected dimensions %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != titleScheme.bg {
		t.Errorf("background = %v, want %v", got, titleScheme.bg)
	}
	// Accent line under the project name.
	if got := img.RGBAAt(Width/2, Height/2-8); got != titleScheme.accent {
		t.Errorf("accent line = %v, want %v", got, titleScheme.accent)
	}
}

func TestSectionSlide_AccentBars(t *testing.T) {
	img := Section(2, "Exploring Features", "1.5 minutes")

	centerY := Height / 2
	if got := img.RGBAAt(104, centerY); got != sectionScheme.accent {
		t.Errorf("left bar = %v", got)
	}
	if got := img.RGBAAt(Width-104, centerY); got != sectionScheme.accent {
		t.Errorf("right bar = %v", got)
	}
	if got := img.RGBAAt(0, 0); got != sectionScheme.bg {
		t.Errorf("background = %v", got)
	}
}

func TestEndSlide(t *testing.T) {
	img := End("demo-toolkit")
	if got := img.RGBAAt(10, 10); got != endScheme.bg {
		t.Errorf("background = %v", got)
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(Title("x", "y"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != Width {
		t.Errorf("decoded width = %d", decoded.Bounds().Dx())
	}
}

func TestWrapTitle(t *testing.T) {
	tests := []struct {
		title string
		line1 string
		line2 string
	}{
		{"Short title", "Short title", ""},
		{"A very long section title that needs to wrap onto two lines", "A very long section title", "that needs to wrap onto two lines"},
		{"Averylongsingleword_that_cannot_be_wrapped_sensibly", "Averylongsingleword_that_cannot_be_wrapped_sensibly", ""},
	}
	for _, tt := range tests {
		line1, line2 := wrapTitle(tt.title)
		if line1 != tt.line1 || line2 != tt.line2 {
			t.Errorf("wrapTitle(%q) = %q, %q; want %q, %q", tt.title, line1, line2, tt.line1, tt.line2)
		}
	}
}

func TestKeys(t *testing.T) {
	if got := TitleKey("abc123"); got != "slides/abc123/slide_000_title.png" {
		t.Errorf("title key = %s", got)
	}
	if got := SectionKey("abc123", 2); got != "slides/abc123/slide_002_section.png" {
		t.Errorf("section key = %s", got)
	}
	if got := EndKey("abc123"); got != "slides/abc123/slide_999_end.png" {
		t.Errorf("end key = %s", got)
	}
}
