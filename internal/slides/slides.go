// Package slides renders the 1920x1080 PNG transition slides placed between
// clips in the stitched demo: a title slide, one section slide per
// suggestion, and an end slide.
//
// Rendering is pure Go: text is drawn with the embedded bitmap font at 1x and
// scaled up with golang.org/x/image/draw, so no font files ship in the Lambda
// package.
package slides

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Slide dimensions match the standardized video format.
const (
	Width  = 1920
	Height = 1080
)

// maxTitleChars is where section titles wrap onto a second line.
const maxTitleChars = 40

// scheme holds the colors for one slide type.
type scheme struct {
	bg       color.RGBA
	title    color.RGBA
	subtitle color.RGBA
	accent   color.RGBA
}

var (
	titleScheme = scheme{
		bg:       color.RGBA{26, 26, 46, 255},
		title:    color.RGBA{255, 255, 255, 255},
		subtitle: color.RGBA{160, 160, 160, 255},
		accent:   color.RGBA{79, 70, 229, 255},
	}
	sectionScheme = scheme{
		bg:       color.RGBA{15, 23, 42, 255},
		title:    color.RGBA{255, 255, 255, 255},
		subtitle: color.RGBA{203, 213, 225, 255},
		accent:   color.RGBA{59, 130, 246, 255},
	}
	endScheme = scheme{
		bg:       color.RGBA{30, 27, 75, 255},
		title:    color.RGBA{255, 255, 255, 255},
		subtitle: color.RGBA{196, 181, 253, 255},
		accent:   color.RGBA{139, 92, 246, 255},
	}
)

// S3 key layout. Numeric prefixes make a lexical sort of the slides/ prefix
// match playback order.
func TitleKey(sessionID string) string {
	return fmt.Sprintf("slides/%s/slide_000_title.png", sessionID)
}

func SectionKey(sessionID string, sequenceNumber int) string {
	return fmt.Sprintf("slides/%s/slide_%03d_section.png", sessionID, sequenceNumber)
}

func EndKey(sessionID string) string {
	return fmt.Sprintf("slides/%s/slide_999_end.png", sessionID)
}

// Title renders the opening slide with the project name and owner.
func Title(projectName, owner string) *image.RGBA {
	img := newSlide(titleScheme.bg)
	centerY := Height / 2

	drawCenteredText(img, projectName, centerY-100, 8, titleScheme.title)
	drawCenteredText(img, "by "+owner, centerY+20, 4, titleScheme.subtitle)
	drawCenteredText(img, "Demo Video", Height-120, 3, titleScheme.accent)

	// Accent line under the project name.
	fillRect(img, (Width-200)/2, centerY-10, 200, 4, titleScheme.accent)

	return img
}

// Section renders the transition slide shown before one clip.
func Section(sequenceNumber int, title, duration string) *image.RGBA {
	img := newSlide(sectionScheme.bg)
	centerY := Height / 2

	drawCenteredText(img, fmt.Sprintf("Part %d", sequenceNumber), centerY-140, 3, sectionScheme.accent)

	line1, line2 := wrapTitle(title)
	if line2 != "" {
		drawCenteredText(img, line1, centerY-60, 6, sectionScheme.title)
		drawCenteredText(img, line2, centerY+20, 6, sectionScheme.title)
	} else {
		drawCenteredText(img, line1, centerY-40, 6, sectionScheme.title)
	}

	if duration == "" {
		duration = "N/A"
	}
	drawCenteredText(img, "Duration: "+duration, centerY+100, 3, sectionScheme.subtitle)

	// Accent bars on both edges.
	fillRect(img, 100, centerY-50, 8, 100, sectionScheme.accent)
	fillRect(img, Width-108, centerY-50, 8, 100, sectionScheme.accent)

	return img
}

// End renders the closing slide.
func End(projectName string) *image.RGBA {
	img := newSlide(endScheme.bg)
	centerY := Height / 2

	drawCenteredText(img, "Thank You!", centerY-60, 8, endScheme.title)
	drawCenteredText(img, "Check out "+projectName+" on GitHub", centerY+50, 3, endScheme.subtitle)

	return img
}

// EncodePNG serializes a rendered slide.
func EncodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode slide: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapTitle splits long titles at the midpoint word boundary.
func wrapTitle(title string) (string, string) {
	if len(title) <= maxTitleChars {
		return title, ""
	}
	words := strings.Fields(title)
	if len(words) < 2 {
		return title, ""
	}
	mid := len(words) / 2
	return strings.Join(words[:mid], " "), strings.Join(words[mid:], " ")
}

func newSlide(bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

func fillRect(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	draw.Draw(img, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, draw.Src)
}

// drawCenteredText renders text with the bitmap font at 1x, then scales it by
// the given factor and centers it horizontally at y.
func drawCenteredText(img *image.RGBA, text string, y, scale int, c color.RGBA) {
	if text == "" {
		return
	}

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Metrics().Height.Ceil()

	small := image.NewRGBA(image.Rect(0, 0, textWidth, textHeight))
	drawer := font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)

	scaledW := textWidth * scale
	scaledH := textHeight * scale
	x := (Width - scaledW) / 2
	dstRect := image.Rect(x, y, x+scaledW, y+scaledH)

	draw.NearestNeighbor.Scale(img, dstRect, small, small.Bounds(), draw.Over, nil)
}
