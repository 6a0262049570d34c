// Package readme extracts structure from README markdown: the project title,
// feature bullets, installation and usage sections, and a documentation
// quality signal. The output feeds the project analyzer and the AI prompt.
package readme

import (
	"regexp"
	"strings"
)

// Maximum items and lines carried into the analysis. Longer content adds
// prompt tokens without adding signal.
const (
	maxFeatures         = 10
	maxInstallLines     = 10
	maxUsageLines       = 15
	minDocumentedLength = 100
)

// Analysis is the structured result of parsing a README.
type Analysis struct {
	Title            string   `json:"title"`
	Features         []string `json:"features"`
	Installation     string   `json:"installation"`
	Usage            string   `json:"usage"`
	HasDocumentation bool     `json:"has_documentation"`
}

var (
	linkPattern     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	imagePattern    = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	headingPattern  = regexp.MustCompile(`(?m)^#{1,6}\s`)
	fencePattern    = regexp.MustCompile("(?m)^```")
	boldLeadPattern = regexp.MustCompile(`^\*\*([^*]+)\*\*\s*[-:–]?\s*(.*)$`)
	numberedPattern = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

// Parse analyzes README markdown content.
func Parse(content string) *Analysis {
	return &Analysis{
		Title:            extractTitle(content),
		Features:         extractFeatures(content),
		Installation:     extractSection(content, installHeadings, maxInstallLines),
		Usage:            extractSection(content, usageHeadings, maxUsageLines),
		HasDocumentation: hasDocumentation(content),
	}
}

// cleanInline strips images (badges) first, then unwraps links to their text.
func cleanInline(s string) string {
	s = imagePattern.ReplaceAllString(s, "")
	s = linkPattern.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// extractTitle returns the first H1, either "# Title" or a setext title
// underlined with ===. Falls back to "Unknown Project".
func extractTitle(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			if title := cleanInline(strings.TrimPrefix(trimmed, "# ")); title != "" {
				return title
			}
		}
		// Setext style: a text line followed by a === underline.
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if trimmed != "" && !strings.HasPrefix(trimmed, "#") &&
				len(next) >= 3 && strings.Trim(next, "=") == "" {
				if title := cleanInline(trimmed); title != "" {
					return title
				}
			}
		}
	}
	return "Unknown Project"
}

var featureHeadings = []string{"features", "what it does", "highlights", "capabilities"}

var installHeadings = []string{"installation", "install", "setup", "getting started"}

var usageHeadings = []string{"usage", "example", "examples", "how to use", "quick start"}

// headingMatches reports whether a markdown heading line names one of the
// wanted sections.
func headingMatches(line string, wanted []string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(strings.TrimLeft(trimmed, "# ")))
	for _, w := range wanted {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// sectionLines returns the lines between a matching heading and the next
// heading of any level.
func sectionLines(content string, wanted []string) []string {
	lines := strings.Split(content, "\n")
	var section []string
	inSection := false
	for _, line := range lines {
		if headingMatches(line, wanted) {
			inSection = true
			continue
		}
		if inSection {
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				break
			}
			section = append(section, line)
		}
	}
	return section
}

func bulletText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(trimmed, marker) {
			text := cleanInline(strings.TrimPrefix(trimmed, marker))
			text = strings.Trim(text, "*_` ")
			if text != "" {
				return text, true
			}
		}
	}
	return "", false
}

// extractFeatures collects bullets under a Features-style heading, with
// fallbacks when the README has no such section: any bullet list, then bold
// lead-in lines, then numbered lists.
func extractFeatures(content string) []string {
	var features []string

	// Primary: bullets in an explicit features section.
	for _, line := range sectionLines(content, featureHeadings) {
		if text, ok := bulletText(line); ok {
			features = append(features, text)
			if len(features) >= maxFeatures {
				return features
			}
		}
	}
	if len(features) > 0 {
		return features
	}

	lines := strings.Split(content, "\n")

	// Fallback 1: any bullet list anywhere in the document.
	for _, line := range lines {
		if text, ok := bulletText(line); ok {
			features = append(features, text)
			if len(features) >= maxFeatures {
				return features
			}
		}
	}
	if len(features) > 0 {
		return features
	}

	// Fallback 2: bold lead-in lines ("**Fast** - renders in ms").
	for _, line := range lines {
		if m := boldLeadPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			text := strings.TrimSpace(m[1])
			if m[2] != "" {
				text += ": " + cleanInline(m[2])
			}
			features = append(features, text)
			if len(features) >= maxFeatures {
				return features
			}
		}
	}
	if len(features) > 0 {
		return features
	}

	// Fallback 3: numbered list items.
	for _, line := range lines {
		if m := numberedPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if text := cleanInline(m[1]); text != "" {
				features = append(features, text)
				if len(features) >= maxFeatures {
					return features
				}
			}
		}
	}
	return features
}

// extractSection returns the first maxLines non-empty-trimmed lines of the
// named section, joined back together.
func extractSection(content string, wanted []string, maxLines int) string {
	section := sectionLines(content, wanted)

	// Trim leading blank lines, then cap the line count.
	start := 0
	for start < len(section) && strings.TrimSpace(section[start]) == "" {
		start++
	}
	section = section[start:]
	if len(section) > maxLines {
		section = section[:maxLines]
	}
	return strings.TrimRight(strings.Join(section, "\n"), "\n ")
}

// hasDocumentation applies a quality heuristic: a README counts as real
// documentation when it has some length plus either several headings, a
// couple of code examples, or several links.
func hasDocumentation(content string) bool {
	if len(content) < minDocumentedLength {
		return false
	}
	headings := len(headingPattern.FindAllString(content, -1))
	codeBlocks := len(fencePattern.FindAllString(content, -1)) / 2
	links := len(linkPattern.FindAllString(content, -1))
	return headings >= 3 || codeBlocks >= 2 || links >= 3
}
