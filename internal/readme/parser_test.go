package readme

import (
	"strings"
	"testing"
)

const sampleReadme = `# Demo Toolkit

[![build](https://img.shields.io/badge/build-passing-green)](https://ci.example.com)

A toolkit for building demos.

## Features

- Fast rendering engine
- [Plugin](https://example.com/plugins) system
- Cross-platform support

## Installation

` + "```bash" + `
go install example.com/demo-toolkit@latest
` + "```" + `

## Usage

` + "```bash" + `
demo-toolkit run
` + "```" + `

Run the binary and open the dashboard.
`

func TestParse_FullReadme(t *testing.T) {
	a := Parse(sampleReadme)

	if a.Title != "Demo Toolkit" {
		t.Errorf("title = %q", a.Title)
	}
	if len(a.Features) != 3 {
		t.Fatalf("expected 3 features, got %d: %v", len(a.Features), a.Features)
	}
	if a.Features[1] != "Plugin system" {
		t.Errorf("expected link stripped from feature, got %q", a.Features[1])
	}
	if !strings.Contains(a.Installation, "go install") {
		t.Errorf("installation = %q", a.Installation)
	}
	if !strings.Contains(a.Usage, "demo-toolkit run") {
		t.Errorf("usage = %q", a.Usage)
	}
	if !a.HasDocumentation {
		t.Error("expected HasDocumentation")
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"h1", "# My Project\n\nbody", "My Project"},
		{"setext", "My Project\n==========\n\nbody", "My Project"},
		{"badge in title", "# My Project ![ci](https://x/badge.svg)\n", "My Project"},
		{"link in title", "# [My Project](https://example.com)\n", "My Project"},
		{"missing", "just some text without headings", "Unknown Project"},
		{"empty", "", "Unknown Project"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle(tt.content); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractFeatures_Fallbacks(t *testing.T) {
	t.Run("bullets outside features section", func(t *testing.T) {
		content := "# X\n\n## Stuff\n\n- alpha\n- beta\n"
		got := extractFeatures(content)
		if len(got) != 2 || got[0] != "alpha" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("bold lead-ins", func(t *testing.T) {
		content := "# X\n\n**Fast** - renders quickly\n**Small** - tiny binary\n"
		got := extractFeatures(content)
		if len(got) != 2 || got[0] != "Fast: renders quickly" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("numbered list", func(t *testing.T) {
		content := "# X\n\n1. First thing\n2. Second thing\n"
		got := extractFeatures(content)
		if len(got) != 2 || got[1] != "Second thing" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		if got := extractFeatures("# X\n\nplain prose only"); len(got) != 0 {
			t.Errorf("got %v", got)
		}
	})
}

func TestExtractFeatures_CapsAtTen(t *testing.T) {
	var b strings.Builder
	b.WriteString("## Features\n\n")
	for i := 0; i < 15; i++ {
		b.WriteString("- feature\n")
	}
	if got := extractFeatures(b.String()); len(got) != maxFeatures {
		t.Errorf("expected %d features, got %d", maxFeatures, len(got))
	}
}

func TestExtractSection_LineCaps(t *testing.T) {
	var b strings.Builder
	b.WriteString("## Installation\n\n")
	for i := 0; i < 20; i++ {
		b.WriteString("step\n")
	}
	got := extractSection(b.String(), installHeadings, maxInstallLines)
	if n := len(strings.Split(got, "\n")); n != maxInstallLines {
		t.Errorf("expected %d lines, got %d", maxInstallLines, n)
	}
}

func TestHasDocumentation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"too short", "# A\n## B\n## C\n", false},
		{"headings", "# A\n## B\n### C\n" + strings.Repeat("x", 100), true},
		{"code blocks", "```\ncode\n```\n```\nmore\n```\n" + strings.Repeat("x", 100), true},
		{"links", "[a](x) [b](y) [c](z) " + strings.Repeat("x", 100), true},
		{"long but bare", strings.Repeat("plain text ", 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasDocumentation(tt.content); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
