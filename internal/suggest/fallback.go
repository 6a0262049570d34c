package suggest

import (
	"fmt"

	"github.com/fpang/ai-demo-builder/internal/store"
)

// Fallback returns two generic recording suggestions. Used whenever Gemini is
// unavailable or returns something unusable.
func Fallback(projectName string) *SuggestionSet {
	if projectName == "" {
		projectName = "the project"
	}
	return &SuggestionSet{
		Videos: []store.Suggestion{
			{
				SequenceNumber: 1,
				Title:          fmt.Sprintf("Introduction to %s", projectName),
				Duration:       "2 minutes",
				VideoType:      "installation",
				WhatToRecord: []string{
					fmt.Sprintf("Show the %s GitHub repository page", projectName),
					"Navigate to the README section",
					"Highlight the key features mentioned",
					"Show the installation instructions",
				},
				NarrationScript: fmt.Sprintf("Welcome to %s. Let's start by understanding what this project does and how to get it set up.", projectName),
				KeyHighlights:   []string{"Project overview", "Main features", "Getting started"},
				TechnicalSetup: &store.Setup{
					Prerequisites: []string{"Web browser", "GitHub account (optional)"},
					Environment:   "GitHub website",
					SampleData:    "None required",
				},
				ExpectedOutcome:  "Viewers understand what the project does and basic setup",
				TransitionToNext: "Now that we know what it is, let's see it in action...",
			},
			{
				SequenceNumber: 2,
				Title:          fmt.Sprintf("Exploring %s Features", projectName),
				Duration:       "1.5 minutes",
				VideoType:      "feature_demo",
				WhatToRecord: []string{
					"Open the project in a code editor or terminal",
					"Show the project structure and main files",
					"Demonstrate a basic use case or example",
					"Highlight the key functionality",
				},
				NarrationScript: fmt.Sprintf("Let's dive into %s and see how to actually use it.", projectName),
				KeyHighlights:   []string{"Architecture", "Key components", "Practical use"},
				TechnicalSetup: &store.Setup{
					Prerequisites: []string{"Project installed/cloned", "Code editor or terminal"},
					Environment:   "Local development environment",
					SampleData:    "Basic example from documentation",
				},
				ExpectedOutcome: "Viewers can follow along and run a basic example",
			},
		},
		OverallFlow:            "Introduction to the project followed by practical demonstration",
		TotalEstimatedDuration: "3.5 minutes",
		ProjectSpecificTips: []string{
			"Keep the demo focused on the most important features",
			"Use real examples rather than hypothetical scenarios",
			"Speak clearly and at a moderate pace",
		},
	}
}
