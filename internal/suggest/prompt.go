package suggest

import (
	"fmt"
	"strings"
)

// maxReadmeLength bounds the README excerpt embedded in the prompt. Longer
// content adds tokens without improving the plan.
const maxReadmeLength = 3000

const systemPrompt = `You are an expert at creating detailed video demo scripts for GitHub projects of ANY type. You return only valid JSON, never prose.`

// BuildPrompt renders the suggestion prompt for one repository. The prompt
// adapts by project type and demands strict JSON matching SuggestionSet.
func BuildPrompt(in *Input) string {
	readme := in.Readme
	if len(readme) > maxReadmeLength {
		readme = readme[:maxReadmeLength] + "..."
	}

	var b strings.Builder

	fmt.Fprintf(&b, `PROJECT INFORMATION:
- Name: %s
- Owner: %s
- Stars: %d
- Language: %s
- Type: %s
- Complexity: %s
- Description: %s

TECHNICAL DETAILS:
- Tech Stack: %s
- Key Features:
%s

PARSED README FEATURES:
%s

README CONTENT:
%s

`,
		in.ProjectName, in.Owner, in.Stars, orUnknown(in.Language),
		orUnknown(in.ProjectType), orUnknown(in.Complexity), in.Description,
		listOrNone(in.TechStack, ", "), bulleted(in.KeyFeatures),
		bulleted(in.ReadmeFeatures), readme)

	b.WriteString(`IMPORTANT: Analyze the project type and adapt your suggestions accordingly:

**For WEB APPLICATIONS:** Focus on UI interactions, user flows, feature demonstrations
**For LIBRARIES/FRAMEWORKS:** Focus on code examples, API usage, integration steps
**For CLI TOOLS:** Focus on terminal commands, output examples, use cases
**For MACHINE LEARNING MODELS:** Focus on running inference, showing results, explaining model behavior
**For MOBILE APPS:** Focus on app screens, gestures, feature walkthroughs
**For DATA PROJECTS:** Focus on data loading, transformations, visualizations
**For BACKEND APIs:** Focus on endpoint testing, request/response examples, Postman/cURL demos
**For DESKTOP APPS:** Focus on UI features, workflows, settings

`)

	fmt.Fprintf(&b, `TASK:
Create %d video suggestions that will be recorded by a user and merged together into a final demo video.

For EACH video, provide SPECIFIC, ACTIONABLE recording instructions adapted to this project's type.

Respond with this exact JSON shape:
{
    "videos": [
        {
            "sequence_number": 1,
            "title": "string - Clear title indicating what will be shown",
            "duration": "string - e.g., '1.5 minutes'",
            "video_type": "string - installation|feature_demo|code_example|use_case|advanced_feature",
            "what_to_record": [
                "Step 1: Exact action to perform",
                "Step 2: Next action",
                "Step 3: What to show/highlight"
            ],
            "narration_script": "string - What to say during recording (optional voiceover)",
            "key_highlights": [
                "Important feature/concept to emphasize",
                "Another highlight"
            ],
            "technical_setup": {
                "prerequisites": ["Software needed", "Accounts required"],
                "environment": "Description of environment",
                "sample_data": "Any sample data/inputs needed"
            },
            "expected_outcome": "What the viewer should see by the end",
            "transition_to_next": "How this connects to next video"
        }
    ],
    "overall_flow": "Brief description of the complete story these videos tell",
    "total_estimated_duration": "X minutes",
    "project_specific_tips": [
        "Recording tip specific to this type of project",
        "Another relevant tip"
    ]
}

CRITICAL INSTRUCTIONS:
1. **Adapt to project type** - Don't give web app instructions for a CLI tool!
2. **Be ultra-specific** - Every command, every URL, every click should be spelled out
3. **Think chronologically** - Video 1 should set up context, later videos build on it
4. **Make it filmable** - Every instruction should be screen-recordable
5. **Include actual values** - Use realistic example data, URLs, commands
6. **Logical progression** - Each video should naturally lead to the next

Return ONLY valid JSON, nothing else.`, videoCount(in.SuggestedSegments))

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func listOrNone(items []string, sep string) string {
	if len(items) == 0 {
		return "Not Specified"
	}
	return strings.Join(items, sep)
}

func bulleted(items []string) string {
	if len(items) == 0 {
		return "- Not Specified"
	}
	return "- " + strings.Join(items, "\n- ")
}
