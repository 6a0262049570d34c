package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <github-url>",
	Short: "Analyze a GitHub repository and print recording suggestions",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var statusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show pipeline progress for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var generateCmd = &cobra.Command{
	Use:   "generate <session-id>",
	Short: "Queue demo generation for a fully-uploaded session",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

// apiCall performs one JSON request against the configured API and decodes
// the response into a generic map for display.
func apiCall(method, path string, body interface{}) (map[string]interface{}, error) {
	base := strings.TrimSuffix(viper.GetString("api_url"), "/")
	url := base + path

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%s %s: unreadable response (%d)", method, url, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		if msg, ok := decoded["error"].(string); ok {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("%s %s: HTTP %d", method, url, resp.StatusCode)
	}
	return decoded, nil
}

func printJSON(v interface{}) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to render response")
		return
	}
	fmt.Println(string(encoded))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analysis, err := apiCall(http.MethodPost, "/analyze", map[string]string{"github_url": args[0]})
	if err != nil {
		return err
	}

	// The suggestion endpoint takes the analysis payload as-is.
	plan, err := apiCall(http.MethodPost, "/suggestions", analysis)
	if err != nil {
		return err
	}

	fmt.Printf("Session: %v\n", plan["session_id"])
	fmt.Printf("Project: %v\n\n", plan["project_name"])

	videos, _ := plan["videos"].([]interface{})
	for _, v := range videos {
		video, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Printf("%v. %v (%v)\n", video["sequence_number"], video["title"], video["duration"])
		if steps, ok := video["what_to_record"].([]interface{}); ok {
			for _, step := range steps {
				fmt.Printf("   - %v\n", step)
			}
		}
		fmt.Println()
	}

	if flow, ok := plan["overall_flow"].(string); ok && flow != "" {
		fmt.Printf("Flow: %s\n", flow)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	resp, err := apiCall(http.MethodGet, "/status/"+args[0], nil)
	if err != nil {
		return err
	}
	if data, ok := resp["data"]; ok {
		printJSON(data)
	} else {
		printJSON(resp)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	resp, err := apiCall(http.MethodPost, "/generate", map[string]string{"session_id": args[0]})
	if err != nil {
		return err
	}
	fmt.Printf("Queued: %v\n", resp["message"])
	return nil
}
