// Package main provides the demo-builder admin CLI.
//
// Wraps the deployed pipeline's API for day-to-day use (analyze, status,
// generate) and adds operator commands that go straight to AWS: on-demand
// cleanup, CloudWatch log tailing filtered by session, and toggling the
// scheduled cleanup rule.
//
// Configuration comes from ~/.demo-builder.yaml with DEMO_* environment
// overrides:
//
//	api_url: https://demos.example.com/api
//	region: us-east-1
//	cleanup_function: ai-demo-cleanup
//	schedule_rule: ai-demo-cleanup-schedule
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fpang/ai-demo-builder/internal/logging"
)

// requestTimeout bounds every API call the CLI makes.
const requestTimeout = 30 * time.Second

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "demo-cli",
	Short: "Admin CLI for the AI demo builder pipeline",
	Long: `demo-cli drives the AI demo builder pipeline from the terminal.

User commands call the deployed HTTP API; operator commands (cleanup, logs,
schedule) talk to AWS directly and need credentials with the matching
permissions.

Examples:
  demo-cli analyze https://github.com/gin-gonic/gin
  demo-cli status 1a2b3c4d
  demo-cli generate 1a2b3c4d
  demo-cli cleanup 1a2b3c4d --mode intermediate
  demo-cli logs 1a2b3c4d --function video-stitcher
  demo-cli schedule disable`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
		initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.demo-builder.yaml)")
	rootCmd.AddCommand(analyzeCmd, statusCmd, generateCmd, cleanupCmd, logsCmd, scheduleCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".demo-builder")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DEMO")
	viper.AutomaticEnv()

	viper.SetDefault("api_url", "http://localhost:8080/api")
	viper.SetDefault("cleanup_function", "ai-demo-cleanup")
	viper.SetDefault("schedule_rule", "ai-demo-cleanup-schedule")
	viper.SetDefault("log_group_prefix", "/aws/lambda/ai-demo-")

	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("Config loaded")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
