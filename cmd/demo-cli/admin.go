package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cleanupMode  string
	logsFunction string
	logsSince    time.Duration
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <session-id>",
	Short: "Clean up a session's storage via the cleanup Lambda",
	Args:  cobra.ExactArgs(1),
	RunE:  runCleanup,
}

var logsCmd = &cobra.Command{
	Use:   "logs <session-id>",
	Short: "Tail CloudWatch logs for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

var scheduleCmd = &cobra.Command{
	Use:       "schedule <enable|disable>",
	Short:     "Toggle the scheduled cleanup EventBridge rule",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"enable", "disable"},
	RunE:      runSchedule,
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupMode, "mode", "complete", "cleanup mode: complete or intermediate")
	logsCmd.Flags().StringVar(&logsFunction, "function", "", "limit to one Lambda (e.g. video-stitcher); default searches the whole pipeline")
	logsCmd.Flags().DurationVar(&logsSince, "since", time.Hour, "how far back to search")
}

func awsConfig(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region := viper.GetString("region"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	cfg, err := awsConfig(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{
		"session_id": args[0],
		"mode":       cleanupMode,
	})
	if err != nil {
		return err
	}

	functionName := viper.GetString("cleanup_function")
	result, err := awslambda.NewFromConfig(cfg).Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: &functionName,
		Payload:      payload,
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", functionName, err)
	}
	if result.FunctionError != nil {
		return fmt.Errorf("cleanup failed: %s: %s", *result.FunctionError, string(result.Payload))
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(result.Payload, &decoded); err == nil {
		printJSON(decoded)
	}
	return nil
}

// logEvent pairs a log line with its source function for merged output.
type logEvent struct {
	timestamp int64
	function  string
	message   string
}

func runLogs(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := awsConfig(ctx)
	if err != nil {
		return err
	}
	client := cloudwatchlogs.NewFromConfig(cfg)

	prefix := viper.GetString("log_group_prefix")
	if logsFunction != "" {
		prefix += logsFunction
	}

	groups, err := logGroups(ctx, client, prefix)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return fmt.Errorf("no log groups match prefix %q", prefix)
	}

	startTime := time.Now().Add(-logsSince).UnixMilli()
	pattern := fmt.Sprintf("%q", args[0])

	var events []logEvent
	for _, group := range groups {
		shortName := strings.TrimPrefix(group, viper.GetString("log_group_prefix"))

		paginator := cloudwatchlogs.NewFilterLogEventsPaginator(client, &cloudwatchlogs.FilterLogEventsInput{
			LogGroupName:  &group,
			FilterPattern: &pattern,
			StartTime:     &startTime,
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				log.Warn().Err(err).Str("logGroup", group).Msg("Log search failed")
				break
			}
			for _, ev := range page.Events {
				events = append(events, logEvent{
					timestamp: aws.ToInt64(ev.Timestamp),
					function:  shortName,
					message:   strings.TrimRight(aws.ToString(ev.Message), "\n"),
				})
			}
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].timestamp < events[j].timestamp })
	for _, ev := range events {
		ts := time.UnixMilli(ev.timestamp).UTC().Format("15:04:05.000")
		fmt.Printf("%s  %-20s %s\n", ts, ev.function, ev.message)
	}
	fmt.Printf("\n%d events across %d log groups\n", len(events), len(groups))
	return nil
}

func logGroups(ctx context.Context, client *cloudwatchlogs.Client, prefix string) ([]string, error) {
	var groups []string
	paginator := cloudwatchlogs.NewDescribeLogGroupsPaginator(client, &cloudwatchlogs.DescribeLogGroupsInput{
		LogGroupNamePrefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list log groups: %w", err)
		}
		for _, group := range page.LogGroups {
			groups = append(groups, aws.ToString(group.LogGroupName))
		}
	}
	return groups, nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	cfg, err := awsConfig(ctx)
	if err != nil {
		return err
	}
	client := eventbridge.NewFromConfig(cfg)
	ruleName := viper.GetString("schedule_rule")

	switch args[0] {
	case "enable":
		if _, err := client.EnableRule(ctx, &eventbridge.EnableRuleInput{Name: &ruleName}); err != nil {
			return fmt.Errorf("enable rule %s: %w", ruleName, err)
		}
	case "disable":
		if _, err := client.DisableRule(ctx, &eventbridge.DisableRuleInput{Name: &ruleName}); err != nil {
			return fmt.Errorf("disable rule %s: %w", ruleName, err)
		}
	default:
		return fmt.Errorf("unknown action %q — use enable or disable", args[0])
	}

	rule, err := client.DescribeRule(ctx, &eventbridge.DescribeRuleInput{Name: &ruleName})
	if err != nil {
		return fmt.Errorf("describe rule %s: %w", ruleName, err)
	}
	fmt.Printf("Rule %s is now %s\n", ruleName, rule.State)
	return nil
}
