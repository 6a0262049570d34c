// Package lambdaboot provides shared Lambda cold-start bootstrap logic.
//
// Every Lambda in the pipeline needs some subset of: AWS config, S3, DynamoDB,
// SQS, SNS, the Lambda invoke client, SSM secret fetch, and startup logging.
// This package extracts the common init patterns so each Lambda's init() is a
// short composition of helpers.
package lambdaboot

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-demo-builder/internal/cache"
	"github.com/fpang/ai-demo-builder/internal/logging"
	"github.com/fpang/ai-demo-builder/internal/store"
)

// AWSClients holds the core AWS SDK clients used across Lambdas.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
	Lambda *awslambda.Client
}

// S3Clients holds S3 client, presigner, and bucket name.
type S3Clients struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
		Lambda: awslambda.NewFromConfig(cfg),
	}
}

// InitS3 creates an S3 client, presigner, and reads the bucket name from the
// S3_BUCKET environment variable with the given fallback.
func InitS3(cfg aws.Config, defaultBucket string) S3Clients {
	client := s3.NewFromConfig(cfg)
	bucket := logging.EnvOrDefault("S3_BUCKET", defaultBucket)
	return S3Clients{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
	}
}

// InitSessions creates the DynamoDB session store from DYNAMODB_TABLE with
// the given fallback table name.
func InitSessions(cfg aws.Config, defaultTable string) *store.DynamoStore {
	tableName := logging.EnvOrDefault("DYNAMODB_TABLE", defaultTable)
	return store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName)
}

// InitCache creates the DynamoDB cache store from CACHE_TABLE with the given
// fallback table name. The cache shares a client with the session store when
// one is available.
func InitCache(client *dynamodb.Client, defaultTable string) *cache.Store {
	tableName := logging.EnvOrDefault("CACHE_TABLE", defaultTable)
	return cache.New(client, tableName)
}

// InitSQS creates an SQS client and reads the queue URL. Fatals if
// SQS_QUEUE_URL is empty — functions that take this dependency cannot run
// without a queue.
func InitSQS(cfg aws.Config) (*sqs.Client, string) {
	queueURL := os.Getenv("SQS_QUEUE_URL")
	if queueURL == "" {
		log.Fatal().Msg("SQS_QUEUE_URL is required")
	}
	return sqs.NewFromConfig(cfg), queueURL
}

// InitSNS creates an SNS client and reads the topic ARN. Returns an empty ARN
// (with a warning) when SNS_TOPIC_ARN is not configured; SNS delivery is an
// optional notification channel.
func InitSNS(cfg aws.Config) (*sns.Client, string) {
	topicARN := os.Getenv("SNS_TOPIC_ARN")
	if topicARN == "" {
		log.Warn().Msg("SNS_TOPIC_ARN not set — SNS notifications disabled")
	}
	return sns.NewFromConfig(cfg), topicARN
}

// LoadGeminiKey fetches the Gemini API key from SSM Parameter Store if not
// already set via GEMINI_API_KEY env var. Fatals on error.
func LoadGeminiKey(ssmClient *ssm.Client) {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return
	}
	paramName := logging.EnvOrDefault("SSM_GEMINI_KEY_PARAM", "/ai-demo-builder/prod/gemini-api-key")
	ssmStart := time.Now()
	result, err := ssmClient.GetParameter(context.Background(), &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		log.Fatal().Err(err).Str("param", paramName).Msg("Failed to read Gemini API key from SSM")
	}
	os.Setenv("GEMINI_API_KEY", *result.Parameter.Value)
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Gemini API key loaded from SSM")
}

// LoadGitHubToken fetches the GitHub token from SSM Parameter Store if not
// already set via GITHUB_TOKEN. Non-fatal: unauthenticated GitHub API access
// works for public repositories at a lower rate limit.
func LoadGitHubToken(ssmClient *ssm.Client) string {
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return tok
	}
	paramName := logging.EnvOrDefault("SSM_GITHUB_TOKEN_PARAM", "/ai-demo-builder/prod/github-token")
	ssmStart := time.Now()
	result, err := ssmClient.GetParameter(context.Background(), &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		log.Warn().Err(err).Str("param", paramName).Msg("GitHub token not found in SSM — using unauthenticated API access")
		return ""
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("GitHub token loaded from SSM")
	return *result.Parameter.Value
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
