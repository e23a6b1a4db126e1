package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Verifier failure policies.
const (
	PolicyFailFast       = "fail-fast"
	PolicyLogAndContinue = "log-and-continue"
)

// Store drivers.
const (
	StoreDynamo = "dynamo"
	StoreMemory = "memory"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort             string
	AppEnv              string
	AllowedOrigins      []string
	TrustedProxies      []string // IPs or CIDRs whose forwarding headers are honored
	OpsJWTPublicKeyPath string // ops routes require a service token when set
	AWSRegion           string
	AWSEndpointURL      string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID      string
	AWSSecretKey        string
	StoreDriver         string
	DynamoTables        DynamoTables
	Verifier            Verifier
	Validation          Validation
	Kafka               Kafka
	SNSRegion           string
	SNSTopicARN         string // run reports are not published when empty
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Customers string
}

// Verifier configures the outbound client for the contact verification service.
type Verifier struct {
	Endpoint      string // no default; requests are refused when empty
	Timeout       time.Duration
	RetryCount    int
	RetryWait     time.Duration
	RetryMaxWait  time.Duration
	RatePerSecond float64
	FailurePolicy string
}

// Validation configures bulk validation runs.
type Validation struct {
	BatchLimit int
	Hostname   string
}

// Kafka configures the engages notification consumer.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:             getEnv("APP_PORT", "3000"),
		AppEnv:              getEnv("APP_ENV", "development"),
		AllowedOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		TrustedProxies:      splitList(getEnv("TRUSTED_PROXIES", "")),
		OpsJWTPublicKeyPath: getEnv("OPS_JWT_PUBLIC_KEY_PATH", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:      getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:        getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StoreDriver:         getEnv("STORE_DRIVER", StoreDynamo),
		DynamoTables: DynamoTables{
			Customers: getEnv("DYNAMO_TABLE_CUSTOMERS", "customers"),
		},
		Verifier: Verifier{
			Endpoint:      strings.TrimRight(getEnv("EMAIL_VERIFIER_ENDPOINT", ""), "/"),
			Timeout:       getEnvDuration("VERIFIER_TIMEOUT", 30*time.Second),
			RetryCount:    getEnvInt("VERIFIER_RETRY_COUNT", 3),
			RetryWait:     getEnvDuration("VERIFIER_RETRY_WAIT", 500*time.Millisecond),
			RetryMaxWait:  getEnvDuration("VERIFIER_RETRY_MAX_WAIT", 5*time.Second),
			RatePerSecond: getEnvFloat("VERIFIER_RATE_PER_SEC", 5),
			FailurePolicy: failurePolicy(getEnv("VERIFIER_FAILURE_POLICY", PolicyFailFast)),
		},
		Validation: Validation{
			BatchLimit: clampBatchLimit(getEnvInt("VALIDATION_BATCH_LIMIT", 1000)),
			Hostname:   getEnv("VALIDATION_HOSTNAME", ""),
		},
		Kafka: Kafka{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			GroupID: getEnv("KAFKA_GROUP_ID", "contact-verifier"),
			Topic:   getEnv("ENGAGES_NOTIFICATION_TOPIC", "engagesNotification"),
		},
		SNSRegion:   getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// clampBatchLimit keeps the batch limit within 1..1000.
func clampBatchLimit(n int) int {
	switch {
	case n < 1:
		return 1
	case n > 1000:
		return 1000
	}
	return n
}

func failurePolicy(p string) string {
	if p == PolicyLogAndContinue {
		return p
	}
	return PolicyFailFast
}
