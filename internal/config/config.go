package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds generic application settings
type AppConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// DBConfig holds the Postgres connection settings
type DBConfig struct {
	URL string
}

// AuthConfig holds session token settings
type AuthConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

// KafkaConfig holds broker settings for the notification event pipeline
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// FCMConfig holds Firebase Cloud Messaging settings
type FCMConfig struct {
	ServerKey string
	Endpoint  string
}

// TwilioConfig holds Twilio REST API settings
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	Endpoint   string
}

// ChatConfig holds settings for the OpenAI-compatible chat upstream
type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// TracingConfig holds the OTLP collector settings
type TracingConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
}

// Config is the aggregate configuration loaded once in main
type Config struct {
	App     AppConfig
	DB      DBConfig
	Auth    AuthConfig
	Kafka   KafkaConfig
	FCM     FCMConfig
	Twilio  TwilioConfig
	Chat    ChatConfig
	Tracing TracingConfig
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("SECRET_KEY must be set")
	}

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL must be set")
	}

	expiryHours, err := strconv.Atoi(getEnv("AUTH_EXPIRY_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_EXPIRY_HOURS: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownTimeout: 5 * time.Second,
		},
		DB: DBConfig{URL: dbURL},
		Auth: AuthConfig{
			Secret:      secret,
			TokenExpiry: time.Duration(expiryHours) * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{getEnv("KAFKA_BROKER", "localhost:9092")},
			Topic:         getEnv("KAFKA_NOTIFICATION_TOPIC", "souldream.notifications"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "souldream-notifier"),
		},
		FCM: FCMConfig{
			ServerKey: os.Getenv("FCM_SERVER_KEY"),
			Endpoint:  getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
			Endpoint:   getEnv("TWILIO_ENDPOINT", "https://api.twilio.com"),
		},
		Chat: ChatConfig{
			BaseURL: getEnv("CHAT_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			Model:   getEnv("CHAT_MODEL", "qwen/qwq-32b:online"),
		},
		Tracing: TracingConfig{
			Enabled:           getEnv("OTEL_ENABLED", "false") == "true",
			CollectorEndpoint: getEnv("OTEL_COLLECTOR_ENDPOINT", "localhost:4317"),
			ServiceName:       getEnv("OTEL_SERVICE_NAME", "souldream-backend"),
		},
	}
	return cfg, nil
}
