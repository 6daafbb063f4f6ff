package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config holds the process-wide settings, loaded once at startup.
 * It is read-only after GetConfig returns, so concurrent reads need no locking.
 */

type Config struct {
	Port string `mapstructure:"PORT"`

	// Inbound webhook verification (default "resend" source)
	SigningSecret   string `mapstructure:"WEBHOOK_SIGNING_SECRET"`
	SignatureHeader string `mapstructure:"WEBHOOK_SIGNATURE_HEADER"`
	TimestampHeader string `mapstructure:"WEBHOOK_TIMESTAMP_HEADER"`
	MaxAgeSeconds   int    `mapstructure:"WEBHOOK_MAX_AGE_SECONDS"`

	// Downstream delivery
	TargetURL        string `mapstructure:"TARGET_WEBHOOK_URL"`
	TargetAuthToken  string `mapstructure:"TARGET_AUTH_TOKEN"`
	TargetAuthHeader string `mapstructure:"TARGET_AUTH_HEADER"`
	MaxRetries       int    `mapstructure:"MAX_RETRIES"`
	RetryDelayMs     int    `mapstructure:"RETRY_DELAY_MS"`

	Debug               bool `mapstructure:"DEBUG"`
	StoreFailedPayloads bool `mapstructure:"STORE_FAILED_PAYLOADS"`

	// Optional sources.yaml with additional inbound sources
	SourcesFile string `mapstructure:"SOURCES_FILE"`

	// Redis (failed-delivery recorder and call-state store)
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Call scheduling collaborators
	CallProviderURL    string `mapstructure:"CALL_PROVIDER_URL"`
	CallProviderAPIKey string `mapstructure:"CALL_PROVIDER_API_KEY"`
	MailerURL          string `mapstructure:"MAILER_URL"`
	MailerAPIKey       string `mapstructure:"MAILER_API_KEY"`
	MailerFrom         string `mapstructure:"MAILER_FROM"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	/* Every key needs a default registered, even an empty one: Unmarshal with
	 * AutomaticEnv only sees keys viper already knows about.
	 */
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("WEBHOOK_SIGNING_SECRET", "")
	viper.SetDefault("TARGET_WEBHOOK_URL", "")
	viper.SetDefault("TARGET_AUTH_TOKEN", "")
	viper.SetDefault("SOURCES_FILE", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("CALL_PROVIDER_URL", "")
	viper.SetDefault("CALL_PROVIDER_API_KEY", "")
	viper.SetDefault("MAILER_URL", "")
	viper.SetDefault("MAILER_API_KEY", "")
	viper.SetDefault("MAILER_FROM", "")
	viper.SetDefault("WEBHOOK_SIGNATURE_HEADER", "resend-signature")
	viper.SetDefault("WEBHOOK_TIMESTAMP_HEADER", "resend-timestamp")
	viper.SetDefault("WEBHOOK_MAX_AGE_SECONDS", 300)
	viper.SetDefault("TARGET_AUTH_HEADER", "Authorization")
	viper.SetDefault("MAX_RETRIES", 3)
	viper.SetDefault("RETRY_DELAY_MS", 1000)
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("STORE_FAILED_PAYLOADS", true)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)

	/* The .env file is optional: every key can come from the environment.
	 * Only a malformed file is a hard error.
	 */
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}

// MaxAge returns the replay-protection window as a duration.
func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeSeconds) * time.Second
}

// RetryDelay returns the base backoff delay as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}
