package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

var (
	EnvPath string = "."
)

// DevSigningKey is only accepted outside production.
const DevSigningKey = "finternet-auth-service-dev-secret-key"

type Config struct {
	Env                  string        `mapstructure:"ENV"`
	ServiceName          string        `mapstructure:"SERVICE_NAME"`
	ServerPort           int           `mapstructure:"SERVER_PORT"`
	SigningKey           string        `mapstructure:"SIGNING_KEY"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	CORSAllowedOrigins   []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
	SettlementDelay      time.Duration `mapstructure:"SETTLEMENT_DELAY"`
	RatesProviderName    string        `mapstructure:"RATES_PROVIDER_NAME"`
	CoinGeckoBaseUrl     string        `mapstructure:"COINGECKO_BASE_URL"`
	CoinGeckoAccessKey   string        `mapstructure:"COINGECKO_ACCESS_KEY"`
	CoinRankingBaseUrl   string        `mapstructure:"COINRANKING_BASE_URL"`
	CoinRankingAccessKey string        `mapstructure:"COINRANKING_ACCESS_KEY"`
	RatesCacheTTL        time.Duration `mapstructure:"RATES_CACHE_TTL"`
	IdempotencyTTL       time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	RedisHost            string        `mapstructure:"REDIS_HOST"`
	RedisPort            string        `mapstructure:"REDIS_PORT"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	AWSRegion            string        `mapstructure:"AWS_REGION"`
	AWSAccessKeyID       string        `mapstructure:"AWS_ACCESS_KEY"`
	AWSSecretAccessKey   string        `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	SettlementTopicARN   string        `mapstructure:"SETTLEMENT_TOPIC_ARN"`
	Papertrail           string        `mapstructure:"PAPERTRAIL"`
	PapertrailAppName    string        `mapstructure:"PAPERTRAIL_APP_NAME"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig reads path/.env when present and lets the environment override
// every key. defaultPort is used when SERVER_PORT is not set, so each binary
// keeps its own well known port.
func LoadConfig(path string, defaultPort int) (*Config, error) {
	if path == "" {
		path = "."
	}

	// Create a new Viper instance to avoid global state
	v := viper.New()
	setDefaults(v, defaultPort)

	v.SetEnvPrefix("")
	v.AutomaticEnv()

	// older deployments still export JWT_SECRET and PORT
	_ = v.BindEnv("SIGNING_KEY", "SIGNING_KEY", "JWT_SECRET")
	_ = v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Unable to read config file: %v", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper, defaultPort int) {
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_PORT", defaultPort)
	v.SetDefault("SIGNING_KEY", DevSigningKey)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SETTLEMENT_DELAY", 2*time.Second)
	v.SetDefault("RATES_PROVIDER_NAME", "static")
	v.SetDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3")
	v.SetDefault("COINRANKING_BASE_URL", "https://api.coinranking.com/v2")
	v.SetDefault("RATES_CACHE_TTL", 5*time.Minute)
	v.SetDefault("IDEMPOTENCY_TTL", 24*time.Hour)
	v.SetDefault("REDIS_PORT", "6379")

	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range []string{
		"SERVICE_NAME", "COINGECKO_ACCESS_KEY", "COINRANKING_ACCESS_KEY", "REDIS_HOST", "REDIS_PASSWORD",
		"AWS_REGION", "AWS_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY", "SETTLEMENT_TOPIC_ARN",
		"PAPERTRAIL", "PAPERTRAIL_APP_NAME",
	} {
		v.SetDefault(key, "")
	}
}

func validateConfig(config *Config) error {
	if config.ServerPort <= 0 {
		return fmt.Errorf("server port must be specified")
	}

	if config.SigningKey == "" {
		return fmt.Errorf("signing key must be provided")
	}

	if config.IsProduction() && config.SigningKey == DevSigningKey {
		return fmt.Errorf("the development signing key cannot be used in production")
	}

	if config.SettlementDelay < 0 {
		return fmt.Errorf("settlement delay cannot be negative")
	}

	return nil
}

// Masking sensitive information for logging
func (c *Config) Redact() Config {
	redacted := *c
	redacted.SigningKey = "****"
	redacted.CoinGeckoAccessKey = "****"
	redacted.CoinRankingAccessKey = "****"
	redacted.AWSSecretAccessKey = "****"
	redacted.RedisPassword = "****"
	return redacted
}
