package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	// Refresh Token Config
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string
	RefreshTokenCookiePath     string `mapstructure:"REFRESH_TOKEN_COOKIE_PATH"`

	// Payment provider (hosted checkout + customer portal + webhook)
	BillingAPIURL        string `mapstructure:"BILLING_API_URL"`
	BillingAPIKey        string `mapstructure:"BILLING_API_KEY"`
	BillingWebhookSecret string `mapstructure:"BILLING_WEBHOOK_SECRET"`

	// External webhooks (export generation, client reminders, extraction)
	ExportWebhookURL  string `mapstructure:"EXPORT_WEBHOOK_URL"`
	RelanceWebhookURL string `mapstructure:"RELANCE_WEBHOOK_URL"`
	ExtractWebhookURL string `mapstructure:"EXTRACT_WEBHOOK_URL"`

	FrontendBaseURL string `mapstructure:"FRONTEND_BASE_URL"`

	// QueryTimeout bounds every data fetch issued on behalf of a client
	// request or feed session.
	QueryTimeout time.Duration

	// IngestWorkers is the size of the receipt extraction worker pool.
	IngestWorkers int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "finvisor-app")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "rtid")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_PATH", "/api/v1/auth")
	viper.SetDefault("BILLING_API_URL", "")
	viper.SetDefault("BILLING_API_KEY", "")
	viper.SetDefault("BILLING_WEBHOOK_SECRET", "")
	viper.SetDefault("EXPORT_WEBHOOK_URL", "")
	viper.SetDefault("RELANCE_WEBHOOK_URL", "")
	viper.SetDefault("EXTRACT_WEBHOOK_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("QUERY_TIMEOUT", "10s")
	viper.SetDefault("INGEST_WORKERS", 4)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	refreshExpiryStr := viper.GetString("REFRESH_TOKEN_EXPIRY_DURATION")
	refreshExpiryDuration, err := time.ParseDuration(refreshExpiryStr)
	if err != nil {
		refreshExpiryDuration = time.Hour * 24 * 7
		log.Printf("Warning: Invalid value for REFRESH_TOKEN_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", refreshExpiryStr, refreshExpiryDuration.String())
	}
	cfg.RefreshTokenExpiryDuration = refreshExpiryDuration
	cfg.RefreshTokenCookieName = viper.GetString("REFRESH_TOKEN_COOKIE_NAME")
	cfg.RefreshTokenCookiePath = viper.GetString("REFRESH_TOKEN_COOKIE_PATH")

	cfg.BillingAPIURL = viper.GetString("BILLING_API_URL")
	cfg.BillingAPIKey = viper.GetString("BILLING_API_KEY")
	cfg.BillingWebhookSecret = viper.GetString("BILLING_WEBHOOK_SECRET")
	if cfg.BillingAPIURL == "" {
		log.Println("Warning: BILLING_API_URL not set. Checkout and customer portal will not function.")
	}
	if cfg.BillingWebhookSecret == "" {
		log.Println("Warning: BILLING_WEBHOOK_SECRET not set. Billing webhooks will be rejected.")
	}

	cfg.ExportWebhookURL = viper.GetString("EXPORT_WEBHOOK_URL")
	if cfg.ExportWebhookURL == "" {
		log.Println("Warning: EXPORT_WEBHOOK_URL not set. Receipt export will not function.")
	}
	cfg.RelanceWebhookURL = viper.GetString("RELANCE_WEBHOOK_URL")
	if cfg.RelanceWebhookURL == "" {
		log.Println("Warning: RELANCE_WEBHOOK_URL not set. Client reminders will not function.")
	}
	cfg.ExtractWebhookURL = viper.GetString("EXTRACT_WEBHOOK_URL")
	if cfg.ExtractWebhookURL == "" {
		log.Println("Warning: EXTRACT_WEBHOOK_URL not set. Uploaded receipts will stay pending until edited by hand.")
	}

	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")

	queryTimeoutStr := viper.GetString("QUERY_TIMEOUT")
	queryTimeout, err := time.ParseDuration(queryTimeoutStr)
	if err != nil || queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
		log.Printf("Warning: Invalid value for QUERY_TIMEOUT ('%s'). Defaulting to %s.\n", queryTimeoutStr, queryTimeout.String())
	}
	cfg.QueryTimeout = queryTimeout

	cfg.IngestWorkers = viper.GetInt("INGEST_WORKERS")
	if cfg.IngestWorkers <= 0 {
		cfg.IngestWorkers = 4
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	return cfg, nil
}
