package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const DefaultTimezone = "Asia/Seoul"

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}
	getEnvDefault := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return fallback
	}
	getEnvInt := func(key string, fallback int) int {
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			return fallback
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("Error: environment variable %s must be an integer, got %q", key, value)
		}
		return n
	}

	tz := getEnvDefault("TIMEZONE", DefaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Fatalf("Error: invalid TIMEZONE %q: %v", tz, err)
	}

	templates := DefaultTemplates()
	for _, key := range TemplateKeys() {
		if id := getEnvDefault("TEMPLATE_"+key, ""); id != "" {
			templates, _ = templates.With(key, id)
		}
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: getEnvDefault("MIGRATIONS_DIR", "./migrations"),
		Port:          getEnv("PORT"),
		Location:      loc,
		AllowedOrigin: getEnvDefault("ALLOWED_ORIGIN", "*"),
		ProjectID:     getEnvDefault("GCP_PROJECT", ""),
		RedisURL:      getEnvDefault("REDIS_URL", ""),
		Turso: TursoConfig{
			PrimaryURL: getEnvDefault("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvDefault("TURSO_AUTH_TOKEN", ""),
		},
		Slack: SlackConfig{
			Token:         getEnvDefault("SLACK_BOT_TOKEN", ""),
			ChannelID:     getEnvDefault("SLACK_CHANNEL_ID", ""),
			SigningSecret: getEnvDefault("SLACK_SIGNING_SECRET", ""),
		},
		Admin: AdminConfig{
			PasswordHash: getEnvDefault("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    getEnv("ADMIN_JWT_SECRET"),
			TokenTTL:     time.Duration(getEnvInt("ADMIN_TOKEN_TTL_HOURS", 12)) * time.Hour,
		},
		Solapi: SolapiConfig{
			APIKey:    getEnvDefault("SOLAPI_API_KEY", ""),
			APISecret: getEnvDefault("SOLAPI_API_SECRET", ""),
			Sender:    getEnvDefault("SOLAPI_SENDER", ""),
			PFID:      getEnvDefault("SOLAPI_PFID", ""),
			BaseURL:   getEnvDefault("SOLAPI_BASE_URL", "https://api.solapi.com"),
		},
		Pricing: PricingConfig{
			DefaultMaxApplicants:        getEnvInt("DEFAULT_MAX_APPLICANTS", 3),
			DefaultMalePrice:            getEnvInt("DEFAULT_MALE_PRICE", 10000),
			DefaultFemalePrice:          getEnvInt("DEFAULT_FEMALE_PRICE", 5000),
			DefaultPublicRoomExtraPrice: getEnvInt("DEFAULT_PUBLIC_ROOM_EXTRA_PRICE", 3000),
			PaymentAmountFirst:          getEnvInt("PAYMENT_AMOUNT_FIRST", 5000),
			PaymentAmountFinal:          getEnvInt("PAYMENT_AMOUNT_FINAL", 10000),
			PaymentLinkFirst:            getEnvDefault("PAYMENT_LINK_FIRST", ""),
			PaymentLinkFinal:            getEnvDefault("PAYMENT_LINK_FINAL", ""),
		},
		Templates: templates,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Error: invalid configuration: %v", err)
	}
	if cfg.Solapi.TestMode() {
		log.Warn("Messaging credentials missing, notifications run in test mode")
	}
	return cfg
}

// Validate checks the invariants Load cannot express through required keys alone.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.DBName == "" && c.Turso.PrimaryURL == "" {
		errs = append(errs, errors.New("either DB_NAME or TURSO_PRIMARY_URL is required"))
	}
	if c.Turso.PrimaryURL != "" && c.Turso.AuthToken == "" {
		errs = append(errs, errors.New("TURSO_AUTH_TOKEN is required with TURSO_PRIMARY_URL"))
	}
	if len(c.Admin.JWTSecret) < 16 {
		errs = append(errs, errors.New("admin JWT secret must be at least 16 characters"))
	}
	if c.Admin.TokenTTL <= 0 {
		errs = append(errs, errors.New("admin token TTL must be positive"))
	}
	if c.Slack.Token != "" && c.Slack.ChannelID == "" {
		errs = append(errs, errors.New("SLACK_CHANNEL_ID is required with SLACK_BOT_TOKEN"))
	}
	p := c.Pricing
	if p.DefaultMaxApplicants < 1 {
		errs = append(errs, fmt.Errorf("default max applicants must be at least 1, got %d", p.DefaultMaxApplicants))
	}
	for name, v := range map[string]int{
		"male price":            p.DefaultMalePrice,
		"female price":          p.DefaultFemalePrice,
		"public room surcharge": p.DefaultPublicRoomExtraPrice,
		"first payment amount":  p.PaymentAmountFirst,
		"final payment amount":  p.PaymentAmountFinal,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if err := c.Templates.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
