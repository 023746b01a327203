package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and
// flags. Payment provider credentials are typed, optional blocks: an empty
// credential puts the matching adapter into simulated mode.
type Config struct {
	RunAddress  string
	DatabaseURI string
	JWTSecret   string

	Currency    string
	TaxRate     float64
	ServiceFee  float64
	DeliveryFee float64

	Card   CardProvider
	Wallet WalletProvider

	NotifyAMQPURL  string
	NotifyExchange string

	ProviderTimeout time.Duration
	AbandonAfter    time.Duration
	SweepInterval   time.Duration
	SweepBatchSize  int
	ShutdownTimeout time.Duration
}

// CardProvider holds card processor credentials.
type CardProvider struct {
	APIKey        string
	BaseURL       string
	WebhookSecret string
}

// WalletProvider holds wallet processor credentials.
type WalletProvider struct {
	ClientID      string
	Secret        string
	BaseURL       string
	WebhookSecret string
}

const (
	defaultRunAddress      = ":8080"
	defaultJWTSecret       = "change-me-in-production"
	defaultCurrency        = "USD"
	defaultTaxRate         = 0.10
	defaultServiceFee      = 2.00
	defaultDeliveryFee     = 5.00
	defaultCardBaseURL     = "https://api.cardprocessor.example/v1"
	defaultWalletBaseURL   = "https://api.walletprocessor.example/v2"
	defaultNotifyExchange  = "order.events"
	defaultProviderTimeout = 10 * time.Second
	defaultAbandonAfter    = 15 * time.Minute
	defaultSweepInterval   = 3 * time.Minute
	defaultSweepBatchSize  = 50
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from flags and environment variables. A local
// .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:  getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI: getString(lookup, "DATABASE_URI", ""),
		JWTSecret:   getString(lookup, "JWT_SECRET", defaultJWTSecret),
		Currency:    getString(lookup, "CURRENCY", defaultCurrency),
		TaxRate:     getFloat(lookup, "TAX_RATE", defaultTaxRate),
		ServiceFee:  getFloat(lookup, "SERVICE_FEE", defaultServiceFee),
		DeliveryFee: getFloat(lookup, "DELIVERY_FEE", defaultDeliveryFee),
		Card: CardProvider{
			APIKey:        getString(lookup, "CARD_API_KEY", ""),
			BaseURL:       getString(lookup, "CARD_API_BASE", defaultCardBaseURL),
			WebhookSecret: getString(lookup, "CARD_WEBHOOK_SECRET", ""),
		},
		Wallet: WalletProvider{
			ClientID:      getString(lookup, "WALLET_CLIENT_ID", ""),
			Secret:        getString(lookup, "WALLET_SECRET", ""),
			BaseURL:       getString(lookup, "WALLET_API_BASE", defaultWalletBaseURL),
			WebhookSecret: getString(lookup, "WALLET_WEBHOOK_SECRET", ""),
		},
		NotifyAMQPURL:   getString(lookup, "NOTIFY_AMQP_URL", ""),
		NotifyExchange:  getString(lookup, "NOTIFY_EXCHANGE", defaultNotifyExchange),
		ProviderTimeout: getDuration(lookup, "PROVIDER_TIMEOUT", defaultProviderTimeout),
		AbandonAfter:    getDuration(lookup, "ABANDON_AFTER", defaultAbandonAfter),
		SweepInterval:   getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		SweepBatchSize:  getInt(lookup, "SWEEP_BATCH_SIZE", defaultSweepBatchSize),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("resto", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		abandonAfterStr    = cfg.AbandonAfter.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for verifying auth tokens")
	fs.StringVar(&cfg.NotifyAMQPURL, "amqp", cfg.NotifyAMQPURL, "AMQP broker URL for notifications")
	fs.StringVar(&abandonAfterStr, "abandon-after", abandonAfterStr, "Age after which unpaid orders are cancelled")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between sweeper runs")
	fs.IntVar(&cfg.SweepBatchSize, "sweep-batch", cfg.SweepBatchSize, "Maximum orders per sweep run")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.AbandonAfter, err = time.ParseDuration(abandonAfterStr); err != nil {
		return nil, fmt.Errorf("invalid abandon-after: %w", err)
	}

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = string(content)
	}

	if keyFile, ok := lookup("CARD_API_KEY_FILE"); ok && keyFile != "" {
		content, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read card api key file: %w", err)
		}
		cfg.Card.APIKey = string(content)
	}

	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, fmt.Errorf("tax rate must be within [0, 1)")
	}

	if cfg.ServiceFee < 0 || cfg.DeliveryFee < 0 {
		return nil, fmt.Errorf("fees must be non-negative")
	}

	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}

	if cfg.AbandonAfter <= 0 {
		cfg.AbandonAfter = defaultAbandonAfter
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
