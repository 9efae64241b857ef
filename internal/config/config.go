package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the storefront server.
// Following 12-factor app principles, all config is loaded from
// environment variables.
type Config struct {
	Server   ServerConfig
	Checkout CheckoutConfig
	Account  AccountConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type CheckoutConfig struct {
	// ProcessingDelay simulates the payment gateway round trip.
	ProcessingDelay time.Duration
	// TaxRatePercent is the IVA rate (whole percent) added on invoices.
	TaxRatePercent int
	// InvoiceDir receives plain-text invoice copies; empty disables export.
	InvoiceDir string
}

type AccountConfig struct {
	// ProcessingDelay simulates the registration/login verification step.
	ProcessingDelay time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Checkout: CheckoutConfig{
			ProcessingDelay: time.Duration(getEnvAsInt("CHECKOUT_DELAY_MS", 1500)) * time.Millisecond,
			TaxRatePercent:  getEnvAsInt("TAX_RATE_PERCENT", 13),
			InvoiceDir:      getEnv("INVOICE_DIR", "facturas"),
		},
		Account: AccountConfig{
			ProcessingDelay: time.Duration(getEnvAsInt("ACCOUNT_DELAY_MS", 1500)) * time.Millisecond,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Checkout.TaxRatePercent < 0 || c.Checkout.TaxRatePercent > 100 {
		return fmt.Errorf("TAX_RATE_PERCENT must be between 0 and 100")
	}

	if c.Checkout.ProcessingDelay < 0 || c.Account.ProcessingDelay < 0 {
		return fmt.Errorf("processing delays must not be negative")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
