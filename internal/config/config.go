// Package config reads server settings from environment variables.
package config

import "os"

// Config is everything the server binary needs at startup.
type Config struct {
	// HTTPAddr is the listen address.
	HTTPAddr string
	// RedisAddr selects the Redis store when set; empty means the
	// in-memory store (development mode).
	RedisAddr string
	// AMQPURL enables order event publishing when set.
	AMQPURL string
	// AdminWebhookURL enables contact notifications when set.
	AdminWebhookURL string

	// Bootstrap admin identity.
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	// SeedDemoData loads the demo catalog on an empty store.
	SeedDemoData bool
}

// Load reads the configuration, applying defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		AMQPURL:         getEnv("AMQP_URL", ""),
		AdminWebhookURL: getEnv("ADMIN_WEBHOOK_URL", ""),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@localhost"),
		SeedDemoData:    getEnv("SEED_DEMO_DATA", "") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
