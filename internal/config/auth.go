package config

import "time"

// Auth configures the API-key check applied to mutating routes. An empty key
// disables the check entirely, matching the first iterations of the app that
// shipped without authentication.
type Auth struct {
	APIKey string `env:"API_KEY"`
}

// RateLimit configures the per-client sliding window applied at the HTTP
// boundary. Limit 0 disables rate limiting.
type RateLimit struct {
	Limit  int           `env:"RATE_LIMIT" envDefault:"0"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}
