package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel    int         `env:"LOG_LEVEL" envDefault:"0"`
	HTTP        HTTP        `envPrefix:"HTTP_"`
	Store       Store       `envPrefix:"STORE_"`
	Database    Database    `envPrefix:"DATABASE_"`
	Auth        Auth        `envPrefix:"AUTH_"`
	AI          AI          `envPrefix:"AI_"`
	Gemini      Gemini      `envPrefix:"GEMINI_"`
	Editor      Editor      `envPrefix:"PERSIST_"`
	Entitlement Entitlement `envPrefix:"ENTITLEMENT_"`
	Checkout    Checkout
	Export      Export      `envPrefix:"CHROME_"`
	Storage     Storage     `envPrefix:"MINIO_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port string `env:"PORT" envDefault:"3000"`
}

// Store contains the device key/value store location. ":memory:" keeps
// everything in process.
type Store struct {
	Path string `env:"PATH" envDefault:"resume-render.db"`
}

// Database contains the connection string of the remote entitlement store.
// Empty disables remote entitlements.
type Database struct {
	DSN string `env:"DSN"`
}

// Auth contains identity token parameters.
type Auth struct {
	JWTSecret string `env:"JWT_SECRET" envDefault:"devsecret"`
}

// AI selects the summary provider.
type AI struct {
	Provider   string `env:"PROVIDER" envDefault:"service"`
	ServiceURL string `env:"SERVICE_URL" envDefault:"http://localhost:8001"`
}

// Gemini contains Gemini API parameters, used when AI.Provider is "gemini".
type Gemini struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"gemini-2.5-flash"`
}

// Editor contains editor persistence parameters.
type Editor struct {
	Debounce time.Duration `env:"DEBOUNCE" envDefault:"500ms"`
}

// Entitlement contains remote entitlement retry parameters.
type Entitlement struct {
	RetryBase time.Duration `env:"RETRY_BASE" envDefault:"1s"`
}

// Checkout contains payment gateway parameters.
type Checkout struct {
	KeyID     string `env:"RAZORPAY_KEY_ID"`
	KeySecret string `env:"RAZORPAY_KEY_SECRET"`
	Currency  string `env:"CHECKOUT_CURRENCY" envDefault:"INR"`
}

// Export contains headless browser parameters. Empty path uses the default
// lookup of the browser binary.
type Export struct {
	Path string `env:"PATH"`
}

// Storage contains object storage parameters of the export archive. Empty
// endpoint disables archiving.
type Storage struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"resume-exports"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
