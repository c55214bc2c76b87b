package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	JWT       JWTConfig
	Argon2    Argon2Config
	RateLimit RateLimitConfig
	CORS      CORSConfig
	OAuth     OAuthConfig
	Secure    SecureConfig
}

type ServerConfig struct {
	Port string
	// Store selects the project/user store: "mongo" or "memory".
	Store string
}

type MongoConfig struct {
	URL      string
	Database string
}

type JWTConfig struct {
	PrivateKeyPath string
	Issuer         string
	Audience       string
	AccessExpiry   int64 // seconds
}

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

type RateLimitConfig struct {
	// Rate per IP ("100-M" = 100/min). Empty disables.
	RatePerIP string
	// Rate per authenticated user ("300-M"). Empty disables.
	RatePerUser string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type OAuthConfig struct {
	CallbackBaseURL string
	SessionSecret   string
	RedirectURL     string
	Google          OAuthProvider
}

type OAuthProvider struct {
	ClientID     string
	ClientSecret string
}

type SecureConfig struct {
	IsDevelopment bool
}

func Load() (*Config, error) {
	viper.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		viper.SetConfigFile(p)
		_ = viper.ReadInConfig()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:  getEnvOrDefault("PORT", "8080"),
			Store: getEnvOrDefault("STORE", "mongo"),
		},
		Mongo: MongoConfig{
			URL:      getEnvOrDefault("MONGO_URL", "mongodb://localhost:27017"),
			Database: getEnvOrDefault("MONGO_DB", "milo"),
		},
		JWT: JWTConfig{
			PrivateKeyPath: getEnvOrDefault("JWT_PRIVATE_KEY_PATH", ""),
			Issuer:         getEnvOrDefault("JWT_ISSUER", "milo"),
			Audience:       getEnvOrDefault("JWT_AUDIENCE", "milo"),
			AccessExpiry:   viper.GetInt64("JWT_ACCESS_EXPIRY"),
		},
		Argon2: Argon2Config{
			Memory:      uint32(viper.GetInt("ARGON2_MEMORY")),
			Iterations:  uint32(viper.GetInt("ARGON2_ITERATIONS")),
			Parallelism: uint8(viper.GetInt("ARGON2_PARALLELISM")),
		},
		RateLimit: RateLimitConfig{
			RatePerIP:   viper.GetString("RATE_PER_IP"),
			RatePerUser: viper.GetString("RATE_PER_USER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(viper.GetString("CORS_ORIGINS")),
		},
		OAuth: OAuthConfig{
			CallbackBaseURL: getEnvOrDefault("OAUTH_CALLBACK_BASE_URL", "http://localhost:8080"),
			SessionSecret:   viper.GetString("OAUTH_SESSION_SECRET"),
			RedirectURL:     getEnvOrDefault("OAUTH_REDIRECT_URL", "/"),
			Google: OAuthProvider{
				ClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
				ClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
			},
		},
		Secure: SecureConfig{
			IsDevelopment: viper.GetBool("DEV_MODE"),
		},
	}
	if cfg.JWT.AccessExpiry <= 0 {
		cfg.JWT.AccessExpiry = 86400
	}
	if cfg.Argon2.Memory == 0 {
		cfg.Argon2.Memory = 64 * 1024
	}
	if cfg.Argon2.Iterations == 0 {
		cfg.Argon2.Iterations = 3
	}
	if cfg.Argon2.Parallelism == 0 {
		cfg.Argon2.Parallelism = 2
	}
	return cfg, nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadJWTPrivateKey reads the PEM file, if configured.
func (c *Config) LoadJWTPrivateKey() ([]byte, error) {
	if c.JWT.PrivateKeyPath == "" {
		return nil, nil
	}
	return os.ReadFile(c.JWT.PrivateKeyPath)
}
