package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	AI       AIConfig       `mapstructure:"ai"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// Attributes stamped on the auth_token cookie. CookieSecure should be
	// true whenever the app is served over TLS.
	CookieDomain string `mapstructure:"cookie_domain"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AIConfig carries the per-provider credentials for the chat completion
// backends. Keys are intentionally NOT validated at startup: a missing key
// only fails the request that needs that provider, with a named error from
// the adapter (e.g. "GEMINI_API_KEY is not set").
type AIConfig struct {
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	GeminiModel      string `mapstructure:"gemini_model"`
	OpenRouterAPIKey string `mapstructure:"openrouter_api_key"`
	MistralAPIKey    string `mapstructure:"mistral_api_key"`
	GroqAPIKey       string `mapstructure:"groq_api_key"`
	CerebrasAPIKey   string `mapstructure:"cerebras_api_key"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Nested keys map to env vars with the dot replaced, so
	// database.uri -> DATABASE_URI, jwt.secret -> JWT_SECRET.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// The provider keys are conventionally exported without a prefix
	// (GEMINI_API_KEY, GROQ_API_KEY, ...), so bind them explicitly.
	viper.BindEnv("ai.gemini_api_key", "GEMINI_API_KEY")
	viper.BindEnv("ai.gemini_model", "GEMINI_MODEL")
	viper.BindEnv("ai.openrouter_api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("ai.mistral_api_key", "MISTRAL_API_KEY")
	viper.BindEnv("ai.groq_api_key", "GROQ_API_KEY")
	viper.BindEnv("ai.cerebras_api_key", "CEREBRAS_API_KEY")
	viper.BindEnv("database.uri", "MONGODB_URI", "DATABASE_URI")
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "coach_app")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("ai.gemini_model", "gemini-2.0-flash")

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No config file is fine; env vars and defaults cover everything.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
