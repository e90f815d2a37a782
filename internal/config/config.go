package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Mux       MuxConfig
	Deepgram  DeepgramConfig
	Groq      GroqConfig
	Shotstack ShotstackConfig
	Pipeline  PipelineConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	EvaluatePerMin int
	ProducePerHour int
	UploadPerHour  int
}

type MuxConfig struct {
	TokenID       string
	TokenSecret   string
	BaseURL       string
	StreamBaseURL string
	WebhookSecret string
}

type DeepgramConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type ShotstackConfig struct {
	APIKey  string
	BaseURL string
	Env     string
}

// PipelineConfig tunes the waiting behavior of the pipeline workers.
type PipelineConfig struct {
	ProbeAttempts      int // rendition existence probe retries
	ProbeBackoff       int // seconds, doubled per attempt
	RenderPollInterval int // seconds
	RenderMaxWait      int // minutes
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("DATABASE_URL")
	readSecret("JWT_SECRET")
	readSecret("MUX_TOKEN_SECRET")
	readSecret("MUX_WEBHOOK_SECRET")
	readSecret("DEEPGRAM_API_KEY")
	readSecret("GROQ_API_KEY")
	readSecret("SHOTSTACK_API_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("ratelimit.evaluate_per_min", "RATELIMIT_EVALUATE_PER_MIN")
	_ = viper.BindEnv("ratelimit.produce_per_hour", "RATELIMIT_PRODUCE_PER_HOUR")
	_ = viper.BindEnv("ratelimit.upload_per_hour", "RATELIMIT_UPLOAD_PER_HOUR")
	_ = viper.BindEnv("mux.token_id", "MUX_TOKEN_ID")
	_ = viper.BindEnv("mux.token_secret", "MUX_TOKEN_SECRET")
	_ = viper.BindEnv("mux.base_url", "MUX_BASE_URL")
	_ = viper.BindEnv("mux.stream_base_url", "MUX_STREAM_BASE_URL")
	_ = viper.BindEnv("mux.webhook_secret", "MUX_WEBHOOK_SECRET")
	_ = viper.BindEnv("deepgram.api_key", "DEEPGRAM_API_KEY")
	_ = viper.BindEnv("deepgram.base_url", "DEEPGRAM_BASE_URL")
	_ = viper.BindEnv("deepgram.model", "DEEPGRAM_MODEL")
	_ = viper.BindEnv("groq.api_key", "GROQ_API_KEY")
	_ = viper.BindEnv("groq.base_url", "GROQ_BASE_URL")
	_ = viper.BindEnv("groq.model", "GROQ_MODEL")
	_ = viper.BindEnv("shotstack.api_key", "SHOTSTACK_API_KEY")
	_ = viper.BindEnv("shotstack.base_url", "SHOTSTACK_BASE_URL")
	_ = viper.BindEnv("shotstack.env", "SHOTSTACK_ENV")
	_ = viper.BindEnv("pipeline.probe_attempts", "PIPELINE_PROBE_ATTEMPTS")
	_ = viper.BindEnv("pipeline.probe_backoff", "PIPELINE_PROBE_BACKOFF")
	_ = viper.BindEnv("pipeline.render_poll_interval", "PIPELINE_RENDER_POLL_INTERVAL")
	_ = viper.BindEnv("pipeline.render_max_wait", "PIPELINE_RENDER_MAX_WAIT")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("database.url", "")
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("ratelimit.evaluate_per_min", 20)
	viper.SetDefault("ratelimit.produce_per_hour", 10)
	viper.SetDefault("ratelimit.upload_per_hour", 60)

	// Mux defaults
	viper.SetDefault("mux.base_url", "https://api.mux.com")
	viper.SetDefault("mux.stream_base_url", "https://stream.mux.com")

	// Deepgram defaults
	viper.SetDefault("deepgram.base_url", "https://api.deepgram.com")
	viper.SetDefault("deepgram.model", "nova-2")

	// Groq defaults
	viper.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("groq.model", "llama-3.3-70b-versatile")

	// Shotstack defaults
	viper.SetDefault("shotstack.base_url", "https://api.shotstack.io")
	viper.SetDefault("shotstack.env", "v1")

	// Pipeline defaults
	viper.SetDefault("pipeline.probe_attempts", 5)
	viper.SetDefault("pipeline.probe_backoff", 2)
	viper.SetDefault("pipeline.render_poll_interval", 5)
	viper.SetDefault("pipeline.render_max_wait", 15)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			URL: viper.GetString("database.url"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		RateLimit: RateLimitConfig{
			EvaluatePerMin: viper.GetInt("ratelimit.evaluate_per_min"),
			ProducePerHour: viper.GetInt("ratelimit.produce_per_hour"),
			UploadPerHour:  viper.GetInt("ratelimit.upload_per_hour"),
		},
		Mux: MuxConfig{
			TokenID:       viper.GetString("mux.token_id"),
			TokenSecret:   viper.GetString("mux.token_secret"),
			BaseURL:       viper.GetString("mux.base_url"),
			StreamBaseURL: viper.GetString("mux.stream_base_url"),
			WebhookSecret: viper.GetString("mux.webhook_secret"),
		},
		Deepgram: DeepgramConfig{
			APIKey:  viper.GetString("deepgram.api_key"),
			BaseURL: viper.GetString("deepgram.base_url"),
			Model:   viper.GetString("deepgram.model"),
		},
		Groq: GroqConfig{
			APIKey:  viper.GetString("groq.api_key"),
			BaseURL: viper.GetString("groq.base_url"),
			Model:   viper.GetString("groq.model"),
		},
		Shotstack: ShotstackConfig{
			APIKey:  viper.GetString("shotstack.api_key"),
			BaseURL: viper.GetString("shotstack.base_url"),
			Env:     viper.GetString("shotstack.env"),
		},
		Pipeline: PipelineConfig{
			ProbeAttempts:      viper.GetInt("pipeline.probe_attempts"),
			ProbeBackoff:       viper.GetInt("pipeline.probe_backoff"),
			RenderPollInterval: viper.GetInt("pipeline.render_poll_interval"),
			RenderMaxWait:      viper.GetInt("pipeline.render_max_wait"),
		},
	}

	return cfg, nil
}
