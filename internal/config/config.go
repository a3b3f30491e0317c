package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SRS      SRSConfig      `mapstructure:"srs" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Study    StudyConfig    `mapstructure:"study" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Origins allowed to call the API from a browser; empty disables CORS headers.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the user store: postgres for shared deployments, sqlite
	// for a single local learner.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url" validate:"required"`
	// MaxOpenConns bounds the connection pool.
	MaxOpenConns int `mapstructure:"max_open_conns" validate:"gte=1"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// GeminiAPIKey may be empty; card generation then reports that the LLM is not configured.
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// RedisConfig configures the lock used to serialize per-user imports across
// processes. An empty URL selects an in-process lock.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// SRSConfig tunes the scheduling algorithm.
type SRSConfig struct {
	DesiredRetention    float64 `mapstructure:"desired_retention" validate:"gt=0,lt=1"`
	MaximumIntervalDays int     `mapstructure:"maximum_interval_days" validate:"gte=1"`
	AgainReviewMinutes  int     `mapstructure:"again_review_minutes" validate:"gte=1"`
}

// TaskConfig sizes the background import workers.
type TaskConfig struct {
	QueueSize   int `mapstructure:"queue_size" validate:"gte=1"`
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
}

// StudyConfig holds study-session defaults.
type StudyConfig struct {
	NewCardsPerLesson       int `mapstructure:"new_cards_per_lesson" validate:"gte=1,lte=100"`
	RolloverIntervalMinutes int `mapstructure:"rollover_interval_minutes" validate:"gte=1"`
	RolloverConcurrency     int `mapstructure:"rollover_concurrency" validate:"gte=1"`
}
