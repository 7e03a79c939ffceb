package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
}

// AuthConfig contains the settings used to validate bearer tokens issued by
// the account service.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`

	// ModelName is the fast model used for geocoding, matching and standard ideas.
	ModelName string `mapstructure:"model_name" validate:"required"`

	// DeepDiveModelName is the higher-capability model used when a caller asks
	// for a deep-dive idea report.
	DeepDiveModelName string `mapstructure:"deep_dive_model_name" validate:"required"`

	MaxRetries            int `mapstructure:"max_retries"             validate:"gte=0,lte=5"`
	RetryDelaySeconds     int `mapstructure:"retry_delay_seconds"     validate:"gte=1"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gt=0"`

	// MaxIdeaDemands caps how many demands are summarized into an idea prompt.
	MaxIdeaDemands int `mapstructure:"max_idea_demands" validate:"gt=0,lte=50"`

	// MaxMatchPosts caps how many demands and rentals are each sent to the matchmaker.
	MaxMatchPosts int `mapstructure:"max_match_posts" validate:"gt=0,lte=200"`
}

// RedisConfig configures the optional geocode cache. An empty Address disables it.
type RedisConfig struct {
	Address           string `mapstructure:"address"             validate:"omitempty,hostname_port"`
	Password          string `mapstructure:"password"`
	DB                int    `mapstructure:"db"                  validate:"gte=0"`
	GeocodeTTLMinutes int    `mapstructure:"geocode_ttl_minutes" validate:"gte=0"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}
