package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"        validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database"      validate:"required"`
	Auth          AuthConfig          `mapstructure:"auth"          validate:"required"`
	Notifications NotificationsConfig `mapstructure:"notifications" validate:"required"`
	Realtime      RealtimeConfig      `mapstructure:"realtime"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	// A single "*" allows any origin.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the storage backend. "memory" keeps everything in process
	// and is meant for local development and tests.
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres memory"`
	URL          string `mapstructure:"url"            validate:"required_if=Driver postgres"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// NotificationsConfig controls how notification events are dispatched
// after a task mutation commits.
type NotificationsConfig struct {
	Mode        string `mapstructure:"mode"         validate:"required,oneof=sync async"`
	WorkerCount int    `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize   int    `mapstructure:"queue_size"   validate:"gte=1"`
}

// RealtimeConfig contains settings for the websocket push channel.
type RealtimeConfig struct {
	// RedisURL enables cross-instance delivery when set.
	RedisURL     string `mapstructure:"redis_url"     validate:"omitempty,url"`
	RedisChannel string `mapstructure:"redis_channel"`
	// LegacyEvents re-enables the deprecated "taskUpdated" push.
	LegacyEvents bool `mapstructure:"legacy_events"`
	SendBuffer   int  `mapstructure:"send_buffer" validate:"gte=1"`
}
