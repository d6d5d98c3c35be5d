package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Database  DatabaseConfig  `envconfig:"DB"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	JWT       JWTConfig       `envconfig:"JWT"`
	Auth      AuthConfig      `envconfig:"AUTH"`
	Push      PushConfig      `envconfig:"PUSH"`
	Contact   ContactConfig   `envconfig:"CONTACT"`
	WebSocket WebSocketConfig `envconfig:"WS"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver      string `envconfig:"DRIVER" default:"postgres"`
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        string `envconfig:"PORT" default:"5432"`
	User        string `envconfig:"USER" default:"postgres"`
	Password    string `envconfig:"PASSWORD" default:"postgres"`
	Name        string `envconfig:"NAME" default:"doorbell"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	// SeedHosts registers hosts for the in-memory driver, as "lookupKey:identity" pairs
	SeedHosts map[string]string `envconfig:"SEED_HOSTS"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"ENABLED" default:"false"`
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret string        `envconfig:"ACCESS_SECRET" default:"your-access-secret-change-in-production"`
	AccessExpiry time.Duration `envconfig:"ACCESS_EXPIRY" default:"15m"`
	Issuer       string        `envconfig:"ISSUER" default:"doorbell"`
}

// AuthConfig holds authorization switches
type AuthConfig struct {
	// AllowAnonymousAnnounce lets an unauthenticated socket announce itself as a host (development only)
	AllowAnonymousAnnounce bool `envconfig:"ALLOW_ANONYMOUS_ANNOUNCE" default:"false"`
}

// PushConfig holds push gateway configuration
type PushConfig struct {
	Enabled    bool          `envconfig:"ENABLED" default:"true"`
	URL        string        `envconfig:"URL" default:"https://exp.host/--/api/v2/push/send"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"10s"`
	MaxRetries uint64        `envconfig:"MAX_RETRIES" default:"3"`
}

// ContactConfig holds contact request deadlines and housekeeping intervals
type ContactConfig struct {
	RingDeadline     time.Duration `envconfig:"RING_DEADLINE" default:"30s"`
	MessageDeadline  time.Duration `envconfig:"MESSAGE_DEADLINE" default:"90s"`
	VideoDeadline    time.Duration `envconfig:"VIDEO_DEADLINE" default:"90s"`
	StaleHorizon     time.Duration `envconfig:"STALE_HORIZON" default:"1h"`
	SweepInterval    time.Duration `envconfig:"SWEEP_INTERVAL" default:"15s"`
	ArchiveMinAge    time.Duration `envconfig:"ARCHIVE_MIN_AGE" default:"720h"`
	IdentityCacheTTL time.Duration `envconfig:"IDENTITY_CACHE_TTL" default:"5m"`
}

// WebSocketConfig holds real-time transport tuning
type WebSocketConfig struct {
	SendBuffer     int           `envconfig:"SEND_BUFFER" default:"64"`
	PingInterval   time.Duration `envconfig:"PING_INTERVAL" default:"25s"`
	PongWait       time.Duration `envconfig:"PONG_WAIT" default:"60s"`
	WriteWait      time.Duration `envconfig:"WRITE_WAIT" default:"10s"`
	MaxMessageSize int64         `envconfig:"MAX_MESSAGE_SIZE" default:"65536"`
}

const defaultAccessSecret = "your-access-secret-change-in-production"

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWT.AccessSecret == defaultAccessSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET must be changed in production")
	}

	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want postgres or memory)", c.Database.Driver)
	}

	deadlines := map[string]time.Duration{
		"CONTACT_RING_DEADLINE":    c.Contact.RingDeadline,
		"CONTACT_MESSAGE_DEADLINE": c.Contact.MessageDeadline,
		"CONTACT_VIDEO_DEADLINE":   c.Contact.VideoDeadline,
		"CONTACT_STALE_HORIZON":    c.Contact.StaleHorizon,
		"CONTACT_SWEEP_INTERVAL":   c.Contact.SweepInterval,
	}
	for name, d := range deadlines {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("WS_SEND_BUFFER must be positive")
	}
	if c.WebSocket.PingInterval >= c.WebSocket.PongWait {
		return fmt.Errorf("WS_PING_INTERVAL must be shorter than WS_PONG_WAIT")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddr returns the listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
