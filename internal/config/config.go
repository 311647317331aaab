package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Uploads  UploadsConfig  `mapstructure:"uploads"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// UploadsConfig controls where attachments are written and how they are served.
type UploadsConfig struct {
	// Dir is the filesystem directory uploaded files are written to.
	Dir string `mapstructure:"dir" validate:"required"`
	// URLPrefix is prepended to stored file names in returned references.
	URLPrefix string `mapstructure:"url_prefix" validate:"required,startswith=/,endswith=/"`
	// MaxBytes caps the size of a multipart request body.
	MaxBytes int64 `mapstructure:"max_bytes" validate:"gt=0"`
	// AllowedTypes lists the MIME types accepted for image attachments.
	AllowedTypes []string `mapstructure:"allowed_types" validate:"required,min=1,dive,required"`
	// PruneSuperseded removes replaced or orphaned attachment files.
	PruneSuperseded bool `mapstructure:"prune_superseded"`
}
