package config

import "time"

// RHSConfig holds all configuration of the request handling service.
type RHSConfig struct {
	Server ServerConfig    `mapstructure:"server" validate:"required"`
	Kafka  KafkaConfig     `mapstructure:"kafka" validate:"required"`
	MOS    MOSClientConfig `mapstructure:"mos" validate:"required"`
}

// MOSConfig holds all configuration of the market operations service.
type MOSConfig struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Kafka    KafkaConfig    `mapstructure:"kafka" validate:"required"`
	Consumer ConsumerConfig `mapstructure:"consumer" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// KafkaConfig contains broker addresses and topic names shared by both services.
type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers" validate:"required,min=1,dive,hostname_port"`
	CommandTopic string   `mapstructure:"command_topic" validate:"required"`
	ResultTopic  string   `mapstructure:"result_topic" validate:"required"`
	GroupID      string   `mapstructure:"group_id" validate:"required"`
	EnsureTopics bool     `mapstructure:"ensure_topics"`
}

// MOSClientConfig tells RHS where the market operations service lives.
type MOSClientConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// ConsumerConfig controls how MOS retries a command before giving up on it.
type ConsumerConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"gt=0"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" validate:"gte=0"`
}
