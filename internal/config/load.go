package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Environment variable prefixes for each service.
const (
	RHSEnvPrefix = "RHS"
	MOSEnvPrefix = "MOS"
)

// LoadRHS loads the RHS configuration from environment variables and an
// optional config file. Environment variables take precedence over values
// from the config file. An empty configFile means no file is read.
func LoadRHS(configFile string) (*RHSConfig, error) {
	v := newViper(RHSEnvPrefix)

	setServerDefaults(v, 8080)
	setKafkaDefaults(v, "rhs")
	v.SetDefault("mos.timeout", "5s")
	// No default: must come from the environment or the config file.
	if err := v.BindEnv("mos.base_url"); err != nil {
		return nil, fmt.Errorf("failed to bind mos.base_url: %w", err)
	}

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg RHSConfig
	if err := unmarshalAndValidate(v, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadMOS loads the MOS configuration the same way LoadRHS does.
func LoadMOS(configFile string) (*MOSConfig, error) {
	v := newViper(MOSEnvPrefix)

	setServerDefaults(v, 3000)
	setKafkaDefaults(v, "mos")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("consumer.max_attempts", 3)
	v.SetDefault("consumer.retry_backoff", "500ms")
	if err := v.BindEnv("database.url"); err != nil {
		return nil, fmt.Errorf("failed to bind database.url: %w", err)
	}

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg MOSConfig
	if err := unmarshalAndValidate(v, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper(prefix string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setServerDefaults(v *viper.Viper, port int) {
	v.SetDefault("server.port", port)
	v.SetDefault("server.log_level", "info")
}

func setKafkaDefaults(v *viper.Viper, groupID string) {
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.command_topic", "market-changes")
	v.SetDefault("kafka.result_topic", "market-change-results")
	v.SetDefault("kafka.group_id", groupID)
	v.SetDefault("kafka.ensure_topics", true)
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
	return nil
}

func unmarshalAndValidate(v *viper.Viper, cfg any) error {
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, fe := range validationErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
