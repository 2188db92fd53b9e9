package config

import (
	"log/slog"
	"net"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const defaultConnectionTimeout = 10 * time.Second

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type BalancerConfig struct {
	Algorithm         string `mapstructure:"algorithm"`
	ConnectionTimeout string `mapstructure:"connection_timeout"`
}

// TargetGroupConfig declares one named pool: a route prefix served by a
// comma-delimited target specification, with optional per-hostname
// weights. A nil weights map means weighted selection is disabled for
// the group, which is different from an empty map.
type TargetGroupConfig struct {
	Name    string         `mapstructure:"name"`
	Route   string         `mapstructure:"route"`
	Targets string         `mapstructure:"targets"`
	Weights map[string]int `mapstructure:"weights"`
}

type Config struct {
	Server       ServerConfig        `mapstructure:"server"`
	Logging      LoggingConfig       `mapstructure:"logging"`
	Balancer     BalancerConfig      `mapstructure:"balancer"`
	TargetGroups []TargetGroupConfig `mapstructure:"target_groups"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("logging.level", LogLevelInfo)
	viper.SetDefault("balancer.algorithm", "ROUND_ROBIN")
	viper.SetDefault("balancer.connection_timeout", "10s")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Error("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// LoadBalancingAlgorithm returns the configured algorithm name. The
// balancer treats unrecognized names as round robin, so this is a free
// string rather than a validated enum.
func (c *Config) LoadBalancingAlgorithm() string {
	return c.Balancer.Algorithm
}

// ConnectionTimeout returns the per-forward upstream timeout. The
// duration string is validated at load time; a missing value falls
// back to the default.
func (c *Config) ConnectionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Balancer.ConnectionTimeout)
	if err != nil {
		return defaultConnectionTimeout
	}

	return d
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Balancer,
			validation.Required,
			validation.By(func(value interface{}) error {
				bc, ok := value.(BalancerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a BalancerConfig")
				}
				return validation.ValidateStruct(&bc,
					validation.Field(&bc.ConnectionTimeout,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.TargetGroups,
			validation.Required,
			validation.Length(1, 0),
			validation.By(validateGroupNamesUnique),
			validation.Each(validation.By(validateTargetGroup)),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.ParseDuration(durationStr); err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	return nil
}

func validateGroupNamesUnique(value interface{}) error {
	groups, ok := value.([]TargetGroupConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a list of target groups")
	}

	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if seen[g.Name] {
			return validation.NewError("validation_duplicate_group", "target group names must be unique")
		}
		seen[g.Name] = true
	}

	return nil
}

func validateTargetGroup(value interface{}) error {
	group, ok := value.(TargetGroupConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a TargetGroupConfig")
	}

	if group.Name == "" {
		return validation.NewError("validation_empty_name", "target group name cannot be empty")
	}

	if !strings.HasPrefix(group.Route, "/") {
		return validation.NewError("validation_invalid_route", "route must be an absolute path")
	}

	if strings.TrimSpace(group.Targets) == "" {
		return validation.NewError("validation_empty_targets", "targets specification cannot be empty")
	}

	for hostname, weight := range group.Weights {
		if weight < 1 {
			return validation.NewError("validation_invalid_weight", "weight for "+hostname+" must be at least 1")
		}
	}

	return nil
}
