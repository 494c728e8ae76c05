// Package config loads CLI settings from conduit.yaml, CONDUIT_* environment variables
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	fileName  = "conduit"
	fileType  = "yaml"
	envPrefix = "CONDUIT"
)

// Keys understood by Load. Flags bound through BindFlags use the same names with
// dashes instead of underscores.
const (
	KeyLogLevel      = "log_level"
	KeyManifest      = "manifest"
	KeyListenAddr    = "listen_addr"
	KeyStrict        = "strict"
	KeyRedisAddr     = "redis_addr"
	KeyRedisPassword = "redis_password"
	KeyRedisDB       = "redis_db"
	KeyRedisPrefix   = "redis_prefix"
	KeyTrackerTTL    = "tracker_ttl"
)

// Config is the resolved CLI configuration.
type Config struct {
	LogLevel      string        `mapstructure:"log_level"`
	Manifest      string        `mapstructure:"manifest"`
	ListenAddr    string        `mapstructure:"listen_addr"`
	Strict        bool          `mapstructure:"strict"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	TrackerTTL    time.Duration `mapstructure:"tracker_ttl"`
}

// New returns a viper instance with defaults and environment lookup configured.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyListenAddr, ":8080")
	v.SetDefault(KeyRedisPrefix, "conduit:")
	v.SetDefault(KeyTrackerTTL, 5*time.Minute)

	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every flag of fs whose name matches a key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		errs = append(errs, v.BindPFlag(key, f))
	})
	return errors.Join(errs...)
}

// Load reads file (or conduit.yaml from the working directory when file is empty)
// and decodes the result. A missing default file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
