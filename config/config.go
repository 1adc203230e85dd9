package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the election server.
type Config struct {
	Port          string        `mapstructure:"port" yaml:"port"`
	DBDriver      string        `mapstructure:"db_driver" yaml:"db_driver"`
	DBDSN         string        `mapstructure:"db_dsn" yaml:"db_dsn"`
	RedisURI      string        `mapstructure:"redis_uri" yaml:"redis_uri"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	JWTSecret     string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
	NotifyTimeout time.Duration `mapstructure:"notify_timeout" yaml:"notify_timeout"`
	CORSOrigins   []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

var defaults = map[string]interface{}{
	"port":           "8080",
	"db_driver":      "sqlite",
	"db_dsn":         "elections.db",
	"redis_uri":      "localhost:6379",
	"redis_password": "",
	"redis_db":       "0",
	"jwt_secret":     "",
	"sweep_interval": "30s",
	"notify_timeout": "2s",
	"cors_origins":   "http://localhost:3000",
}

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found, using environment variables")
	}
}

func GetEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

// Load resolves the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	values := make(map[string]interface{}, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}

	if path := GetEnv("CONFIG_FILE", ""); path != "" {
		fileValues, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}

	for key := range defaults {
		if v := GetEnv(strings.ToUpper(key), ""); v != "" {
			values[key] = v
		}
	}

	return decode(values)
}

func readFile(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	out := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return out, nil
}

func decode(values map[string]interface{}) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(values); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.DBDriver != "mysql" && cfg.DBDriver != "sqlite" {
		return Config{}, fmt.Errorf("unsupported db_driver %q", cfg.DBDriver)
	}
	if cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("sweep_interval must be positive")
	}
	return cfg, nil
}
