package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "hirechat"

var storeDrivers = []string{"memory", "file", "redis", "postgres", "mongo"}

type Config struct {
	HttpPort           int           `json:"http_port" envconfig:"http_port"`
	StoreDriver        string        `json:"store_driver" envconfig:"store_driver"`
	StoreFilePath      string        `json:"store_file_path" envconfig:"store_file_path"`
	StoreFallbackFile  string        `json:"store_fallback_file" envconfig:"store_fallback_file"`
	DbConnString       string        `json:"db_conn_string" envconfig:"db_conn_string"`
	RedisAddr          string        `json:"redis_addr" envconfig:"redis_addr"`
	MongoURI           string        `json:"mongo_uri" envconfig:"mongo_uri"`
	MongoDatabase      string        `json:"mongo_database" envconfig:"mongo_database"`
	WebHookUrl         string        `json:"webhook_url" envconfig:"webhook_url"`
	NotifyMaxRetry     int           `json:"notify_max_retry" envconfig:"notify_max_retry"`
	NotifyWorkers      int           `json:"notify_workers" envconfig:"notify_workers"`
	PollIntervalStr    string        `json:"poll_interval" envconfig:"poll_interval"`
	PollInterval       time.Duration `json:"-" ignored:"true"`
	RoomURLBase        string        `json:"room_url_base" envconfig:"room_url_base"`
	RateLimitPerSecond uint          `json:"rate_limit_per_second" envconfig:"rate_limit_per_second"`
	CorsAllowOrigins   []string      `json:"cors_allow_origins" envconfig:"cors_allow_origins"`
}

func defaultConfig() *Config {
	return &Config{
		HttpPort:        6060,
		StoreDriver:     "file",
		StoreFilePath:   "data/db.json",
		NotifyMaxRetry:  3,
		NotifyWorkers:   2,
		PollIntervalStr: "3s",
	}
}

// ReadConfigJson reads json formatted configuration from the given file
func ReadConfigJson(configFile string) (*Config, error) {
	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if err = json.Unmarshal(content, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfig reads the json file, then lets HIRECHAT_* environment variables
// (optionally from envFile) override it
func LoadConfig(configFile, envFile string) (*Config, error) {
	cfg := defaultConfig()
	if configFile != "" {
		fromFile, err := ReadConfigJson(configFile)
		switch {
		case err == nil:
			cfg = fromFile
		case os.IsNotExist(err):
			log.Printf("config file %s not found, using defaults", configFile)
		default:
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() (err error) {
	if !slices.Contains(storeDrivers, c.StoreDriver) {
		return fmt.Errorf("unknown store_driver %q, expected one of %v", c.StoreDriver, storeDrivers)
	}

	c.PollInterval, err = time.ParseDuration(c.PollIntervalStr)
	if err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	switch c.StoreDriver {
	case "file":
		if c.StoreFilePath == "" {
			return fmt.Errorf("store_file_path is required for the file store")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for the redis store")
		}
	case "postgres":
		if c.DbConnString == "" {
			return fmt.Errorf("db_conn_string is required for the postgres store")
		}
	case "mongo":
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("mongo_uri and mongo_database are required for the mongo store")
		}
	}
	return nil
}
