package main

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"server"`
	Poll struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"poll"`
}

// LoadConfig reads ./configs/chatctl.yaml when present; CHATCTL_SERVER_URL
// style variables override it
func LoadConfig(v *viper.Viper) (*Config, error) {
	v.AddConfigPath("./configs")
	v.SetConfigName("chatctl")
	v.SetConfigType("yaml")

	v.SetDefault("server.url", "http://localhost:6060")
	v.SetDefault("poll.interval", "3s")

	v.SetEnvPrefix("chatctl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
