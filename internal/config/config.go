// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/blinklabs-io/gocsl"
	"github.com/spf13/viper"
)

const EnvPrefix = "GOCSL"

var ErrInvalidNetwork = errors.New("unknown network")

type Config struct {
	Network        string    `mapstructure:"network"`
	ProtocolParams string    `mapstructure:"protocol_params"`
	Log            LogConfig `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the CLI config from configPath, if set, applying GOCSL_ environment overrides on
// top. Nested keys use an underscore in the environment, e.g. GOCSL_LOG_LEVEL.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("network", "preprod")
	v.SetDefault("protocol_params", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// GetNetwork returns the configured network
func (c *Config) GetNetwork() (gocsl.Network, error) {
	network := gocsl.NetworkByName(c.Network)
	if network == gocsl.NetworkInvalid {
		return gocsl.NetworkInvalid, fmt.Errorf("%w: %s", ErrInvalidNetwork, c.Network)
	}
	return network, nil
}

// NewLogger returns a logger writing to w with the configured level and format
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch c.Log.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", c.Log.Format)
	}
}
