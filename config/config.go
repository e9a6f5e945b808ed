/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tomoncle/memberquery/database"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from YAML.
type Config struct {
	Profile  string          `yaml:"profile" validate:"required,oneof=local dev test prod"`
	Server   ServerConfig    `yaml:"server"`
	Logging  LoggingConfig   `yaml:"logging"`
	Database database.Config `yaml:"database"`
}

type ServerConfig struct {
	Addr               string        `yaml:"addr" validate:"required"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	ReadTimeout        time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout       time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Default returns the configuration used when no file is given: local
// profile, sqlite storage, seeding enabled.
func Default() *Config {
	return &Config{
		Profile: "local",
		Server: ServerConfig{
			Addr:               ":8080",
			CORSAllowedOrigins: []string{"*"},
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			ShutdownTimeout:    10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Database: database.Config{
			ConnectionConfig:  *database.DefaultConnectionConfig(),
			DataMigrateConfig: database.DataMigrateConfig{EnableMigrateOnStartup: true},
			DataInitConfig:    database.DataInitConfig{AutoInitOnStartup: true},
		},
	}
}

// Load reads path over Default, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APP_PROFILE"); v != "" {
		cfg.Profile = strings.ToLower(v)
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	database.ApplyEnvOverrides(&cfg.Database.ConnectionConfig)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and reports every failing field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// ConfigLoader returns the database section.
func (c *Config) ConfigLoader() *database.Config {
	return &c.Database
}
