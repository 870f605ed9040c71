//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package config loads the bot configuration from a .env file, the
// environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"trpc.group/trpc-go/trpc-attendance-bot/airtable"
	"trpc.group/trpc-go/trpc-attendance-bot/telemetry"
)

// EnvPrefix prefixes the environment variables of keys without a fixed
// binding, e.g. ATTENDANCE_QUEUE_INTERVAL.
const EnvPrefix = "ATTENDANCE"

// Config is the full bot configuration.
type Config struct {
	BotToken        string           `mapstructure:"bot_token"`
	Airtable        airtable.Config  `mapstructure:"airtable"`
	AllowedUsers    []string         `mapstructure:"allowed_users"`
	SecondaryChatID int64            `mapstructure:"secondary_chat_id"`
	Queue           QueueConfig      `mapstructure:"queue"`
	CallTimeout     time.Duration    `mapstructure:"call_timeout"`
	Workers         int              `mapstructure:"workers"`
	Locale          string           `mapstructure:"locale"`
	Ops             OpsConfig        `mapstructure:"ops"`
	Log             LogConfig        `mapstructure:"log"`
	Telemetry       telemetry.Config `mapstructure:"telemetry"`
}

// QueueConfig paces the submission queue.
type QueueConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	LineInterval time.Duration `mapstructure:"line_interval"`
}

// OpsConfig configures the ops HTTP server. An empty address disables it.
type OpsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys onto the variable names used by existing
// deployments.
var envBindings = map[string]string{
	"bot_token":               "BOT_API_KEY",
	"airtable.api_key":        "AIRTABLE_API_KEY",
	"airtable.base_id":        "AIRTABLE_BASE_ID",
	"airtable.people_table":   "AIRTABLE_TABLE_ID",
	"airtable.places_table":   "AIRTABLE_PLACES_TABLE_ID",
	"airtable.messages_table": "AIRTABLE_SMS_ID",
	"airtable.records_table":  "AIRTABLE_RECORDS_ID",
	"airtable.ledger_table":   "AIRTABLE_PNL_ID",
	"allowed_users":           "ALLOWED_USERS",
	"secondary_chat_id":       "SECONDARY_CHAT_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("airtable.base_url", "https://api.airtable.com/v0")
	v.SetDefault("queue.interval", 5*time.Second)
	v.SetDefault("queue.line_interval", time.Second)
	v.SetDefault("call_timeout", 10*time.Second)
	v.SetDefault("workers", 16)
	v.SetDefault("locale", "ru")
	v.SetDefault("ops.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.protocol", "grpc")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "")
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then the environment. Later sources win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.AllowedUsers = normalizeUsers(cfg.AllowedUsers)
	return &cfg, nil
}

// normalizeUsers trims whitespace and a leading "@" and drops empties.
func normalizeUsers(users []string) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		u = strings.TrimPrefix(strings.TrimSpace(u), "@")
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	require := func(v, name string) {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}
	require(c.BotToken, "BOT_API_KEY")
	require(c.Airtable.APIKey, "AIRTABLE_API_KEY")
	require(c.Airtable.BaseID, "AIRTABLE_BASE_ID")
	require(c.Airtable.PeopleTable, "AIRTABLE_TABLE_ID")
	require(c.Airtable.PlacesTable, "AIRTABLE_PLACES_TABLE_ID")
	require(c.Airtable.MessagesTable, "AIRTABLE_SMS_ID")
	require(c.Airtable.LedgerTable, "AIRTABLE_PNL_ID")
	if len(c.AllowedUsers) == 0 {
		errs = append(errs, errors.New("allowed_users is empty"))
	}
	if c.Queue.Interval < 0 || c.Queue.LineInterval < 0 {
		errs = append(errs, errors.New("queue intervals must not be negative"))
	}
	if c.CallTimeout <= 0 {
		errs = append(errs, errors.New("call_timeout must be positive"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale %q: %w", c.Locale, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Language returns the parsed locale, falling back to Russian.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Russian
	}
	return tag
}
