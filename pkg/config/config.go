/*-
 * Copyright 2025 Carver Automation Corporation.
 *
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

// Package config pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SBP"

var (
	errInvalidDuration = errors.New("invalid duration")
	errInvalidConfig   = errors.New("invalid configuration")
)

// LoadFile is a generic helper that loads a JSON file from path into
// the struct pointed to by dst.
func LoadFile(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	return nil
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	if v, ok := cfg.(Validator); ok {
		return v.Validate()
	}

	return nil
}

// LoadAndValidate loads a configuration file and validates it if possible.
func LoadAndValidate(path string, cfg interface{}) error {
	if err := LoadFile(path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}

// LoadCore builds the core configuration: defaults, then the JSON file at
// path (if any), then SBP_* environment overrides, then validation.
func LoadCore(path string) (*CoreConfig, error) {
	cfg := DefaultCoreConfig()

	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	ApplyEnv(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadAgent builds the reference agent configuration the same way as
// LoadCore, reading SBP_AGENT_* overrides.
func LoadAgent(path string) (*AgentConfig, error) {
	cfg := DefaultAgentConfig()

	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix + "_AGENT")
	v.AutomaticEnv()

	for _, key := range []string{"id", "core_url", "auth_token", "targets", "log_level", "privileged"} {
		_ = v.BindEnv(key)
	}

	setString(v, "id", &cfg.AgentID)
	setString(v, "core_url", &cfg.CoreURL)
	setString(v, "auth_token", &cfg.AuthToken)
	setString(v, "log_level", &cfg.LogLevel)

	if v.IsSet("targets") {
		cfg.Targets = strings.Split(v.GetString("targets"), ",")
	}

	if v.IsSet("privileged") {
		cfg.Privileged = v.GetBool("privileged")
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyEnv overlays SBP_* environment variables (and a local .env file)
// onto cfg. Only variables that are set take effect.
func ApplyEnv(cfg *CoreConfig) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"listen_addr", "auth_token", "allowed_origins", "db_path", "log_level", "log_pretty",
		"liveness_window", "offline_sweep_interval", "health_interval", "anomaly_interval",
		"mqtt.broker", "mqtt.client_id", "mqtt.topic_prefix",
		"ranging.processing_offset_ms", "ranging.max_distance_m", "ranging.privileged",
	} {
		_ = v.BindEnv(key)
	}

	setString(v, "listen_addr", &cfg.ListenAddr)
	setString(v, "auth_token", &cfg.AuthToken)
	setString(v, "db_path", &cfg.DBPath)
	setString(v, "log_level", &cfg.LogLevel)
	setString(v, "mqtt.broker", &cfg.MQTT.Broker)
	setString(v, "mqtt.client_id", &cfg.MQTT.ClientID)
	setString(v, "mqtt.topic_prefix", &cfg.MQTT.TopicPrefix)

	if v.IsSet("allowed_origins") {
		cfg.AllowedOrigins = strings.Split(v.GetString("allowed_origins"), ",")
	}

	if v.IsSet("log_pretty") {
		cfg.LogPretty = v.GetBool("log_pretty")
	}

	if v.IsSet("ranging.privileged") {
		cfg.Ranging.Privileged = v.GetBool("ranging.privileged")
	}

	if v.IsSet("ranging.processing_offset_ms") {
		cfg.Ranging.ProcessingOffsetMS = v.GetFloat64("ranging.processing_offset_ms")
	}

	if v.IsSet("ranging.max_distance_m") {
		cfg.Ranging.MaxDistanceM = v.GetFloat64("ranging.max_distance_m")
	}

	setDuration(v, "liveness_window", &cfg.LivenessWindow)
	setDuration(v, "offline_sweep_interval", &cfg.OfflineSweepInterval)
	setDuration(v, "health_interval", &cfg.HealthInterval)
	setDuration(v, "anomaly_interval", &cfg.AnomalyInterval)
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setDuration(v *viper.Viper, key string, dst *Duration) {
	if v.IsSet(key) {
		if d := v.GetDuration(key); d > 0 {
			*dst = Duration(d)
		}
	}
}

// Validate rejects configurations the core cannot run with.
func (c *CoreConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr is required", errInvalidConfig)
	}

	durations := map[string]Duration{
		"liveness_window":        c.LivenessWindow,
		"offline_sweep_interval": c.OfflineSweepInterval,
		"health_interval":        c.HealthInterval,
		"anomaly_interval":       c.AnomalyInterval,
		"ranging.probe_timeout":  c.Ranging.ProbeTimeout,
		"ranging.live_interval":  c.Ranging.LiveInterval,
	}

	for name, d := range durations {
		if time.Duration(d) <= 0 {
			return fmt.Errorf("%w: %s must be positive", errInvalidConfig, name)
		}
	}

	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("%w: rate_limit and rate_burst must be positive", errInvalidConfig)
	}

	if c.Ranging.ProcessingOffsetMS < 0 {
		return fmt.Errorf("%w: ranging.processing_offset_ms must not be negative", errInvalidConfig)
	}

	if c.Ranging.MaxDistanceM <= 0 || c.Ranging.ProbeCount <= 0 {
		return fmt.Errorf("%w: ranging.max_distance_m and ranging.probe_count must be positive", errInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Ranging.Anchors))

	for i, a := range c.Ranging.Anchors {
		if strings.TrimSpace(a.ID) == "" || seen[a.ID] {
			return fmt.Errorf("%w: ranging.anchors[%d] needs a unique id", errInvalidConfig, i)
		}

		seen[a.ID] = true
	}

	for i, wh := range c.Webhooks {
		if wh.Enabled && wh.URL == "" {
			return fmt.Errorf("%w: webhooks[%d] is enabled without a url", errInvalidConfig, i)
		}
	}

	return nil
}

// Validate rejects agent configurations that cannot connect.
func (c *AgentConfig) Validate() error {
	if c.AgentID == "" {
		return fmt.Errorf("%w: agent_id is required", errInvalidConfig)
	}

	if !strings.HasPrefix(c.CoreURL, "ws://") && !strings.HasPrefix(c.CoreURL, "wss://") {
		return fmt.Errorf("%w: core_url must be a ws:// or wss:// url", errInvalidConfig)
	}

	if time.Duration(c.ScanInterval) <= 0 || time.Duration(c.HeartbeatInterval) <= 0 {
		return fmt.Errorf("%w: scan_interval and heartbeat_interval must be positive", errInvalidConfig)
	}

	return nil
}
