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

package config

import (
	"encoding/json"
	"fmt"
	"time"
)

type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// WebhookConfig represents a webhook notification configuration.
type WebhookConfig struct {
	Enabled  bool     `json:"enabled"`
	URL      string   `json:"url"`
	Cooldown Duration `json:"cooldown"`
	Template string   `json:"template"`
	Discord  bool     `json:"discord,omitempty"`
	Headers  []Header `json:"headers,omitempty"` // Optional custom headers
}

// Header represents a custom HTTP header.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MQTTConfig configures the optional MQTT alert sink. An empty broker
// disables it.
type MQTTConfig struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	TopicPrefix string `json:"topic_prefix"`
}

// RangingConfig configures RTT probing and distance derivation.
type RangingConfig struct {
	ProcessingOffsetMS float64  `json:"processing_offset_ms"`
	MaxDistanceM       float64  `json:"max_distance_m"`
	ProbeCount         int      `json:"probe_count"`
	ProbeTimeout       Duration `json:"probe_timeout"`
	LiveInterval       Duration `json:"live_interval"`
	Concurrency        int      `json:"concurrency"`
	Privileged         bool     `json:"privileged"`
	Anchors            []Anchor `json:"anchors,omitempty"`
}

// Anchor places a receiver, usually an agent, on the floor plan so its
// RSSI readings can locate devices.
type Anchor struct {
	ID               string  `json:"id"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	ReferenceRSSI    float64 `json:"reference_rssi,omitempty"`
	PathLossExponent float64 `json:"path_loss_exponent,omitempty"`
}

// CoreConfig represents the configuration for the core service.
type CoreConfig struct {
	ListenAddr           string          `json:"listen_addr"`
	AllowedOrigins       []string        `json:"allowed_origins"`
	AuthToken            string          `json:"auth_token,omitempty"`
	LivenessWindow       Duration        `json:"liveness_window"`
	OfflineSweepInterval Duration        `json:"offline_sweep_interval"`
	HealthInterval       Duration        `json:"health_interval"`
	AnomalyInterval      Duration        `json:"anomaly_interval"`
	RateLimit            float64         `json:"rate_limit"`
	RateBurst            int             `json:"rate_burst"`
	SendQueueSize        int             `json:"send_queue_size"`
	DBPath               string          `json:"db_path,omitempty"`
	Retention            Duration        `json:"retention"`
	LogLevel             string          `json:"log_level"`
	LogPretty            bool            `json:"log_pretty"`
	Ranging              RangingConfig   `json:"ranging"`
	MQTT                 MQTTConfig      `json:"mqtt"`
	Webhooks             []WebhookConfig `json:"webhooks,omitempty"`
}

// AgentConfig represents the configuration for the reference agent.
type AgentConfig struct {
	AgentID           string   `json:"agent_id"`
	CoreURL           string   `json:"core_url"` // e.g., ws://localhost:8090/ws
	AuthToken         string   `json:"auth_token,omitempty"`
	Targets           []string `json:"targets"`
	HeartbeatInterval Duration `json:"heartbeat_interval"`
	ScanInterval      Duration `json:"scan_interval"`
	BackoffBase       Duration `json:"backoff_base"`
	BackoffMax        Duration `json:"backoff_max"`
	MaxAttempts       int      `json:"max_attempts"`
	Privileged        bool     `json:"privileged"`
	LogLevel          string   `json:"log_level"`
}

const (
	defaultListenAddr     = ":8090"
	defaultLivenessWindow = 90 * time.Second
	defaultOfflineSweep   = 15 * time.Second
	defaultHealthInterval = 5 * time.Minute
	defaultAnomaly        = time.Minute
	defaultRateLimit      = 50
	defaultRateBurst      = 100
	defaultSendQueue      = 64
	defaultRetention      = 7 * 24 * time.Hour
	defaultProbeCount     = 4
	defaultProbeTimeout   = time.Second
	defaultLiveInterval   = 5 * time.Second
	defaultConcurrency    = 8
)

// DefaultCoreConfig returns the configuration used when no file is given.
func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		ListenAddr:           defaultListenAddr,
		AllowedOrigins:       []string{"*"},
		LivenessWindow:       Duration(defaultLivenessWindow),
		OfflineSweepInterval: Duration(defaultOfflineSweep),
		HealthInterval:       Duration(defaultHealthInterval),
		AnomalyInterval:      Duration(defaultAnomaly),
		RateLimit:            defaultRateLimit,
		RateBurst:            defaultRateBurst,
		SendQueueSize:        defaultSendQueue,
		Retention:            Duration(defaultRetention),
		LogLevel:             "info",
		Ranging: RangingConfig{
			ProcessingOffsetMS: 5,
			MaxDistanceM:       100,
			ProbeCount:         defaultProbeCount,
			ProbeTimeout:       Duration(defaultProbeTimeout),
			LiveInterval:       Duration(defaultLiveInterval),
			Concurrency:        defaultConcurrency,
		},
		MQTT: MQTTConfig{
			ClientID:    "smartblueprint-core",
			TopicPrefix: "smartblueprint",
		},
	}
}

// DefaultAgentConfig returns the reference agent defaults.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		CoreURL:           "ws://localhost:8090/ws",
		HeartbeatInterval: Duration(15 * time.Second),
		ScanInterval:      Duration(time.Minute),
		BackoffBase:       Duration(time.Second),
		BackoffMax:        Duration(30 * time.Second),
		MaxAttempts:       10,
		LogLevel:          "info",
	}
}
