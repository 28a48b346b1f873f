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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"90s"`, want: 90 * time.Second},
		{name: "nanoseconds", input: `1000000000`, want: time.Second},
		{name: "bad string", input: `"soon"`, wantErr: true},
		{name: "wrong type", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}

func TestLoadCoreFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.json")
	body := `{
		"listen_addr": ":9999",
		"liveness_window": "2m",
		"ranging": {"processing_offset_ms": 3, "max_distance_m": 50, "probe_count": 2,
		            "probe_timeout": "500ms", "live_interval": "1s"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadCore(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 2*time.Minute, time.Duration(cfg.LivenessWindow))
	assert.InDelta(t, 3.0, cfg.Ranging.ProcessingOffsetMS, 1e-9)
	assert.InDelta(t, 50.0, cfg.Ranging.MaxDistanceM, 1e-9)
	// untouched fields keep defaults
	assert.InDelta(t, float64(defaultRateLimit), cfg.RateLimit, 1e-9)
	assert.Equal(t, defaultRateBurst, cfg.RateBurst)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SBP_LISTEN_ADDR", ":7000")
	t.Setenv("SBP_LIVENESS_WINDOW", "45s")
	t.Setenv("SBP_MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("SBP_ALLOWED_ORIGINS", "http://a.local,http://b.local")

	cfg := DefaultCoreConfig()
	ApplyEnv(&cfg)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, 45*time.Second, time.Duration(cfg.LivenessWindow))
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CoreConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*CoreConfig) {}},
		{name: "no listen addr", mutate: func(c *CoreConfig) { c.ListenAddr = "" }, wantErr: true},
		{name: "zero liveness", mutate: func(c *CoreConfig) { c.LivenessWindow = 0 }, wantErr: true},
		{name: "negative offset", mutate: func(c *CoreConfig) { c.Ranging.ProcessingOffsetMS = -1 }, wantErr: true},
		{name: "zero rate", mutate: func(c *CoreConfig) { c.RateLimit = 0 }, wantErr: true},
		{name: "anchors", mutate: func(c *CoreConfig) { c.Ranging.Anchors = []Anchor{{ID: "a"}, {ID: "b", X: 4}} }},
		{name: "duplicate anchor", mutate: func(c *CoreConfig) { c.Ranging.Anchors = []Anchor{{ID: "a"}, {ID: "a"}} }, wantErr: true},
		{name: "unnamed anchor", mutate: func(c *CoreConfig) { c.Ranging.Anchors = []Anchor{{X: 1}} }, wantErr: true},
		{
			name:    "webhook without url",
			mutate:  func(c *CoreConfig) { c.Webhooks = []WebhookConfig{{Enabled: true}} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCoreConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(&cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidConfig)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestLoadAgent(t *testing.T) {
	t.Setenv("SBP_AGENT_ID", "agent-7")
	t.Setenv("SBP_AGENT_TARGETS", "10.0.0.0/30,10.0.1.5")

	cfg, err := LoadAgent("")
	require.NoError(t, err)

	assert.Equal(t, "agent-7", cfg.AgentID)
	assert.Equal(t, []string{"10.0.0.0/30", "10.0.1.5"}, cfg.Targets)
	assert.Equal(t, "ws://localhost:8090/ws", cfg.CoreURL)
}

func TestAgentValidate(t *testing.T) {
	cfg := DefaultAgentConfig()
	require.ErrorIs(t, cfg.Validate(), errInvalidConfig)

	cfg.AgentID = "a1"
	require.NoError(t, cfg.Validate())

	cfg.CoreURL = "http://localhost:8090/ws"
	assert.ErrorIs(t, cfg.Validate(), errInvalidConfig)
}
