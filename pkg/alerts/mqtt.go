/*
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

package alerts

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/logger"
)

const (
	mqttQoS          = 1
	mqttKeepAlive    = 60 * time.Second
	mqttPingTimeout  = 10 * time.Second
	mqttConnectWait  = 10 * time.Second
	mqttDisconnectMS = 250
)

// MQTTPublisher publishes alert events to a broker.
type MQTTPublisher struct {
	client mqtt.Client
	log    zerolog.Logger
}

// NewMQTTPublisher connects to the configured broker.
func NewMQTTPublisher(cfg config.MQTTConfig) (*MQTTPublisher, error) {
	l := logger.Component("mqtt")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(mqttKeepAlive)
	opts.SetPingTimeout(mqttPingTimeout)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		l.Info().Str("broker", cfg.Broker).Msg("connected to broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		l.Warn().Err(err).Msg("broker connection lost")
	})

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(mqttConnectWait) {
		return nil, fmt.Errorf("%w: %s: timed out", ErrMQTTConnect, cfg.Broker)
	}

	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMQTTConnect, cfg.Broker, err)
	}

	return &MQTTPublisher{client: client, log: l}, nil
}

// Publish sends payload with QoS 1 and waits for the broker to accept it
// or ctx to end.
func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, mqttQoS, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", ErrMQTTPublish, topic, ctx.Err())
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMQTTPublish, topic, err)
	}

	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(mqttDisconnectMS)
	p.log.Info().Msg("disconnected from broker")
}
