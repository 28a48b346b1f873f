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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/logger"
)

const (
	webhookTimeout  = 10 * time.Second
	maxErrorBodyLen = 4096
)

// WebhookAlert is the body posted for one event. Color is only used by
// templates.
type WebhookAlert struct {
	Event     string         `json:"event"`
	MAC       string         `json:"mac,omitempty"`
	Severity  string         `json:"severity"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Color     int            `json:"-"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewWebhookAlert builds the webhook body for ev.
func NewWebhookAlert(ev *Event) *WebhookAlert {
	title := ev.Title
	if title == "" {
		title = strings.TrimSpace(ev.Type + " " + ev.MAC)
	}

	a := &WebhookAlert{
		Event:    ev.Type,
		MAC:      ev.MAC,
		Severity: ev.Severity,
		Title:    title,
		Message:  ev.Message,
		Color:    SeverityColor(ev.Severity),
	}

	if !ev.Timestamp.IsZero() {
		a.Timestamp = ev.Timestamp.UTC().Format(time.RFC3339)
	}

	return a
}

// cooldownKey scopes the cooldown to one kind of event on one device.
func (a *WebhookAlert) cooldownKey() string {
	return a.Event + "|" + a.MAC
}

// WebhookAlerter posts alerts to one configured endpoint, optionally
// through a text/template, and suppresses repeats of the same event for
// the same device inside the cooldown.
type WebhookAlerter struct {
	cfg     config.WebhookConfig
	tmpl    *template.Template
	tmplErr error
	client  *http.Client
	now     func() time.Time
	log     zerolog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewWebhookAlerter creates an alerter for cfg. A Discord endpoint without
// its own template gets DiscordTemplate.
func NewWebhookAlerter(cfg config.WebhookConfig) *WebhookAlerter {
	if cfg.Discord && cfg.Template == "" {
		cfg.Template = DiscordTemplate
	}

	w := &WebhookAlerter{
		cfg:      cfg,
		client:   &http.Client{Timeout: webhookTimeout},
		now:      time.Now,
		log:      logger.Component("webhook"),
		lastSent: make(map[string]time.Time),
	}

	if cfg.Template != "" {
		w.tmpl, w.tmplErr = template.New("webhook").
			Funcs(template.FuncMap{"json": templateJSON}).
			Parse(cfg.Template)
	}

	return w
}

func (w *WebhookAlerter) IsEnabled() bool {
	return w.cfg.Enabled
}

// Alert implements AlertService.
func (w *WebhookAlerter) Alert(ctx context.Context, alert *WebhookAlert) error {
	if !w.IsEnabled() {
		return ErrWebhookDisabled
	}

	key := alert.cooldownKey()

	sentAt, err := w.reserve(key)
	if err != nil {
		w.log.Debug().Str("event", alert.Event).Str("mac", alert.MAC).Msg("alert within cooldown period, skipping")

		return err
	}

	if alert.Timestamp == "" {
		alert.Timestamp = sentAt.UTC().Format(time.RFC3339)
	}

	body, err := w.render(alert)
	if err == nil {
		err = w.post(ctx, body)
	}

	if err != nil {
		w.release(key, sentAt)

		return err
	}

	return nil
}

// reserve claims the cooldown slot for key.
func (w *WebhookAlerter) reserve(key string) (time.Time, error) {
	now := w.now()

	cooldown := time.Duration(w.cfg.Cooldown)
	if cooldown <= 0 {
		return now, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.lastSent[key]; ok && now.Sub(last) < cooldown {
		return now, ErrWebhookCooldown
	}

	w.lastSent[key] = now

	return now, nil
}

// release frees a slot claimed by a delivery that failed.
func (w *WebhookAlerter) release(key string, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lastSent[key].Equal(at) {
		delete(w.lastSent, key)
	}
}

func (w *WebhookAlerter) render(alert *WebhookAlert) ([]byte, error) {
	if w.tmplErr != nil {
		return nil, fmt.Errorf("%w: %w", errTemplateParse, w.tmplErr)
	}

	if w.tmpl == nil {
		body, err := json.Marshal(alert)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal alert: %w", err)
		}

		return body, nil
	}

	var buf bytes.Buffer

	if err := w.tmpl.Execute(&buf, map[string]any{"alert": alert}); err != nil {
		return nil, fmt.Errorf("%w: %w", errTemplateExecution, err)
	}

	if !json.Valid(buf.Bytes()) {
		return nil, errInvalidJSON
	}

	return buf.Bytes(), nil
}

func (w *WebhookAlerter) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for _, h := range w.cfg.Headers {
		req.Header.Set(h.Key, h.Value)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			w.log.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

		return fmt.Errorf("%w: status=%d body=%s", errWebhookStatus, resp.StatusCode, msg)
	}

	return nil
}

func templateJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("JSON marshaling failed: %w", err)
	}

	return string(b), nil
}
