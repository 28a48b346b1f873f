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

// Discord embed colours by event severity.
const (
	DiscordColorRed    = 15158332
	DiscordColorOrange = 15105570
	DiscordColorYellow = 16776960
	DiscordColorBlue   = 3447003
)

// DiscordTemplate renders a WebhookAlert as a Discord embed.
const DiscordTemplate = `{
  "embeds": [{
    "title": {{json .alert.Title}},
    "description": {{json .alert.Message}},
    "color": {{.alert.Color}},
    "timestamp": {{json .alert.Timestamp}},
    "fields": [
      {"name": "Event", "value": {{json .alert.Event}}, "inline": true},
      {"name": "Severity", "value": {{json .alert.Severity}}, "inline": true}{{if .alert.MAC}},
      {"name": "Device", "value": {{json .alert.MAC}}, "inline": true}{{end}}
    ]
  }]
}`

// SeverityColor maps an event severity onto an embed colour.
func SeverityColor(severity string) int {
	switch severity {
	case SeverityCritical:
		return DiscordColorRed
	case "high":
		return DiscordColorOrange
	case "medium":
		return DiscordColorYellow
	default:
		return DiscordColorBlue
	}
}
