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

package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestScanPatterns(t *testing.T) {
	tests := []struct {
		name    string
		device  models.DevicePatch
		pattern string
		field   string
	}{
		{
			name:    "canonical demo mac",
			device:  models.DevicePatch{MAC: "00:11:22:33:44:55"},
			pattern: PatternDemoMAC,
			field:   "mac",
		},
		{
			name:    "demo mac prefix lower case with dashes",
			device:  models.DevicePatch{MAC: "aa-bb-cc-dd-ee-01"},
			pattern: PatternDemoMAC,
			field:   "mac",
		},
		{
			name:    "all identical octets",
			device:  models.DevicePatch{MAC: "22:22:22:22:22:22"},
			pattern: PatternRepeatedValue,
			field:   "mac",
		},
		{
			name:    "generic name",
			device:  models.DevicePatch{MAC: "3C:22:FB:10:20:30", Name: strPtr("Test Device 3")},
			pattern: PatternGenericName,
			field:   "name",
		},
		{
			name:    "repeated name",
			device:  models.DevicePatch{MAC: "3C:22:FB:10:20:30", Name: strPtr("abcabcabc")},
			pattern: PatternRepeatedValue,
			field:   "name",
		},
		{
			name:    "documentation ip",
			device:  models.DevicePatch{MAC: "3C:22:FB:10:20:30", IP: strPtr("203.0.113.7")},
			pattern: PatternDemoIP,
			field:   "ip",
		},
		{
			name:    "round rssi",
			device:  models.DevicePatch{MAC: "3C:22:FB:10:20:30", RSSI: floatPtr(-50)},
			pattern: PatternRoundSignal,
			field:   "rssi",
		},
		{
			name:    "positive rssi",
			device:  models.DevicePatch{MAC: "3C:22:FB:10:20:30", RSSI: floatPtr(12)},
			pattern: PatternRoundSignal,
			field:   "rssi",
		},
	}

	f := NewFilter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := f.Scan([]models.DevicePatch{tt.device})
			require.NotEmpty(t, violations)
			assert.Equal(t, tt.pattern, violations[0].Pattern)
			assert.Equal(t, tt.field, violations[0].Field)
		})
	}
}

func TestScanCleanDevice(t *testing.T) {
	f := NewFilter()

	violations := f.Scan([]models.DevicePatch{{
		MAC:        "3C:22:FB:10:20:30",
		Name:       strPtr("Living Room TV"),
		DeviceType: strPtr("smart_tv"),
		IP:         strPtr("192.168.1.42"),
		RSSI:       floatPtr(-61),
	}})

	assert.Empty(t, violations)
}

func TestAdmitRejectsWholeBatch(t *testing.T) {
	f := NewFilter()

	updates := []models.DeviceUpdate{
		{
			Action: models.ActionDiscovered,
			Device: models.DevicePatch{MAC: "3C:22:FB:10:20:30", Name: strPtr("Office Printer"), RSSI: floatPtr(-58)},
		},
		{
			Action: models.ActionDiscovered,
			Device: models.DevicePatch{MAC: "AA:BB:CC:DD:EE:01", DeviceType: strPtr("router"), RSSI: floatPtr(-90)},
		},
	}

	violations, err := f.Admit(updates)
	require.ErrorIs(t, err, ErrAdmission)
	assert.Len(t, violations, 1)
	assert.Equal(t, "AA:BB:CC:DD:EE:01", violations[0].MAC)
}

func TestIsRepeated(t *testing.T) {
	assert.True(t, isRepeated("xyxyxy"))
	assert.True(t, isRepeated("000000"))
	assert.False(t, isRepeated("xyxy"))
	assert.False(t, isRepeated("kitchen"))
	assert.False(t, isRepeated("abcabcab"))
}
