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

// Package integrity pkg/integrity/filter.go rejects telemetry that carries
// placeholder or demo data.
package integrity

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	minRepeatedLen   = 6
	minRepeatedUnits = 3
)

var (
	genericNameRE = regexp.MustCompile(
		`(?i)^\s*(test|fake|dummy|sample|demo|example|mock|placeholder|unknown device)([\s_-]*(device|node|host|phone|router))?[\s_-]*\d*\s*$`)

	demoMACs = map[string]struct{}{
		"00:11:22:33:44:55": {},
		"AA:BB:CC:DD:EE:FF": {},
		"12:34:56:78:9A:BC": {},
		"01:23:45:67:89:AB": {},
		"00:00:00:00:00:00": {},
		"FF:FF:FF:FF:FF:FF": {},
		"DE:AD:BE:EF:00:00": {},
	}

	demoMACPrefixes = []string{"AA:BB:CC:DD:EE:", "00:11:22:33:44:", "DE:AD:BE:EF:"}

	demoIPs = map[string]struct{}{
		"0.0.0.0":   {},
		"1.2.3.4":   {},
		"127.0.0.1": {},
	}

	// RFC 5737 documentation ranges.
	demoNets = mustCIDRs("192.0.2.0/24", "198.51.100.0/24", "203.0.113.0/24")

	roundRSSI = map[float64]struct{}{0: {}, -50: {}, -100: {}}
)

func mustCIDRs(cidrs ...string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))

	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}

		out = append(out, n)
	}

	return out
}

// Filter matches device patches against a fixed set of placeholder
// signatures. It holds no state and is safe for concurrent use.
type Filter struct{}

// NewFilter returns a Filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Scan returns every violation found in devices. An empty result means the
// batch is admissible.
func (*Filter) Scan(devices []models.DevicePatch) []Violation {
	var out []Violation

	for i := range devices {
		out = append(out, scanDevice(&devices[i])...)
	}

	return out
}

// Admit runs Scan over a device_updates batch and returns ErrAdmission if
// anything matched.
func (f *Filter) Admit(updates []models.DeviceUpdate) ([]Violation, error) {
	patches := make([]models.DevicePatch, len(updates))
	for i := range updates {
		patches[i] = updates[i].Device
	}

	violations := f.Scan(patches)
	if len(violations) > 0 {
		return violations, fmt.Errorf("%w: %d violation(s), first %s=%q (%s)",
			ErrAdmission, len(violations), violations[0].Field, violations[0].Value, violations[0].Pattern)
	}

	return nil, nil
}

func scanDevice(d *models.DevicePatch) []Violation {
	var out []Violation

	mac := models.NormalizeMAC(d.MAC)
	add := func(field, value, pattern string) {
		out = append(out, Violation{MAC: mac, Field: field, Value: value, Pattern: pattern})
	}

	if isDemoMAC(mac) {
		add("mac", mac, PatternDemoMAC)
	} else if isRepeated(strings.ReplaceAll(mac, ":", "")) {
		add("mac", mac, PatternRepeatedValue)
	}

	if d.Name != nil {
		switch {
		case genericNameRE.MatchString(*d.Name):
			add("name", *d.Name, PatternGenericName)
		case isRepeated(*d.Name):
			add("name", *d.Name, PatternRepeatedValue)
		}
	}

	if d.Vendor != nil && genericNameRE.MatchString(*d.Vendor) {
		add("vendor", *d.Vendor, PatternGenericName)
	}

	if d.IP != nil && isDemoIP(*d.IP) {
		add("ip", *d.IP, PatternDemoIP)
	}

	if d.RSSI != nil && isRoundRSSI(*d.RSSI) {
		add("rssi", strconv.FormatFloat(*d.RSSI, 'f', -1, 64), PatternRoundSignal)
	}

	return out
}

func isDemoMAC(mac string) bool {
	if _, ok := demoMACs[mac]; ok {
		return true
	}

	for _, p := range demoMACPrefixes {
		if strings.HasPrefix(mac, p) {
			return true
		}
	}

	return false
}

func isDemoIP(raw string) bool {
	raw = strings.TrimSpace(raw)
	if _, ok := demoIPs[raw]; ok {
		return true
	}

	ip := net.ParseIP(raw)
	if ip == nil {
		return false
	}

	for _, n := range demoNets {
		if n.Contains(ip) {
			return true
		}
	}

	return false
}

// isRoundRSSI flags exact textbook values and impossible positive readings.
func isRoundRSSI(v float64) bool {
	if v > 0 {
		return true
	}

	_, ok := roundRSSI[v]

	return ok
}

// isRepeated reports whether s is a single unit repeated at least
// minRepeatedUnits times, e.g. "abcabcabc" or "111111".
func isRepeated(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	n := len(s)

	if n < minRepeatedLen {
		return false
	}

	for unit := 1; unit <= n/minRepeatedUnits; unit++ {
		if n%unit != 0 {
			continue
		}

		if strings.Repeat(s[:unit], n/unit) == s {
			return true
		}
	}

	return false
}
