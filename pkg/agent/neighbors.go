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

package agent

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strings"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const arpFlagComplete = 0x2

// ReadARPTable reads a Linux /proc/net/arp style table.
func ReadARPTable(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNeighbors, err)
	}
	defer f.Close()

	return ParseARPTable(f)
}

// ParseARPTable maps IPv4 addresses to normalized hardware addresses,
// skipping incomplete entries.
func ParseARPTable(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)

	first := true

	for sc.Scan() {
		if first {
			first = false

			continue
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: %q", errNeighborRow, sc.Text())
		}

		var flags int
		if _, err := fmt.Sscanf(fields[2], "0x%x", &flags); err != nil {
			return nil, fmt.Errorf("%w: %q", errNeighborRow, sc.Text())
		}

		if flags&arpFlagComplete == 0 {
			continue
		}

		hw, err := net.ParseMAC(fields[3])
		if err != nil || isZero(hw) {
			continue
		}

		out[fields[0]] = models.NormalizeMAC(hw.String())
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errNeighbors, err)
	}

	return out, nil
}

func isZero(hw net.HardwareAddr) bool {
	for _, b := range hw {
		if b != 0 {
			return false
		}
	}

	return true
}

// IPSorter orders addresses numerically, falling back to string order for
// anything that is not IPv4.
type IPSorter []string

func (s IPSorter) Len() int { return len(s) }

func (s IPSorter) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s IPSorter) Less(i, j int) bool {
	a, b := net.ParseIP(s[i]).To4(), net.ParseIP(s[j]).To4()
	if a == nil || b == nil {
		return s[i] < s[j]
	}

	for k := range a {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}

	return false
}

func sortHosts(hosts []string) {
	sort.Sort(IPSorter(hosts))
}
