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

package scan

import (
	"fmt"
	"net"
	"strings"
)

// DefaultTargetLimit caps how many addresses a single CIDR may expand to.
const DefaultTargetLimit = 1024

// ExpandTargets turns a mix of host names, addresses and IPv4 CIDRs into a
// de-duplicated host list. Each CIDR contributes at most limit hosts,
// skipping its network and broadcast addresses.
func ExpandTargets(targets []string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultTargetLimit
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(targets))

	add := func(h string) {
		if _, ok := seen[h]; ok {
			return
		}

		seen[h] = struct{}{}
		out = append(out, h)
	}

	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}

		if !strings.Contains(t, "/") {
			add(t)
			continue
		}

		ips, err := HostsInCIDR(t, limit)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTarget, t, err)
		}

		for _, ip := range ips {
			add(ip.String())
		}
	}

	return out, nil
}

// HostsInCIDR lists usable IPv4 host addresses in network, up to limit.
func HostsInCIDR(network string, limit int) ([]net.IP, error) {
	ip, ipnet, err := net.ParseCIDR(network)
	if err != nil {
		return nil, err
	}

	if ip.To4() == nil {
		return nil, ErrIPv6Unsupported
	}

	ones, _ := ipnet.Mask.Size()
	if ones == 32 {
		return []net.IP{copyIP(ip.To4())}, nil
	}

	ips := make([]net.IP, 0, min(limit, 256))
	current := copyIP(ip.Mask(ipnet.Mask).To4())

	for ipnet.Contains(current) && len(ips) < limit {
		if ones >= 31 || !IsFirstOrLastAddress(current, ipnet) {
			ips = append(ips, copyIP(current))
		}

		Inc(current)
	}

	return ips, nil
}

// IsFirstOrLastAddress reports whether ip is the network or broadcast
// address of an IPv4 network.
func IsFirstOrLastAddress(ip net.IP, network *net.IPNet) bool {
	ipv4 := ip.To4()
	base := network.IP.To4()

	if ipv4 == nil || base == nil || len(network.Mask) != net.IPv4len {
		return false
	}

	broadcast := make(net.IP, net.IPv4len)
	for i := range broadcast {
		broadcast[i] = base[i] | ^network.Mask[i]
	}

	return ipv4.Equal(base) || ipv4.Equal(broadcast)
}

// Inc increments an IP address in place.
func Inc(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] > 0 {
			break
		}
	}
}

func copyIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)

	return out
}
