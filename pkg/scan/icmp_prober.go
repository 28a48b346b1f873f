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

// Package scan pkg/scan/icmp_prober.go
package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/mfreeman451/smartblueprint/pkg/logger"
)

const (
	protocolICMP = 1
	maxPacket    = 1500
)

var echoPayload = []byte("smartblueprint-ranging")

// ICMPProber measures RTT with ICMP echo. Unprivileged mode uses datagram
// ICMP sockets ("udp4"); privileged mode uses raw sockets.
type ICMPProber struct {
	privileged bool
	id         int
	seq        atomic.Uint32
	log        zerolog.Logger
}

// NewICMPProber creates a prober.
func NewICMPProber(privileged bool) *ICMPProber {
	return &ICMPProber{
		privileged: privileged,
		id:         os.Getpid() & 0xffff,
		log:        logger.Component("icmp"),
	}
}

func (p *ICMPProber) network() string {
	if p.privileged {
		return "ip4:icmp"
	}

	return "udp4"
}

func (p *ICMPProber) destination(ip net.IP) net.Addr {
	if p.privileged {
		return &net.IPAddr{IP: ip}
	}

	return &net.UDPAddr{IP: ip}
}

// Probe implements Prober.
func (p *ICMPProber) Probe(ctx context.Context, host string, count int, timeout time.Duration) (ProbeResult, error) {
	result := ProbeResult{Host: host}

	if count <= 0 {
		count = 1
	}

	addr, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrResolve, host, err)
	}

	conn, err := icmp.ListenPacket(p.network(), "0.0.0.0")
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrListen, err)
	}

	defer func() {
		if err := conn.Close(); err != nil {
			p.log.Debug().Err(err).Msg("failed to close ICMP socket")
		}
	}()

	buf := make([]byte, maxPacket)

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		seq := int(p.seq.Add(1) & 0xffff)

		rtt, ok, err := p.echo(ctx, conn, addr.IP, seq, timeout, buf)

		result.Sent++

		if err != nil {
			p.log.Debug().Err(err).Str("host", host).Int("seq", seq).Msg("echo failed")
			continue
		}

		if ok {
			result.Received++
			result.RTTs = append(result.RTTs, rtt)
		}
	}

	return result, nil
}

func (p *ICMPProber) echo(
	ctx context.Context, conn *icmp.PacketConn, ip net.IP, seq int, timeout time.Duration, buf []byte) (time.Duration, bool, error) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: p.id, Seq: seq, Data: echoPayload},
	}

	wb, err := msg.Marshal(nil)
	if err != nil {
		return 0, false, err
	}

	start := time.Now()
	deadline := start.Add(timeout)

	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return 0, false, err
	}

	if _, err := conn.WriteTo(wb, p.destination(ip)); err != nil {
		return 0, false, err
	}

	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return 0, false, nil
			}

			return 0, false, err
		}

		if p.isReply(buf[:n], seq) {
			return time.Since(start), true, nil
		}
	}
}

// isReply matches an echo reply to our sequence number. Datagram sockets
// rewrite the identifier, so it is only checked on raw sockets.
func (p *ICMPProber) isReply(packet []byte, seq int) bool {
	msg, err := icmp.ParseMessage(protocolICMP, packet)
	if err != nil || msg.Type != ipv4.ICMPTypeEchoReply {
		return false
	}

	echo, ok := msg.Body.(*icmp.Echo)
	if !ok || echo.Seq != seq {
		return false
	}

	return !p.privileged || echo.ID == p.id
}
