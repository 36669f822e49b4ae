// Package probe answers whether an address is reachable before a DNS record
// gets created for it.
package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-ping/ping"
)

// PingProber performs ICMP liveness checks.
type PingProber struct {
	privileged bool
}

// NewPingProber creates a prober, detecting whether the process can open the
// raw socket ICMP needs.
func NewPingProber() *PingProber {
	privileged := os.Geteuid() == 0 || canUseRawSocket()
	return &PingProber{privileged: privileged}
}

// Privileged reports whether ICMP probes can actually be sent. Callers skip
// the probe entirely when this is false rather than blocking on a socket the
// process cannot open.
func (p *PingProber) Privileged() bool {
	return p.privileged
}

// Check sends a single ICMP echo and reports whether a reply came back
// within the timeout.
func (p *PingProber) Check(ctx context.Context, ip string, timeout time.Duration) (bool, error) {
	if !p.privileged {
		return false, nil
	}

	pinger, err := ping.NewPinger(ip)
	if err != nil {
		return false, fmt.Errorf("creating pinger: %w", err)
	}

	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(true)

	// Run blocks until the reply arrives or the timeout expires.
	pinger.Run()

	stats := pinger.Statistics()
	return stats.PacketsRecv > 0, nil
}

// canUseRawSocket checks if we can use raw sockets
func canUseRawSocket() bool {
	conn, err := net.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
