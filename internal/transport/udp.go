// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"tuner/internal/log"
)

// UDPTransport sends tuning results as JSON datagrams to a fixed target
// address. Sends are rate limited so a fast analysis loop does not flood
// the network; payloads inside the limit window are dropped, not queued.
type UDPTransport struct {
	conn     net.Conn
	mu       sync.Mutex
	lastSend time.Time
	interval time.Duration
	closed   bool
}

// NewUDPTransport dials the target address ("host:port") and returns the
// transport. interval is the minimum time between datagrams; zero disables
// rate limiting.
func NewUDPTransport(target string, interval time.Duration) (*UDPTransport, error) {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target %s: %w", target, err)
	}
	log.Infof("transport: UDP publisher sending to %s", target)
	return &UDPTransport{conn: conn, interval: interval}, nil
}

// Send marshals data to JSON and writes one datagram, subject to the rate
// limit. Write errors are logged and swallowed; UDP delivery is best
// effort.
func (u *UDPTransport) Send(data any) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return fmt.Errorf("udp transport is closed")
	}
	if u.interval > 0 && time.Since(u.lastSend) < u.interval {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if _, err := u.conn.Write(payload); err != nil {
		log.Debugf("transport: UDP write failed: %v", err)
		return nil
	}
	u.lastSend = time.Now()
	return nil
}

// Close releases the socket.
func (u *UDPTransport) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	return u.conn.Close()
}

var _ Transport = (*UDPTransport)(nil)
