// Package protocol defines the transport kinds gn can write over and the
// single-attempt send primitive shared by the engine and its tests.
package protocol

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// Protocol identifies the transport used for a run.
type Protocol string

const (
	TCP Protocol = "tcp"
	UDP Protocol = "udp"
)

// Parse converts a user-supplied protocol name into a Protocol.
// The empty string defaults to TCP.
func Parse(value string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "tcp":
		return TCP, nil
	case "udp":
		return UDP, nil
	default:
		return "", fmt.Errorf("unsupported protocol %q: use \"tcp\" or \"udp\"", value)
	}
}

// String implements fmt.Stringer.
func (p Protocol) String() string { return string(p) }

// Send writes payload to addr over the protocol and reports the number of
// bytes sent. Every call pays the full connection or bind cost: TCP opens a
// fresh connection, writes the whole payload and closes; UDP binds an
// ephemeral local port and sends a single datagram. There is intentionally
// no reuse across calls, so each attempt measures real per-request cost.
func (p Protocol) Send(ctx context.Context, addr string, payload []byte) (int, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, string(p), addr)
	if err != nil {
		return 0, fmt.Errorf("dial %s://%s: %w", p, addr, err)
	}
	defer conn.Close()

	// net.Conn.Write does not return short on TCP without an error, but the
	// loop keeps the success contract (bytes sent == payload length) explicit.
	sent := 0
	for sent < len(payload) {
		n, err := conn.Write(payload[sent:])
		sent += n
		if err != nil {
			return sent, fmt.Errorf("write %s://%s: %w", p, addr, err)
		}
	}
	return sent, nil
}
