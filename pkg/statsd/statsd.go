// Package statsd emits StatsD-protocol counters and gauges over UDP.
// No package in the retrieved dependency corpus ships a StatsD client,
// so this talks the wire format directly over net.Conn — the protocol
// itself is a handful of bytes (`bucket:value|type`) and pulling in a
// general metrics client for it would be the wrong trade.
//
// Emission is best-effort: a send that fails (host down, UDP packet
// dropped) is swallowed rather than propagated, matching the
// operational expectation that losing a counter increment never fails
// the transaction or reactor call it was reporting on.
package statsd

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Client emits metrics to a single StatsD collector address.
type Client struct {
	prefix string
	conn   net.Conn
}

// Dial opens a UDP socket to addr (host:port). No handshake occurs;
// failures only surface on Write, which is exactly why every send
// here is best-effort.
func Dial(addr, prefix string) (*Client, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("statsd: dial: %w", err)
	}
	return &Client{prefix: prefix, conn: conn}, nil
}

// NoopClient returns a Client that discards every metric, for
// configurations where no StatsD address is set.
func NoopClient() *Client { return &Client{} }

func (c *Client) bucket(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + "." + name
}

func (c *Client) send(line string) {
	if c.conn == nil {
		return
	}
	_, _ = c.conn.Write([]byte(line))
}

// Count emits a counter delta.
func (c *Client) Count(name string, delta int64) {
	c.send(fmt.Sprintf("%s:%d|c", c.bucket(name), delta))
}

// Incr emits a counter increment of 1.
func (c *Client) Incr(name string) { c.Count(name, 1) }

// Gauge emits an absolute gauge value.
func (c *Client) Gauge(name string, value float64) {
	c.send(fmt.Sprintf("%s:%s|g", c.bucket(name), trimFloat(value)))
}

// Timing emits an elapsed-time sample in milliseconds.
func (c *Client) Timing(name string, d time.Duration) {
	c.send(fmt.Sprintf("%s:%d|ms", c.bucket(name), d.Milliseconds()))
}

// Close releases the underlying socket. Safe to call on a NoopClient.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
