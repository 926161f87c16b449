package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenUDP(t *testing.T) (*net.UDPConn, string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, conn.LocalAddr().String()
}

func TestIncrEmitsCounterLine(t *testing.T) {
	conn, addr := listenUDP(t)
	c, err := Dial(addr, "memgraph")
	require.NoError(t, err)
	defer c.Close()

	c.Incr("tx.begin")

	buf := make([]byte, 256)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "memgraph.tx.begin:1|c", string(buf[:n]))
}

func TestGaugeEmitsGaugeLine(t *testing.T) {
	conn, addr := listenUDP(t)
	c, err := Dial(addr, "")
	require.NoError(t, err)
	defer c.Close()

	c.Gauge("active_txns", 42)

	buf := make([]byte, 256)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "active_txns:42|g", string(buf[:n]))
}

func TestNoopClientNeverBlocksOrPanics(t *testing.T) {
	c := NoopClient()
	c.Incr("whatever")
	c.Gauge("whatever", 1.5)
	c.Timing("whatever", time.Millisecond)
	assert.NoError(t, c.Close())
}
