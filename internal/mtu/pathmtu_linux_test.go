//go:build linux

package mtu

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialLoopback(t *testing.T) *net.TCPConn {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	t.Cleanup(func() {
		if c := <-accepted; c != nil {
			c.Close()
		}
	})

	return conn.(*net.TCPConn)
}

func TestPathMTULiveSocket(t *testing.T) {
	got, ok := pathMTU(dialLoopback(t))
	assert.True(t, ok)
	assert.Greater(t, got, 0)
}

func TestTCPMaxSegFallbackTier(t *testing.T) {
	raw, err := dialLoopback(t).SyscallConn()
	require.NoError(t, err)

	got, ok := tcpMaxSegMTU(raw)
	assert.True(t, ok)
	assert.Greater(t, got, 0)
}

func TestPathMTUNilConn(t *testing.T) {
	_, ok := pathMTU(nil)
	assert.False(t, ok)
}
