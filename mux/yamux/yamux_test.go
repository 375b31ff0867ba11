package yamux

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMuxedConnRoundTrip(t *testing.T) {
	c1, c2 := net.Pipe()

	m := New()
	require.Equal(t, MuxerTag, m.Tag())

	client, err := m.NewMuxedConn(c1, false)
	require.NoError(t, err)
	server, err := m.NewMuxedConn(c2, true)
	require.NoError(t, err)

	msg := []byte("ping-pong")
	done := make(chan error, 1)
	go func() {
		s, err := server.AcceptStream()
		if err != nil {
			done <- err
			return
		}
		defer func() { _ = s.Close() }()
		buf := make([]byte, len(msg))
		if _, err := io.ReadFull(s, buf); err != nil {
			done <- err
			return
		}
		_, err = s.Write(buf)
		done <- err
	}()

	s, err := client.OpenStream(context.Background())
	require.NoError(t, err)

	_, err = s.Write(msg)
	require.NoError(t, err)
	echo := make([]byte, len(msg))
	_, err = io.ReadFull(s, echo)
	require.NoError(t, err)
	require.Equal(t, msg, echo)
	require.NoError(t, s.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the accepting side")
	}

	require.False(t, client.Closed())
	require.NoError(t, client.Close())
	require.True(t, client.Closed())
	require.NoError(t, server.Close())
	require.True(t, server.Closed())
}

func TestNewWithConfigDefaults(t *testing.T) {
	m := NewWithConfig(nil)
	require.NotNil(t, m.cfg)
	require.Equal(t, MuxerTag, m.Tag())
}
