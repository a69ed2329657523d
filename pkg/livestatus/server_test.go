package livestatus

import (
	"bufio"
	"context"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/livestatus/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, config *Config) *Server {
	t.Helper()
	srv := NewServer(newTestEngine(t), config)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Stop() })
	return srv
}

func TestServerQuery(t *testing.T) {
	srv := startServer(t, &Config{ListenAddr: "127.0.0.1:0"})
	require.Len(t, srv.Addrs(), 1)

	c := client.NewClient(srv.Addrs()[0].String())
	resp, err := c.Query(context.Background(), "GET services\nColumns: host_name description state\nFilter: state = 2")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "test_host_0;test_ok_0;2\n", resp.Body)

	resp, err = c.Query(context.Background(), "GET nosuch")
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, "Invalid GET request, no such table 'nosuch'\n", resp.Body)
}

func TestServerUnixSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.sock")
	srv := startServer(t, &Config{SocketPath: path})

	c := client.NewClient("unix:" + path)
	resp, err := c.Query(context.Background(), "GET hosts\nColumns: name")
	require.NoError(t, err)
	assert.Equal(t, "test_host_0\n", resp.Body)

	require.NoError(t, srv.Stop())
	assert.False(t, srv.IsRunning())
}

func TestServerKeepAlive(t *testing.T) {
	srv := startServer(t, &Config{ListenAddr: "127.0.0.1:0"})

	conn, err := client.NewClient(srv.Addrs()[0].String()).Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	for _, req := range []string{
		"GET hosts\nColumns: name",
		"GET hosts\nFilter: nosuch = 1",
		"GET status\nColumns: connections",
	} {
		_, err := conn.Query(req)
		require.NoError(t, err, req)
	}

	resp, err := conn.Query("GET status\nColumns: requests connections")
	require.NoError(t, err)
	assert.Equal(t, "4;1\n", resp.Body)
}

func TestServerClosesWithoutKeepAlive(t *testing.T) {
	srv := startServer(t, &Config{ListenAddr: "127.0.0.1:0"})

	conn, err := net.Dial("tcp", srv.Addrs()[0].String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	// The server closes the connection after answering
	_, err = io.WriteString(conn, "GET hosts\nColumns: name\n\n")
	require.NoError(t, err)

	data, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "test_host_0\n", string(data))
}

func TestServerRequestAtEOF(t *testing.T) {
	srv := startServer(t, &Config{ListenAddr: "127.0.0.1:0"})

	conn, err := net.Dial("tcp", srv.Addrs()[0].String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	_, err = io.WriteString(conn, "GET hosts\nColumns: name")
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	data, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "test_host_0\n", string(data))
}

func TestServerStartTwice(t *testing.T) {
	srv := startServer(t, &Config{ListenAddr: "127.0.0.1:0"})
	assert.True(t, srv.IsRunning())
	assert.Error(t, srv.Start(context.Background()))
}

func TestServerStopsOnContextCancel(t *testing.T) {
	srv := NewServer(newTestEngine(t), &Config{ListenAddr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !srv.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestReadRequest(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single request",
			input: "GET hosts\nColumns: name\n\n",
			want:  []string{"GET hosts\nColumns: name\n"},
		},
		{
			name:  "crlf and leading blank lines",
			input: "\r\n\nGET hosts\r\nColumns: name\r\n\r\n",
			want:  []string{"GET hosts\nColumns: name\n"},
		},
		{
			name:  "two requests",
			input: "GET hosts\n\nGET services\n\n",
			want:  []string{"GET hosts\n", "GET services\n"},
		},
		{
			name:  "unterminated",
			input: "GET hosts\nLimit: 1",
			want:  []string{"GET hosts\nLimit: 1\n"},
		},
		{
			name:  "empty",
			input: "\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.input))
			var got []string
			for {
				req, err := ReadRequest(r)
				if req != "" {
					got = append(got, req)
				}
				if err != nil {
					assert.ErrorIs(t, err, io.EOF)
					break
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
