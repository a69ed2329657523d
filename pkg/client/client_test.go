package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame(t *testing.T) {
	tests := []struct {
		name      string
		request   string
		keepAlive bool
		want      string
	}{
		{
			name:    "adds fixed16",
			request: "GET hosts\nColumns: name",
			want:    "GET hosts\nColumns: name\nResponseHeader: fixed16\n\n",
		},
		{
			name:      "replaces framing directives",
			request:   "GET hosts\r\nResponseHeader: off\r\nKeepAlive: off\r\n\r\n",
			keepAlive: true,
			want:      "GET hosts\nResponseHeader: fixed16\nKeepAlive: on\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Frame(tt.request, tt.keepAlive))
		})
	}
}

func TestReadResponse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Response
		wantErr bool
	}{
		{
			name:  "ok",
			input: "200          12\ntest_host_0\n",
			want:  &Response{Status: 200, Body: "test_host_0\n"},
		},
		{
			name:  "empty body",
			input: "200           0\n",
			want:  &Response{Status: 200, Body: ""},
		},
		{
			name:    "short header",
			input:   "200 1\n",
			wantErr: true,
		},
		{
			name:    "bad status",
			input:   "abc           0\n",
			wantErr: true,
		},
		{
			name:    "truncated body",
			input:   "200          12\ntest",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadResponse(bufio.NewReader(strings.NewReader(tt.input)))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewClientAddress(t *testing.T) {
	tests := []struct {
		addr    string
		network string
		address string
	}{
		{"127.0.0.1:50000", "tcp", "127.0.0.1:50000"},
		{"/var/run/live", "unix", "/var/run/live"},
		{"unix:live.sock", "unix", "live.sock"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			c := NewClient(tt.addr)
			assert.Equal(t, tt.network, c.network)
			assert.Equal(t, tt.address, c.address)
		})
	}
}

func TestQuery(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var req strings.Builder
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil || line == "\n" {
				break
			}
			req.WriteString(line)
		}
		received <- req.String()

		body := "test_host_0\n"
		fmt.Fprintf(conn, "%3d %11d\n%s", 200, len(body), body)
	}()

	resp, err := NewClient(l.Addr().String()).Query(context.Background(), "GET hosts\nColumns: name")
	require.NoError(t, err)
	assert.Equal(t, &Response{Status: 200, Body: "test_host_0\n"}, resp)
	assert.Equal(t, "GET hosts\nColumns: name\nResponseHeader: fixed16\n", <-received)
}
