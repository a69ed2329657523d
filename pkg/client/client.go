package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds dialing and each request round trip
const DefaultTimeout = 10 * time.Second

// Response is one fixed16-framed answer
type Response struct {
	Status int
	Body   string
}

// OK reports whether the request succeeded
func (r *Response) OK() bool {
	return r.Status == 200
}

// Client sends livestatus requests to a TCP address or unix socket
type Client struct {
	network string
	address string
	timeout time.Duration
}

// NewClient creates a client. Addresses starting with "/" or "unix:" are
// unix socket paths; anything else is a TCP host:port.
func NewClient(addr string) *Client {
	c := &Client{network: "tcp", address: addr, timeout: DefaultTimeout}
	switch {
	case strings.HasPrefix(addr, "unix:"):
		c.network = "unix"
		c.address = strings.TrimPrefix(addr, "unix:")
	case strings.HasPrefix(addr, "/"):
		c.network = "unix"
	}
	return c
}

// WithTimeout sets the dial and round-trip timeout
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// Query sends one request on a fresh connection and reads the framed
// response
func (c *Client) Query(ctx context.Context, request string) (*Response, error) {
	conn, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.send(request, false)
}

// Dial opens a keep-alive connection
func (c *Client) Dial(ctx context.Context) (*Conn, error) {
	d := net.Dialer{Timeout: c.timeout}
	nc, err := d.DialContext(ctx, c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.address, err)
	}
	return &Conn{conn: nc, r: bufio.NewReader(nc), timeout: c.timeout}, nil
}

// Conn is a connection reused across requests with KeepAlive
type Conn struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
}

// Query sends a request asking the server to keep the connection open
func (c *Conn) Query(request string) (*Response, error) {
	return c.send(request, true)
}

// Close closes the connection
func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) send(request string, keepAlive bool) (*Response, error) {
	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	if _, err := io.WriteString(c.conn, Frame(request, keepAlive)); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return ReadResponse(c.r)
}

// Frame normalizes a request for the wire: fixed16 framing is forced, the
// keep-alive directive is set as asked, and the request ends with a blank
// line
func Frame(request string, keepAlive bool) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(request, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "ResponseHeader:") || strings.HasPrefix(line, "KeepAlive:") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("ResponseHeader: fixed16\n")
	if keepAlive {
		b.WriteString("KeepAlive: on\n")
	}
	b.WriteByte('\n')
	return b.String()
}

// ReadResponse reads a 16-byte fixed header and the body it announces
func ReadResponse(r *bufio.Reader) (*Response, error) {
	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read response header: %w", err)
	}
	if header[15] != '\n' {
		return nil, fmt.Errorf("malformed response header %q", header)
	}

	status, err := strconv.Atoi(string(header[:3]))
	if err != nil {
		return nil, fmt.Errorf("malformed status in header %q", header)
	}
	length, err := strconv.Atoi(strings.TrimSpace(string(header[3:15])))
	if err != nil || length < 0 {
		return nil, fmt.Errorf("malformed length in header %q", header)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{Status: status, Body: string(body)}, nil
}
