package livestatus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/cuemby/livestatus/pkg/log"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultListenAddr is the conventional livestatus TCP port
	DefaultListenAddr = "127.0.0.1:50000"
)

// Server accepts livestatus connections on TCP and/or a unix socket
type Server struct {
	engine     *Engine
	listenAddr string
	socketPath string

	mu        sync.RWMutex
	running   bool
	listeners []net.Listener
	conns     map[net.Conn]struct{}
	wg        sync.WaitGroup

	logger zerolog.Logger
}

// Config holds server configuration
type Config struct {
	ListenAddr string // TCP address (default: 127.0.0.1:50000)
	SocketPath string // Unix socket path, optional
}

// NewServer creates a new livestatus server
func NewServer(engine *Engine, config *Config) *Server {
	if config == nil {
		config = &Config{ListenAddr: DefaultListenAddr}
	}
	if config.ListenAddr == "" && config.SocketPath == "" {
		config.ListenAddr = DefaultListenAddr
	}

	return &Server{
		engine:     engine,
		listenAddr: config.ListenAddr,
		socketPath: config.SocketPath,
		conns:      make(map[net.Conn]struct{}),
		logger:     log.WithComponent("livestatus"),
	}
}

// Start opens the listeners and serves connections until Stop is called or
// ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("livestatus server already running")
	}

	var listeners []net.Listener
	if s.listenAddr != "" {
		l, err := net.Listen("tcp", s.listenAddr)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
		}
		listeners = append(listeners, l)
	}
	if s.socketPath != "" {
		// Stale socket from a previous run
		if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			closeAll(listeners)
			s.mu.Unlock()
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
		l, err := net.Listen("unix", s.socketPath)
		if err != nil {
			closeAll(listeners)
			s.mu.Unlock()
			return fmt.Errorf("failed to listen on %s: %w", s.socketPath, err)
		}
		listeners = append(listeners, l)
	}

	s.listeners = listeners
	s.running = true
	s.wg.Add(len(listeners))
	s.mu.Unlock()

	for _, l := range listeners {
		s.logger.Info().
			Str("address", l.Addr().String()).
			Str("network", l.Addr().Network()).
			Msg("Livestatus server started")

		go s.serve(l)
	}

	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			s.logger.Error().Err(err).Msg("Failed to stop livestatus server")
		}
	}()
	return nil
}

// Stop closes the listeners and every open connection, then waits for the
// connection handlers to return
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false

	s.logger.Info().Msg("Stopping livestatus server")

	var firstErr error
	for _, l := range s.listeners {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.listeners = nil
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return firstErr
}

// IsRunning returns whether the server is running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addrs returns the bound addresses, useful when listening on port 0
func (s *Server) Addrs() []net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := make([]net.Addr, len(s.listeners))
	for i, l := range s.listeners {
		addrs[i] = l.Addr()
	}
	return addrs
}

func (s *Server) serve(l net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := l.Accept()
		if err != nil {
			if !s.IsRunning() {
				return
			}
			s.logger.Error().Err(err).Msg("Accept failed")
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.handleConn(conn)

			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
		}()
	}
}

// handleConn answers requests on conn until the client closes it or a
// response is sent without keep-alive
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	logger := log.WithConn(s.logger, uuid.New().String())
	logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Connection opened")
	defer logger.Debug().Msg("Connection closed")

	s.engine.connectionOpened()

	r := bufio.NewReader(conn)
	for {
		request, err := ReadRequest(r)
		if request == "" {
			if err != nil && !errors.Is(err, io.EOF) && s.IsRunning() {
				logger.Warn().Err(err).Msg("Failed to read request")
			}
			return
		}

		response, keepAlive := s.engine.HandleRequest(request)
		if _, werr := io.WriteString(conn, response); werr != nil {
			logger.Warn().Err(werr).Msg("Failed to write response")
			return
		}
		if !keepAlive || err != nil {
			return
		}
	}
}

// ReadRequest reads one request: every line up to the first blank line or
// the end of the stream. Blank lines before the request are skipped. The
// returned error is non-nil only when the stream ended or failed; a request
// read before that is still returned.
func ReadRequest(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			if b.Len() > 0 {
				return b.String(), err
			}
			if err != nil {
				return "", err
			}
			continue
		}
		b.WriteString(trimmed)
		b.WriteByte('\n')
		if err != nil {
			return b.String(), err
		}
	}
}

func closeAll(listeners []net.Listener) {
	for _, l := range listeners {
		l.Close()
	}
}
