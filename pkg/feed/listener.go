package feed

import (
	"context"
	"fmt"
	"net"
	"sync"
)

// Listener accepts broker connections streaming JSON records
type Listener struct {
	consumer   *Consumer
	listenAddr string

	mu       sync.Mutex
	running  bool
	listener net.Listener
	conns    map[net.Conn]struct{}
	stats    Stats
	wg       sync.WaitGroup
}

// NewListener creates a feed listener on addr
func NewListener(consumer *Consumer, addr string) *Listener {
	return &Listener{
		consumer:   consumer,
		listenAddr: addr,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start begins accepting connections. Each connection is consumed until
// the peer closes it, Stop is called or ctx is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("feed listener already running")
	}

	ln, err := net.Listen("tcp", l.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.listenAddr, err)
	}
	l.listener = ln
	l.running = true

	l.consumer.logger.Info().
		Str("address", ln.Addr().String()).
		Msg("Feed listener started")

	l.wg.Add(1)
	go l.serve(ctx, ln)

	go func() {
		<-ctx.Done()
		l.Stop()
	}()
	return nil
}

// Stop closes the listener and all feed connections
func (l *Listener) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = false

	err := l.listener.Close()
	for conn := range l.conns {
		conn.Close()
	}
	l.mu.Unlock()

	l.wg.Wait()
	return err
}

// Addr returns the bound address, or nil when not running
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

// Stats returns the totals over all finished connections
func (l *Listener) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Listener) serve(ctx context.Context, ln net.Listener) {
	defer l.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			l.mu.Lock()
			running := l.running
			l.mu.Unlock()
			if running {
				l.consumer.logger.Error().Err(err).Msg("Feed accept failed")
			}
			return
		}

		l.mu.Lock()
		if !l.running {
			l.mu.Unlock()
			conn.Close()
			return
		}
		l.conns[conn] = struct{}{}
		l.wg.Add(1)
		l.mu.Unlock()

		go func() {
			defer l.wg.Done()
			defer conn.Close()

			logger := l.consumer.logger.With().Str("remote", conn.RemoteAddr().String()).Logger()
			logger.Debug().Msg("Feed connection opened")

			stats, err := l.consumer.Consume(ctx, conn)
			if err != nil {
				logger.Warn().Err(err).Msg("Feed connection failed")
			}

			l.mu.Lock()
			delete(l.conns, conn)
			l.stats.add(stats)
			l.mu.Unlock()

			logger.Debug().
				Int("applied", stats.Applied).
				Int("rejected", stats.Rejected).
				Msg("Feed connection closed")
		}()
	}
}
