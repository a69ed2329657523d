package feed

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/cuemby/livestatus/pkg/events"
	"github.com/cuemby/livestatus/pkg/log"
	"github.com/cuemby/livestatus/pkg/metrics"
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/rs/zerolog"
)

// maxRecordSize bounds one JSON line; initial host status records with
// many custom variables can exceed bufio's default 64KiB
const maxRecordSize = 4 << 20

// Stats counts the outcome of consuming a stream
type Stats struct {
	Applied  int
	Rejected int
	Invalid  int
}

func (s *Stats) add(o Stats) {
	s.Applied += o.Applied
	s.Rejected += o.Rejected
	s.Invalid += o.Invalid
}

// Consumer applies feed records to a store. Bad records are logged and
// counted, never fatal: the store has to stay queryable under a partially
// inconsistent upstream.
type Consumer struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewConsumer creates a consumer writing to s
func NewConsumer(s *store.Store) *Consumer {
	return &Consumer{
		store:  s,
		logger: log.WithComponent("feed"),
	}
}

// Apply applies one typed event
func (c *Consumer) Apply(ev events.Event) error {
	if err := c.store.Apply(ev); err != nil {
		metrics.EventsRejected.WithLabelValues(string(ev.Type())).Inc()
		return err
	}
	metrics.EventsApplied.WithLabelValues(string(ev.Type())).Inc()
	return nil
}

// ApplyRecord decodes one JSON record and applies it
func (c *Consumer) ApplyRecord(line []byte) error {
	ev, err := Decode(line)
	if err != nil {
		metrics.EventsRejected.WithLabelValues("invalid").Inc()
		return err
	}
	return c.Apply(ev)
}

// Consume applies JSON records read from r, one per line, until EOF or
// until ctx is cancelled
func (c *Consumer) Consume(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		ev, err := Decode(line)
		if err != nil {
			stats.Invalid++
			metrics.EventsRejected.WithLabelValues("invalid").Inc()
			c.logger.Warn().Err(err).Msg("Skipping undecodable feed record")
			continue
		}
		if err := c.Apply(ev); err != nil {
			// The store already logged the rejection with its key
			stats.Rejected++
			continue
		}
		stats.Applied++
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		return stats, fmt.Errorf("failed to read feed: %w", err)
	}
	return stats, nil
}

// ReplayFile consumes a file of JSON records
func (c *Consumer) ReplayFile(ctx context.Context, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open feed file: %w", err)
	}
	defer f.Close()

	stats, err := c.Consume(ctx, f)
	if err != nil {
		return stats, err
	}

	c.logger.Info().
		Str("path", path).
		Int("applied", stats.Applied).
		Int("rejected", stats.Rejected).
		Int("invalid", stats.Invalid).
		Msg("Feed file replayed")
	return stats, nil
}
