package feed

import (
	"context"
	"fmt"
	"io"

	"github.com/cuemby/livestatus/pkg/events"
	"github.com/nxadm/tail"
)

// TailLog follows a monitoring log file and applies every line as a log
// event. With fromStart the existing content is read first; otherwise only
// lines appended after the call are applied. It returns when ctx is
// cancelled.
func (c *Consumer) TailLog(ctx context.Context, path string, fromStart bool) error {
	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	if fromStart {
		location = &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Location:  location,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to tail %s: %w", path, err)
	}
	defer t.Cleanup()

	c.logger.Info().Str("path", path).Msg("Following monitoring log")

	for {
		select {
		case <-ctx.Done():
			return t.Stop()

		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				c.logger.Warn().Err(line.Err).Str("path", path).Msg("Failed to read log line")
				continue
			}
			if line.Text == "" {
				continue
			}
			if err := c.Apply(events.LogLine{Line: line.Text}); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to store log line")
			}
		}
	}
}
