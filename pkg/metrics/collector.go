package metrics

import (
	"time"
)

// ObjectCounter reports the number of rows per table
type ObjectCounter interface {
	ObjectCounts() map[string]int
}

// Collector periodically copies the store's object counts into
// ObjectsTotal
type Collector struct {
	source   ObjectCounter
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(source ObjectCounter) *Collector {
	return &Collector{
		source:   source,
		interval: 15 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	for table, n := range c.source.ObjectCounts() {
		ObjectsTotal.WithLabelValues(table).Set(float64(n))
	}
}
