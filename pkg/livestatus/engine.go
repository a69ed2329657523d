package livestatus

import (
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/cuemby/livestatus/pkg/columns"
	"github.com/cuemby/livestatus/pkg/log"
	"github.com/cuemby/livestatus/pkg/metrics"
	"github.com/cuemby/livestatus/pkg/output"
	"github.com/cuemby/livestatus/pkg/query"
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/rs/zerolog"
)

// Version is reported in the livestatus_version column of the status table
const Version = "1.0.0"

// EngineConfig tunes the query engine
type EngineConfig struct {
	PnpPath string
}

// Engine answers livestatus requests against a store. It is safe for
// concurrent use; every request reads one consistent store snapshot.
type Engine struct {
	store    *store.Store
	registry *columns.Registry
	logger   zerolog.Logger

	requests    atomic.Int64
	connections atomic.Int64
}

// NewEngine creates an engine over s
func NewEngine(s *store.Store, config *EngineConfig) *Engine {
	if config == nil {
		config = &EngineConfig{}
	}
	e := &Engine{
		store:  s,
		logger: log.WithComponent("livestatus"),
	}
	e.registry = columns.NewRegistry(columns.Options{
		PnpPath:  config.PnpPath,
		Counters: e,
		Version:  Version,
	})
	return e
}

// Registry returns the tables served by the engine
func (e *Engine) Registry() *columns.Registry {
	return e.registry
}

// Requests returns the number of requests handled so far
func (e *Engine) Requests() int64 {
	return e.requests.Load()
}

// Connections returns the number of connections accepted so far
func (e *Engine) Connections() int64 {
	return e.connections.Load()
}

// connectionOpened is called by the server for each accepted connection
func (e *Engine) connectionOpened() {
	e.connections.Add(1)
	metrics.ConnectionsTotal.Inc()
}

// HandleRequest answers one request and reports whether the client asked
// to keep the connection open. Errors are rendered into the response; the
// engine never fails a request any other way.
func (e *Engine) HandleRequest(request string) (string, bool) {
	e.requests.Add(1)
	timer := metrics.NewTimer()

	q, err := query.Parse(request, e.registry)

	table := "unknown"
	if q.Table != nil {
		table = q.Table.Name
	}

	var body string
	if err == nil {
		err = e.store.View(func(tx *store.Tx) error {
			res, err := q.Execute(tx)
			if err != nil {
				return err
			}
			body, err = q.Encode(res)
			return err
		})
	}

	status := query.Status(err)
	if err != nil {
		body = errorBody(err) + "\n"
		e.logger.Debug().
			Str("table", table).
			Int("status", status).
			Err(err).
			Msg("Request failed")
	}

	metrics.RequestsTotal.WithLabelValues(table, strconv.Itoa(status)).Inc()
	timer.ObserveDurationVec(metrics.RequestDuration, table)

	if q.Fixed16 {
		body = output.Fixed16(status, body)
	}
	return body, q.KeepAlive
}

func errorBody(err error) string {
	var reqErr *query.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return err.Error()
}
