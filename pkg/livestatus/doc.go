/*
Package livestatus serves Livestatus queries over TCP and unix sockets.

The Engine turns one request text into one response: it parses the request
against the column registry, executes it inside a store read view, encodes
the result and applies the response framing. The Server owns the listeners
and runs one goroutine per client connection.

# Architecture

	┌───────────────────── LIVESTATUS ─────────────────────────┐
	│                                                            │
	│  client ──► Server (tcp 127.0.0.1:50000 / unix socket)    │
	│               │                                            │
	│               │  ReadRequest: lines up to a blank line     │
	│               ▼                                            │
	│             Engine.HandleRequest                           │
	│               │                                            │
	│     query.Parse ──► store.View ──► Execute ──► Encode      │
	│               │                                            │
	│               ▼                                            │
	│     "200          24\n" + body   (ResponseHeader: fixed16) │
	│               │                                            │
	│               └─► KeepAlive: on ? read next : close        │
	└────────────────────────────────────────────────────────────┘

# Request Lifecycle

A request is a GET line followed by header lines and terminated by a blank
line or end of input:

	GET services
	Columns: host_name description state
	Filter: state = 2
	OutputFormat: json
	ResponseHeader: fixed16
	KeepAlive: on

Errors never close the connection early. They are answered like any other
response, with the status in the fixed16 header when one was requested:

	404  Invalid GET request, no such table '<name>'
	450  Invalid GET request, no such column '<name>'
	452  Completely invalid GET request 'invalid Filter header'
	400  Invalid request method

Without "KeepAlive: on" the server closes the connection after the
response.

# Usage

	engine := livestatus.NewEngine(st, &livestatus.EngineConfig{PnpPath: "/var/lib/pnp4nagios"})
	server := livestatus.NewServer(engine, &livestatus.Config{
		ListenAddr: "127.0.0.1:50000",
		SocketPath: "/var/run/livestatus",
	})
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer server.Stop()

The status table reports the engine's own request and connection counters.
*/
package livestatus
