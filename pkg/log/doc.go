/*
Package log provides structured logging for the livestatus daemon using zerolog.

A single global zerolog.Logger is configured once via Init. Packages derive child
loggers carrying a "component" field (store, feed, server, query) so that output
can be filtered per subsystem:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	logger := log.WithComponent("store")
	logger.Warn().
		Str("table", "hosts").
		Str("key", "web-01").
		Msg("update for unknown object ignored")

Console output is used unless JSONOutput is set. Until Init is called the logger
discards everything, which keeps package tests quiet.
*/
package log
