/*
Package metrics provides Prometheus metrics and health endpoints for the
livestatus daemon.

All metrics are registered on the default Prometheus registry at package
init and exposed by NewMux on /metrics, next to the /health, /ready and
/live endpoints.

# Architecture

	┌──────────────────── METRICS ─────────────────────────────┐
	│                                                            │
	│  livestatus engine ──► RequestsTotal{table,status}        │
	│                        RequestDuration{table}             │
	│  livestatus server ──► ConnectionsTotal                   │
	│  feed consumer     ──► EventsApplied{type}                │
	│                        EventsRejected{type}               │
	│  Collector (15s)   ──► ObjectsTotal{table}                │
	│                                                            │
	│  ┌──────────────────────────────────────────────┐         │
	│  │  NewMux                                       │         │
	│  │   /metrics  promhttp.Handler()                │         │
	│  │   /health   all components                    │         │
	│  │   /ready    critical components               │         │
	│  │   /live     process is up                     │         │
	│  └──────────────────────────────────────────────┘         │
	└────────────────────────────────────────────────────────────┘

# Metrics

Query metrics:
  - livestatus_requests_total{table,status}: one per answered request; the
    table label is "unknown" when the request named no valid table
  - livestatus_request_duration_seconds{table}: parse to encoded response
  - livestatus_connections_total: accepted client connections

Feed metrics:
  - livestatus_events_applied_total{type}: by brok type
  - livestatus_events_rejected_total{type}: unknown keys, malformed payloads;
    undecodable records use type "invalid"

Store metrics:
  - livestatus_objects_total{table}: rows per table, refreshed by Collector

# Usage

Timing an operation:

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.RequestDuration, table)

Exporting store sizes:

	collector := metrics.NewCollector(st)
	collector.Start()
	defer collector.Stop()

Health:

	metrics.RegisterComponent("feed", false, "starting")
	...
	metrics.UpdateComponent("feed", true, "")

The readiness endpoint reports unready until every critical component
("store", "feed", "livestatus") is registered healthy.

# Example Queries

Request rate by table:

	sum by (table) (rate(livestatus_requests_total[5m]))

Error ratio:

	sum(rate(livestatus_requests_total{status!="200"}[5m]))
	  / sum(rate(livestatus_requests_total[5m]))

p99 latency:

	histogram_quantile(0.99, rate(livestatus_request_duration_seconds_bucket[5m]))

Feed rejections:

	sum by (type) (rate(livestatus_events_rejected_total[5m]))
*/
package metrics
