/*
Package monitoring provides metrics collection for pipe provisioning.

# Overview

Metrics live on a dedicated Prometheus registry rather than the global one, so
several provisioners (and tests) can coexist in one process. A one-shot CLI
has no scrape endpoint; the registry is exported through the node_exporter
textfile collector format instead.

# Metrics

  - pipeprov_requests_total{operation,outcome,reason}
  - pipeprov_batches_total{operation}
  - pipeprov_batch_duration_seconds{operation}
  - pipeprov_last_batch_failed{operation}
  - pipeprov_last_run_timestamp_seconds

# Usage

	metrics := monitoring.NewMetrics()
	metrics.RecordRequest("provision", "created", "")
	metrics.RecordBatch("provision", 0, time.Since(start))

	if err := metrics.WriteTextfile("/var/lib/node_exporter/pipeprov.prom"); err != nil {
		return err
	}
*/
package monitoring
