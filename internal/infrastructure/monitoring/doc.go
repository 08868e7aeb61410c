/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the workspace
backend, tracking HTTP requests, workspace mutations, slot persistence and
WebSocket subscribers.

# Features

- HTTP request metrics (latency, throughput, size)
- Workspace size gauges (nodes, open tabs)
- Mutation counters and operation latency per op
- Persistence write outcomes and load fallbacks per slot
- WebSocket connection metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "move")
	// ... perform operation ...
	timer.Stop("success")
*/
package monitoring
