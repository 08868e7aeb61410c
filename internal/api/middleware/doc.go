// Package middleware provides the HTTP middleware stack of the workspace API.
//
// Middleware stack includes:
//   - RequestID: X-Request-ID propagation with req_* ids
//   - AccessLog: one zap line per request, level by status class
//   - CORS: cross-origin access for the editor frontend
//   - RateLimit: per-IP token buckets with idle client eviction
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.AccessLog(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
