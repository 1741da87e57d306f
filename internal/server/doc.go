// Package server exposes the chart matcher over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps the whole router and runs in the order it was added, so CORS preflights and
// unknown paths pass through the same stack as registered routes.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Middleware
//
//   - [RequestID] tags each request with a UUID echoed in X-Request-ID
//   - [AccessLog] writes one structured log line per request
//   - [RateLimit] applies a shared token bucket and answers 429 when it runs dry
//   - [CORS] allows browser clients from configured origins
//   - [Recoverer] turns handler panics into 500 responses
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface and list their own [Route] values, keeping route
// definitions next to the implementation. [API] is the chart service:
//
//	POST /chart          playlist metrics -> closest Stand
//	POST /chart/tracks   per-track analyses -> aggregated metrics -> closest Stand
//	GET  /stands         reference table
//	GET  /stands/{name}  one reference row
//	GET  /health         liveness
//
// The reference table is obtained through a [stands.Handle], so it is loaded on the first request that
// needs it and shared by every request after that.
package server
