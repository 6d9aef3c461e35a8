// Package middleware holds the echo middlewares of the service: gateway and
// session identity, request ids, request-scoped logging, New Relic tracing,
// rate limiting and the global error handler that renders every failure as
// the API error envelope.
package middleware
