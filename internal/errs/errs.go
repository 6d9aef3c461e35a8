// Package errs defines the error types returned to API clients.
//
// Every error a handler can return maps onto one Kind, and every Kind maps
// onto exactly one HTTP status (see StatusFor). The global error handler
// renders them with the uniform failure envelope:
//
//	{ "error": "<message>", "meta": { "code": "...", "errors": [...] } }
//
// "meta" is only present when there is something beyond the message to report.
package errs
