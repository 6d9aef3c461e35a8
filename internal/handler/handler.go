// Package handler is the HTTP layer of the service.
//
// Every endpoint runs through the same pipeline (see Handle): bind the
// request sources into a typed request, validate it, call exactly one
// service method and write the result inside the success envelope. Errors
// are returned to echo and rendered by the global error handler.
package handler
