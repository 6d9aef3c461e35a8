// Package validation binds request data into typed request structs and
// validates them.
//
// Rules live in `validate` struct tags and are checked by the shared
// go-playground validator. Failures are converted into *errs.HTTPError with
// one errs.FieldError per failing field, named after the key the client sent.
package validation
