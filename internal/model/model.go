// Package model holds the types shared across layers: the success envelope
// and the caller identity attached to every request.
package model
