// Package service contains the business rules of the code template domain.
//
// Services receive validated inputs from the handlers, enforce the rules
// that depend on stored state and call the repositories.
package service
