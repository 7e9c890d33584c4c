// Package server provides the HTTP REST API for gift analysis.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBodyTooLarge indicates a request body over the accepted size
type ErrBodyTooLarge struct {
	Limit int64
}

func (e *ErrBodyTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// ErrUnknownCharacters indicates none of the requested characters exist in the catalog
type ErrUnknownCharacters struct {
	IDs []string
}

func (e *ErrUnknownCharacters) Error() string {
	return fmt.Sprintf("unknown characters: %s", strings.Join(e.IDs, ", "))
}

// ErrInvalidCredentials indicates a wrong admin password
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid password"
}

// ErrRunNotFound indicates a stored analysis run does not exist
type ErrRunNotFound struct {
	RunID uuid.UUID
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("run not found: %s", e.RunID)
}

// ErrFeatureDisabled indicates an endpoint whose backing service is not configured
type ErrFeatureDisabled struct {
	Feature string
}

func (e *ErrFeatureDisabled) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	case *ErrUnknownCharacters, *ErrRunNotFound:
		return http.StatusNotFound
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrFeatureDisabled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
