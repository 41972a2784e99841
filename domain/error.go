// Package domain defines error types for the storefront client.
package domain

import (
	"errors"
	"fmt"
)

// AuthRequiredError is returned when an action needs a logged-in user
// and no auth token is present. Raised locally; no network call is made.
type AuthRequiredError struct {
	Action string
}

// Error implements the error interface for AuthRequiredError
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("login required: action=%s", e.Action)
}

// Is allows proper error type checking with errors.Is()
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// DuplicateItemError is returned when an initial "add to cart" targets a
// product already in the cart. The quantity must be adjusted from the
// cart view instead.
type DuplicateItemError struct {
	ProductID string
}

// Error implements the error interface for DuplicateItemError
func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("item already in cart: productId=%s, use the cart view to adjust quantity", e.ProductID)
}

// Is allows proper error type checking with errors.Is()
func (e *DuplicateItemError) Is(target error) bool {
	_, ok := target.(*DuplicateItemError)
	return ok
}

// ServiceError is returned when a backend call fails, either at the
// transport level or with a non-2xx response.
type ServiceError struct {
	Op     string
	Status int
	Err    error
}

// Error implements the error interface for ServiceError
func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("service call failed: op=%s, status=%d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("service call failed: op=%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is allows proper error type checking with errors.Is()
func (e *ServiceError) Is(target error) bool {
	_, ok := target.(*ServiceError)
	return ok
}

// NoProductsError is returned when a product search matches nothing.
type NoProductsError struct {
	Query string
}

// Error implements the error interface for NoProductsError
func (e *NoProductsError) Error() string {
	return fmt.Sprintf("no products found: query=%q", e.Query)
}

// Is allows proper error type checking with errors.Is()
func (e *NoProductsError) Is(target error) bool {
	_, ok := target.(*NoProductsError)
	return ok
}

// Helper functions for creating errors with context

// NewAuthRequiredError creates a new AuthRequiredError
func NewAuthRequiredError(action string) error {
	return &AuthRequiredError{Action: action}
}

// NewDuplicateItemError creates a new DuplicateItemError
func NewDuplicateItemError(productID string) error {
	return &DuplicateItemError{ProductID: productID}
}

// NewServiceError creates a new ServiceError
func NewServiceError(op string, status int, err error) error {
	return &ServiceError{Op: op, Status: status, Err: err}
}

// NewNoProductsError creates a new NoProductsError
func NewNoProductsError(query string) error {
	return &NoProductsError{Query: query}
}

// Type assertion helpers for use with errors.As()

// IsAuthRequiredError checks if an error is an AuthRequiredError
func IsAuthRequiredError(err error) bool {
	var are *AuthRequiredError
	return errors.As(err, &are)
}

// IsDuplicateItemError checks if an error is a DuplicateItemError
func IsDuplicateItemError(err error) bool {
	var die *DuplicateItemError
	return errors.As(err, &die)
}

// IsServiceError checks if an error is a ServiceError
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// IsNoProductsError checks if an error is a NoProductsError
func IsNoProductsError(err error) bool {
	var npe *NoProductsError
	return errors.As(err, &npe)
}
