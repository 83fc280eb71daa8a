package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")

	// Payments / subscriptions
	ErrInvalidPlan    = fmt.Errorf("%w: invalid plan", ErrNotFound)
	ErrInvalidWebhook = errors.New("invalid webhook event")
	ErrUnconfigured   = errors.New("payment processing not configured")
	ErrGateway        = errors.New("payment gateway failure")
	ErrRateLimited    = errors.New("too many requests")

	// Learning
	ErrNotEnrolled = fmt.Errorf("%w: not enrolled in course", ErrNotFound)
	ErrNotStudent  = fmt.Errorf("%w: only students have learning paths", ErrForbidden)

	// Storage
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)
