// Package repository holds the MongoDB data access layer. Each entity gets an
// interface plus a mongo-backed implementation so services can be tested
// against in-memory fakes.
package repository

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateOrder is returned when an order insert collides with the
	// unique paymentIntentId index, i.e. the payment event was already
	// processed.
	ErrDuplicateOrder = errors.New("order already recorded for payment intent")

	// ErrAlreadyDelivered is returned when a delivery transition is requested
	// on an order that is already delivered.
	ErrAlreadyDelivered = errors.New("order already delivered")
)
