package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel kinds. Every typed error below matches exactly one of these via errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports malformed or insufficient input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InsufficientStockError names the entity whose stock cannot cover a request and the shortfall.
type InsufficientStockError struct {
	Entity    string // "material" or "product"
	EntityID  int
	Name      string
	Available decimal.Decimal
	Required  decimal.Decimal
}

// Shortfall is Required minus Available.
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

func (e *InsufficientStockError) Error() string {
	label := e.Name
	if label == "" {
		label = fmt.Sprintf("#%d", e.EntityID)
	}
	return fmt.Sprintf("insufficient stock for %s %s: available %s, required %s, short by %s",
		e.Entity, label, e.Available.String(), e.Required.String(), e.Shortfall().String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidStateTransitionError reports an illegal production order transition.
type InvalidStateTransitionError struct {
	OrderID int
	From    OrderStatus
	To      OrderStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("production order %d cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (e *InvalidStateTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func notFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Decimal places stored by the NUMERIC columns.
const (
	quantityPlaces = 4
	pricePlaces    = 2
)

// checkPlaces rejects values the column would round, e.g. 0.00001 into NUMERIC(14,4).
func checkPlaces(field string, d decimal.Decimal, places int32) error {
	if !d.Equal(d.Truncate(places)) {
		return invalid(field, fmt.Sprintf("%s has more than %d decimal places", d, places))
	}
	return nil
}
