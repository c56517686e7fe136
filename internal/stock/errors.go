package stock

import "fmt"

// ValidationError covers bad input shape. It is always raised before any
// storage access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid consumption input: " + e.Reason
}

// DuplicatePartError rejects a batch that lists the same part twice.
type DuplicatePartError struct {
	PartNumber string
}

func (e *DuplicatePartError) Error() string {
	return fmt.Sprintf("part %s appears more than once in the batch", e.PartNumber)
}

// BusyError reports that another writer held the distributed lock for the
// same resource through all retries.
type BusyError struct {
	Key string
}

func (e *BusyError) Error() string {
	return "system busy, please try again later"
}

type PartNotFoundError struct {
	PartNumber string
}

func (e *PartNotFoundError) Error() string {
	return fmt.Sprintf("part %s not found", e.PartNumber)
}

type PartInactiveError struct {
	PartNumber string
}

func (e *PartInactiveError) Error() string {
	return fmt.Sprintf("part %s is inactive", e.PartNumber)
}

type OutOfStockError struct {
	PartNumber string
	Available  float64
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("part %s is out of stock (available: %g)", e.PartNumber, e.Available)
}

// InsufficientStockError carries both quantities so the caller can present an
// actionable message.
type InsufficientStockError struct {
	PartNumber string
	Requested  float64
	Available  float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("part %s: requested %g exceeds available %g", e.PartNumber, e.Requested, e.Available)
}
