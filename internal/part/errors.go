package part

import "fmt"

// AlreadyExistsError rejects a create with a part number that is taken.
type AlreadyExistsError struct {
	PartNumber string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("part %s already exists", e.PartNumber)
}

type NotFoundError struct {
	PartNumber string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("part %s not found", e.PartNumber)
}

// ReferencedError blocks a hard delete while ledger or usage history still
// points at the part. Deactivation is the way out.
type ReferencedError struct {
	PartNumber string
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("part %s has movement or usage history and cannot be deleted", e.PartNumber)
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid part input: " + e.Reason
}
