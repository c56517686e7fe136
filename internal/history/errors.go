package history

import "fmt"

type EquipmentNotFoundError struct {
	EquipmentNo string
}

func (e *EquipmentNotFoundError) Error() string {
	return fmt.Sprintf("equipment %s not found", e.EquipmentNo)
}

// DataUnavailable wraps any storage failure during aggregation. The caller
// gets no partial results.
type DataUnavailable struct {
	Cause error
}

func (e *DataUnavailable) Error() string {
	return "history data unavailable: " + e.Cause.Error()
}

func (e *DataUnavailable) Unwrap() error {
	return e.Cause
}
