package dto

import "time"

type MovementFilters struct {
	PartNumber   string
	MovementType string
	Reference    string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}
