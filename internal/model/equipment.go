package model

import "time"

// Equipment, WorkOrder and PMCompletion are owned by the maintenance
// scheduling side of the system. This service only reads them for history
// aggregation; nothing here writes these tables.

type Equipment struct {
	EquipmentNo string    `db:"equipment_no" json:"equipment_no"`
	Description *string   `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	MonthlyPM   bool      `db:"monthly_pm" json:"monthly_pm"`
	AnnualPM    bool      `db:"annual_pm" json:"annual_pm"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// WorkOrder is a corrective-maintenance record.
type WorkOrder struct {
	WorkOrderID      string     `db:"work_order_id" json:"work_order_id"`
	EquipmentNo      string     `db:"equipment_no" json:"equipment_no"`
	Description      *string    `db:"description" json:"description"`
	Priority         *string    `db:"priority" json:"priority"`
	Status           string     `db:"status" json:"status"`
	AssignedTo       *string    `db:"assigned_technician" json:"assigned_technician"`
	ReportedDate     time.Time  `db:"reported_date" json:"reported_date"`
	ClosedDate       *time.Time `db:"closed_date" json:"closed_date"`
	LaborHours       *float64   `db:"labor_hours" json:"labor_hours"`
	CorrectiveAction *string    `db:"corrective_action" json:"corrective_action"`
}

type PMCompletion struct {
	ID             int64     `db:"id" json:"id"`
	EquipmentNo    string    `db:"equipment_no" json:"equipment_no"`
	PMType         string    `db:"pm_type" json:"pm_type"`
	CompletionDate time.Time `db:"completion_date" json:"completion_date"`
	Technician     *string   `db:"technician_name" json:"technician_name"`
	LaborHours     *float64  `db:"labor_hours" json:"labor_hours"`
	Notes          *string   `db:"notes" json:"notes"`
}
