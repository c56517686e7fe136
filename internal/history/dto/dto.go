package dto

import "time"

// HealthMetrics summarizes the last 12 months of maintenance activity for one
// piece of equipment.
type HealthMetrics struct {
	EquipmentNo     string   `json:"equipment_no"`
	HealthScore     int      `json:"health_score"`
	PMCompliance    int      `json:"pm_compliance"`
	CMFrequency     float64  `json:"cm_frequency"`
	LaborHours      float64  `json:"labor_hours"`
	PartsCount      int      `json:"parts_count"`
	Status          string   `json:"status"`
	Recommendations []string `json:"recommendations"`
}

type TimelineEvent struct {
	Date     time.Time `json:"date"`
	Type     string    `json:"type"`
	Category string    `json:"category"`
	Title    string    `json:"title"`
	Details  string    `json:"details"`
	Notes    string    `json:"notes"`
	Color    string    `json:"color"`
}

// TrendData holds per-calendar-month series, oldest month first. All slices
// have the same length as Months.
type TrendData struct {
	Months            []string  `json:"months"`
	MonthlyPMCounts   []int     `json:"monthly_pm_counts"`
	MonthlyCMCounts   []int     `json:"monthly_cm_counts"`
	MonthlyLaborHours []float64 `json:"monthly_labor_hours"`
}

// UsageEvent is one parts-consumption entry joined with its work order for
// equipment attribution.
type UsageEvent struct {
	Date        time.Time `db:"recorded_at" json:"date"`
	PartNumber  string    `db:"part_number" json:"part_number"`
	ModelNumber *string   `db:"model_number" json:"model_number"`
	Quantity    float64   `db:"quantity_used" json:"quantity"`
	WorkOrderID string    `db:"work_order_id" json:"work_order_id"`
	RecordedBy  string    `db:"recorded_by" json:"recorded_by"`
	Notes       string    `db:"notes" json:"notes"`
}

// StatusChange is an equipment status transition read back from the audit
// trail.
type StatusChange struct {
	Date      time.Time `db:"created_at" json:"date"`
	Actor     string    `db:"actor" json:"actor"`
	OldValues *string   `db:"old_values" json:"old_values"`
	NewValues *string   `db:"new_values" json:"new_values"`
}
