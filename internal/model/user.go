package model

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSupervisor UserRole = "supervisor"
	RoleTechnician UserRole = "technician"
	RoleViewer     UserRole = "viewer"
)

type User struct {
	BaseModel
	Username     string   `db:"username" json:"username"`
	PasswordHash string   `db:"password_hash" json:"-"`
	FullName     string   `db:"full_name" json:"full_name"`
	Email        *string  `db:"email" json:"email"`
	Role         UserRole `db:"role" json:"role"`
	IsActive     bool     `db:"is_active" json:"is_active"`
	CreatedBy    *string  `db:"created_by" json:"created_by"`
}
