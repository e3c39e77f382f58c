package models

// Role yang dikenali oleh lifecycle
const (
	RoleCustomer   = "customer"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

type User struct {
	Base
	FirstName string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null" json:"last_name"`
	Email     string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Role      string `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive  bool   `gorm:"not null" json:"is_active"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u User) IsTechnician() bool {
	return u.Role == RoleTechnician
}
