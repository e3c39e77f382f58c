package models

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	Base
	Rating       int     `gorm:"not null" json:"rating"`
	Comment      *string `gorm:"type:text" json:"comment,omitempty"`
	IsPublic     bool    `gorm:"not null" json:"is_public"`
	RequestID    string  `gorm:"type:varchar(36);not null;uniqueIndex" json:"request_id"`
	CustomerID   string  `gorm:"type:varchar(36);not null;index" json:"customer_id"`
	TechnicianID string  `gorm:"type:varchar(36);not null;index" json:"technician_id"`
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
