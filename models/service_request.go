package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestAccepted   RequestStatus = "accepted"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
	RequestRejected   RequestStatus = "rejected"
)

// RequestStatuses lists every lifecycle state in workflow order.
var RequestStatuses = []RequestStatus{
	RequestPending,
	RequestAccepted,
	RequestInProgress,
	RequestCompleted,
	RequestCancelled,
	RequestRejected,
}

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:    {RequestAccepted, RequestRejected, RequestCancelled},
	RequestAccepted:   {RequestInProgress, RequestCancelled},
	RequestInProgress: {RequestCompleted, RequestCancelled},
}

// CanTransition reports whether the workflow graph has an edge from -> to.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseRequestStatus accepts the snake_case form in any letter case.
func ParseRequestStatus(s string) (RequestStatus, bool) {
	status := RequestStatus(strings.ToLower(strings.TrimSpace(s)))
	return status, status.Valid()
}

func (s RequestStatus) Valid() bool {
	for _, known := range RequestStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s RequestStatus) IsTerminal() bool {
	return s == RequestCompleted || s == RequestCancelled || s == RequestRejected
}

// Payable is false once the request was called off.
func (s RequestStatus) Payable() bool {
	return s != RequestCancelled && s != RequestRejected
}

// Address is the customer location a technician travels to.
type Address struct {
	Street         string `gorm:"type:varchar(255)" json:"street"`
	City           string `gorm:"type:varchar(100)" json:"city"`
	State          string `gorm:"type:varchar(100)" json:"state"`
	PostalCode     string `gorm:"type:varchar(20)" json:"postal_code"`
	Country        string `gorm:"type:varchar(100)" json:"country"`
	AdditionalInfo string `gorm:"type:text" json:"additional_info,omitempty"`
}

type ServiceRequest struct {
	Base
	Description        string          `gorm:"type:text;not null" json:"description"`
	CustomerLocation   Address         `gorm:"embedded;embeddedPrefix:location_" json:"customer_location"`
	Status             RequestStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	ScheduledDate      time.Time       `gorm:"not null" json:"scheduled_date"`
	StartedAt          *time.Time      `json:"started_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CancellationReason *string         `gorm:"type:text" json:"cancellation_reason,omitempty"`
	RejectionReason    *string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	CustomerID         string          `gorm:"type:varchar(36);not null;index" json:"customer_id"`
	TechnicianID       *string         `gorm:"type:varchar(36);index" json:"technician_id,omitempty"`
	ServiceID          string          `gorm:"type:varchar(36);not null;index" json:"service_id"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

// Duration returns the time between start and completion when both are known.
func (r *ServiceRequest) Duration() (time.Duration, bool) {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0, false
	}
	return r.CompletedAt.Sub(*r.StartedAt), true
}

func (r *ServiceRequest) AssignedTechnician() string {
	if r.TechnicianID == nil {
		return ""
	}
	return *r.TechnicianID
}
