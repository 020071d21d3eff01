package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DeliveryLog mirrors each dispatch outcome into MySQL for staff
// reporting. The store record stays the source of truth; rows here are
// append-only and best-effort.
type DeliveryLog struct {
	ID         uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	EventID    string         `json:"event_id" gorm:"index"`
	EventType  string         `json:"event_type"`
	Outcome    string         `json:"outcome"`
	Reason     string         `json:"reason" gorm:"type:text;default:null"`
	RetryCount int            `json:"retry_count" gorm:"default:0"`
	LastError  *string        `json:"last_error"`
	Detail     datatypes.JSON `json:"detail"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RequestLog mirrors each accepted prime request submission.
type RequestLog struct {
	ID           uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	RequestID    string         `json:"request_id" gorm:"index"`
	RequestType  string         `json:"request_type"`
	BookingID    string         `json:"booking_id" gorm:"index"`
	GuestUUID    string         `json:"guest_uuid" gorm:"index"`
	DeliveryMode string         `json:"delivery_mode"`
	Payload      datatypes.JSON `json:"payload"`
	CreatedAt    time.Time      `json:"created_at"`
}
