package models

import (
	"time"

	"gorm.io/datatypes"
)

type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusApproved EstimateStatus = "approved"
)

// Estimate is the current/live state of a priced quote against an order.
// Totals are always recomputed from the item list on write, never trusted
// from the client and never adjusted incrementally.
type Estimate struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	EstimateNumber string `json:"estimate_number" gorm:"unique;not null"`
	OrderID        uint   `json:"order_id" gorm:"not null;index"`
	Order          Order  `json:"order" gorm:"foreignKey:OrderID"`

	// Live items (latest state)
	Items []EstimateItem `json:"items" gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`

	TotalAmount     float64 `json:"total_amount" gorm:"type:numeric(12,2)"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount" gorm:"type:numeric(12,2)"`
	FinalAmount     float64 `json:"final_amount" gorm:"type:numeric(12,2)"`

	Status    EstimateStatus `json:"status" gorm:"type:varchar(16);not null;default:draft"`
	CreatedAt time.Time      `json:"created_at"`
}

type EstimateItem struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	EstimateID uint     `json:"-" gorm:"index"` // fast join
	ServiceID  *string  `json:"service_id,omitempty" gorm:"index"`
	Service    *Service `json:"-" gorm:"foreignKey:ServiceID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`

	Category  ServiceCategory `json:"category" gorm:"type:varchar(32);not null"`
	ItemName  string          `json:"item_name" gorm:"not null"`
	Quantity  float64         `json:"quantity" gorm:"type:numeric(12,3)"`
	UnitPrice float64         `json:"unit_price" gorm:"type:numeric(12,2)"`
	// quantity × unit price, recomputed on every write
	TotalPrice float64  `json:"total_price" gorm:"type:numeric(12,2)"`
	UnitType   UnitType `json:"unit_type" gorm:"type:varchar(16)"`

	// Repair category only
	ProfileType string `json:"profile_type,omitempty"`
	SystemType  string `json:"system_type,omitempty"`
	SashType    string `json:"sash_type,omitempty"`

	Notes  string         `json:"notes,omitempty" gorm:"type:text"`
	Photos datatypes.JSON `json:"photos,omitempty"`
}

// EstimateHistory is an append-only change log row. It is written on
// create/update/approve and only ever read back in order.
type EstimateHistory struct {
	ID         uint           `json:"-" gorm:"primaryKey"`
	EstimateID uint           `json:"-" gorm:"index:idx_estimate_history_estimate_changed,priority:1"`
	Action     string         `json:"action" gorm:"type:varchar(20)"` // "created" | "updated" | "approved"
	ChangedBy  string         `json:"changed_by"`
	NewValue   datatypes.JSON `json:"new_value" gorm:"type:jsonb"`
	ChangedAt  time.Time      `json:"changed_at" gorm:"index:idx_estimate_history_estimate_changed,priority:2"`
}
