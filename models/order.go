package models

import "time"

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusAssigned   OrderStatus = "assigned"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusNew:        0,
	OrderStatusAssigned:   1,
	OrderStatusInProgress: 2,
	OrderStatusCompleted:  3,
}

// CanTransition reports whether the status may move to the given one.
// The lifecycle is linear and forward-only; cancellation is allowed from
// any non-terminal state.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s == OrderStatusCompleted || s == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	from, ok := orderStatusRank[s]
	next, ok2 := orderStatusRank[to]
	return ok && ok2 && next == from+1
}

// Order is a client's repair request tracked through its status lifecycle.
type Order struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	ClientID    uint        `json:"client_id" gorm:"not null;index"`
	Client      Client      `json:"client" gorm:"foreignKey:ClientID;references:Id"`
	Address     string      `json:"address" gorm:"not null"`
	Problem     string      `json:"problem" gorm:"type:text"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(16);not null;default:new;index"`
	WorkerID    *string     `json:"worker_id" gorm:"index"`
	Worker      *User       `json:"worker,omitempty" gorm:"foreignKey:WorkerID;references:Id"`
	ScheduledAt *time.Time  `json:"scheduled_at"`
	CreatedAt   time.Time   `json:"created_at"`
}
