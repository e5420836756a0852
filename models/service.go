package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceCategory string

const (
	CategoryMosquitoScreen ServiceCategory = "mosquito_screen"
	CategoryRollerBlind    ServiceCategory = "roller_blind"
	CategoryRepair         ServiceCategory = "repair"
)

func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryMosquitoScreen, CategoryRollerBlind, CategoryRepair:
		return true
	}
	return false
}

type UnitType string

const (
	UnitPiece       UnitType = "piece"
	UnitMeter       UnitType = "meter"
	UnitSquareMeter UnitType = "square_meter"
	UnitCubicMeter  UnitType = "cubic_meter"
	UnitLinearMeter UnitType = "linear_meter"
)

func (u UnitType) Valid() bool {
	switch u {
	case UnitPiece, UnitMeter, UnitSquareMeter, UnitCubicMeter, UnitLinearMeter:
		return true
	}
	return false
}

// Service is a priced catalog entry; selecting one pre-fills an estimate
// line item's unit and price.
type Service struct {
	Id        string          `json:"id" gorm:"primaryKey"`
	Name      string          `json:"name" gorm:"not null"`
	Category  ServiceCategory `json:"category" gorm:"type:varchar(32);not null;index"`
	UnitType  UnitType        `json:"unit_type" gorm:"type:varchar(16);not null"`
	BasePrice float64         `json:"base_price" gorm:"type:numeric(12,2)"`
	Active    bool            `json:"-"`
}

func (service *Service) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	service.Id = uuid.NewString()
	return
}
