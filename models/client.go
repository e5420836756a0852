package models

import "time"

type Client struct {
	Id        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Phone     string    `json:"phone" gorm:"not null;index"`
	Email     string    `json:"email"`
	Address   string    `json:"address" gorm:"not null"`
	City      string    `json:"city"`
	Zip       string    `json:"zip"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
