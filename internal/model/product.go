package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	BusinessID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"business_id"`
	Name        string          `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category" validate:"required"`
}
