package model

import "github.com/google/uuid"

// ContactKind distinguishes counterparties: customers buy from the
// business (sales), vendors sell to it (purchases).
type ContactKind string

const (
	ContactCustomer ContactKind = "customer"
	ContactVendor   ContactKind = "vendor"
)

type Contact struct {
	BaseModel
	BusinessID uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_contacts_business_email" json:"business_id"`
	Kind       ContactKind `gorm:"type:varchar(10);not null;index" json:"kind" validate:"required,oneof=customer vendor"`
	Name       string      `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email      string      `gorm:"type:varchar(255);not null;uniqueIndex:idx_contacts_business_email" json:"email" validate:"required,email"`
	Phone      string      `gorm:"type:varchar(30)" json:"phone"`
	Address    string      `gorm:"type:text" json:"address"`
}
