package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TxSale     TransactionKind = "sale"
	TxPurchase TransactionKind = "purchase"
)

// Transaction is an immutable ledger entry. Once committed it is never
// updated or deleted; corrections happen through new transactions or
// direct stock adjustments.
type Transaction struct {
	BaseModel
	BusinessID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_tx_business_date" json:"business_id"`
	Kind        TransactionKind   `gorm:"type:varchar(10);not null" json:"kind" validate:"required,oneof=sale purchase"`
	ContactID   uuid.UUID         `gorm:"type:uuid;not null" json:"contact_id"`
	Contact     *Contact          `json:"contact,omitempty" validate:"-"`
	Items       []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
	TotalAmount decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	Date        time.Time         `gorm:"not null;index:idx_tx_business_date" json:"date"`
}

// TransactionItem snapshots the product price at commit time. UnitPrice
// is never re-derived from the product afterwards.
type TransactionItem struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Product       *Product        `json:"product,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
}
