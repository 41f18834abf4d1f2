package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"
	"go-stockbook/internal/ws"
	"go-stockbook/pkg/apperr"
	"go-stockbook/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// postTimeout bounds the whole atomic commit. Expiry aborts and rolls
// back; the operation is never left half-applied.
const postTimeout = 5 * time.Second

type LineItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type PostTransactionInput struct {
	Kind      model.TransactionKind `json:"kind" validate:"required,oneof=sale purchase"`
	ContactID uuid.UUID             `json:"contact_id" validate:"uuid_required"`
	Items     []LineItemInput       `json:"items" validate:"required,min=1,dive"`
}

type PostingService interface {
	PostTransaction(ctx context.Context, businessID uuid.UUID, input PostTransactionInput) (*model.Transaction, error)
}

type postingService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	contactRepo repository.ContactRepository
	txRepo      repository.TransactionRepository
	hub         *ws.Hub
}

func NewPostingService(db *gorm.DB, pRepo repository.ProductRepository, cRepo repository.ContactRepository, tRepo repository.TransactionRepository, hub *ws.Hub) PostingService {
	return &postingService{
		db:          db,
		productRepo: pRepo,
		contactRepo: cRepo,
		txRepo:      tRepo,
		hub:         hub,
	}
}

// PostTransaction validates and atomically commits a sale or purchase:
// stock deltas for every line item plus one immutable ledger row, all
// inside a single database transaction. Any failure rolls everything
// back. The call is not idempotent; resubmission posts again.
func (s *postingService) PostTransaction(ctx context.Context, businessID uuid.UUID, input PostTransactionInput) (*model.Transaction, error) {
	if errs := validator.ValidateStruct(&input); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.InvalidInput("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()

	contact, err := s.contactRepo.FindByID(ctx, businessID, input.ContactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCounterparty(input.Kind)
		}
		return nil, storeErr(err)
	}
	if contact.Kind != counterpartyKind(input.Kind) {
		return nil, invalidCounterparty(input.Kind)
	}

	// Signed deltas per product; duplicate product ids in one batch
	// accumulate. Sorted ids fix the row update order so concurrent
	// postings on overlapping products cannot deadlock.
	deltas := make(map[uuid.UUID]int, len(input.Items))
	for _, item := range input.Items {
		if input.Kind == model.TxSale {
			deltas[item.ProductID] -= item.Quantity
		} else {
			deltas[item.ProductID] += item.Quantity
		}
	}
	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var committed *model.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.productRepo.FindByIDs(tx, businessID, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		if len(products) != len(ids) {
			var missing []string
			for _, id := range ids {
				if _, ok := byID[id]; !ok {
					missing = append(missing, id.String())
				}
			}
			return apperr.NotFound("products not found: %s", strings.Join(missing, ", "))
		}

		// Check the whole batch against the snapshot before writing
		// anything: one failing line item rejects every line item.
		for _, id := range ids {
			product := byID[id]
			if product.Stock+deltas[id] < 0 {
				return apperr.InsufficientStock("insufficient stock for product %s: %d available", product.Name, product.Stock)
			}
		}

		// Apply deltas in fixed id order. The guard clause re-checks the
		// floor at write time, so a concurrent sale slipping in between
		// the snapshot and this update still cannot drive stock negative.
		for _, id := range ids {
			rows, err := s.productRepo.ApplyStockDelta(tx, businessID, id, deltas[id])
			if err != nil {
				return err
			}
			if rows == 0 {
				return stockConflict(tx, businessID, byID[id])
			}
		}

		items := make([]model.TransactionItem, 0, len(input.Items))
		total := decimal.Zero
		for _, item := range input.Items {
			product := byID[item.ProductID]
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			items = append(items, model.TransactionItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
		}

		transaction := &model.Transaction{
			BusinessID:  businessID,
			Kind:        input.Kind,
			ContactID:   contact.ID,
			Items:       items,
			TotalAmount: total,
			Date:        time.Now(),
		}
		if err := s.txRepo.Insert(tx, transaction); err != nil {
			return err
		}
		committed = transaction
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	go s.hub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": "transaction_posted",
		"transaction": map[string]interface{}{
			"id":           committed.ID,
			"kind":         committed.Kind,
			"total_amount": committed.TotalAmount,
			"items":        len(committed.Items),
		},
	})

	return committed, nil
}

func counterpartyKind(kind model.TransactionKind) model.ContactKind {
	if kind == model.TxSale {
		return model.ContactCustomer
	}
	return model.ContactVendor
}

func invalidCounterparty(kind model.TransactionKind) error {
	if kind == model.TxSale {
		return apperr.InvalidInput("invalid contact_id: must refer to a valid customer")
	}
	return apperr.InvalidInput("invalid contact_id: must refer to a valid vendor")
}

// stockConflict explains a zero-row guard update: either the product
// vanished mid-operation or a concurrent writer drained its stock
// between the snapshot read and the write.
func stockConflict(tx *gorm.DB, businessID uuid.UUID, snapshot model.Product) error {
	var current model.Product
	err := tx.First(&current, "business_id = ? AND id = ?", businessID, snapshot.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Conflict("product %s was deleted during posting", snapshot.ID)
	}
	if err != nil {
		return err
	}
	return apperr.InsufficientStock("insufficient stock for product %s: %d available", current.Name, current.Stock)
}
