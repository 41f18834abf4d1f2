package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"
	"go-stockbook/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostTransaction_SaleCommitsAndDecrementsStock(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "alice@example.com")
	p1 := env.seedProduct(t, business, "P1", 5, 10)

	txn, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items:     []LineItemInput{{ProductID: p1.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.True(t, txn.TotalAmount.Equal(decimal.NewFromInt(30)), "total should be 3 x 10, got %s", txn.TotalAmount)
	require.Len(t, txn.Items, 1)
	assert.True(t, txn.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 2, env.reloadProduct(t, business, p1.ID).Stock)

	// A second sale of 3 must fail: only 2 remain.
	_, err = env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items:     []LineItemInput{{ProductID: p1.ID, Quantity: 3}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientStock), "got %v", err)
	assert.Equal(t, 2, env.reloadProduct(t, business, p1.ID).Stock, "rejected sale must not touch stock")
}

func TestPostTransaction_PurchaseIncrementsStockExactly(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	vendor := env.seedContact(t, business, model.ContactVendor, "acme@example.com")
	product := env.seedProduct(t, business, "widget", 7, 4)

	txn, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxPurchase,
		ContactID: vendor.ID,
		Items:     []LineItemInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, env.reloadProduct(t, business, product.ID).Stock)
	assert.True(t, txn.TotalAmount.Equal(decimal.NewFromInt(20)))
}

func TestPostTransaction_RejectsWrongCounterpartyKind(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "bob@example.com")
	product := env.seedProduct(t, business, "widget", 3, 5)

	_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxPurchase,
		ContactID: customer.ID,
		Items:     []LineItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
	assert.Contains(t, err.Error(), "vendor")
	assert.Equal(t, 3, env.reloadProduct(t, business, product.ID).Stock)
}

func TestPostTransaction_RejectsUnknownCounterparty(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	product := env.seedProduct(t, business, "widget", 3, 5)

	_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: uuid.New(),
		Items:     []LineItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestPostTransaction_CounterpartyFromOtherTenantIsInvalid(t *testing.T) {
	env := newTestEnv(t)
	businessA := uuid.New()
	businessB := uuid.New()
	foreignCustomer := env.seedContact(t, businessB, model.ContactCustomer, "eve@example.com")
	product := env.seedProduct(t, businessA, "widget", 3, 5)

	_, err := env.posting.PostTransaction(context.Background(), businessA, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: foreignCustomer.ID,
		Items:     []LineItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestPostTransaction_EnumeratesAllMissingProducts(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "carol@example.com")
	known := env.seedProduct(t, business, "known", 10, 1)
	missing1 := uuid.New()
	missing2 := uuid.New()

	_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items: []LineItemInput{
			{ProductID: known.ID, Quantity: 1},
			{ProductID: missing1, Quantity: 1},
			{ProductID: missing2, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	assert.Contains(t, err.Error(), missing1.String())
	assert.Contains(t, err.Error(), missing2.String())
	assert.Equal(t, 10, env.reloadProduct(t, business, known.ID).Stock)
}

func TestPostTransaction_TenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	businessA := uuid.New()
	businessB := uuid.New()
	customerA := env.seedContact(t, businessA, model.ContactCustomer, "dan@example.com")
	foreignProduct := env.seedProduct(t, businessB, "theirs", 50, 2)

	_, err := env.posting.PostTransaction(context.Background(), businessA, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customerA.ID,
		Items:     []LineItemInput{{ProductID: foreignProduct.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	assert.Equal(t, 50, env.reloadProduct(t, businessB, foreignProduct.ID).Stock)
}

func TestPostTransaction_EmptyItemsRejected(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "erin@example.com")

	_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items:     []LineItemInput{},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestPostTransaction_NonPositiveQuantityRejected(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "frank@example.com")
	product := env.seedProduct(t, business, "widget", 3, 5)

	for _, quantity := range []int{0, -2} {
		_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
			Kind:      model.TxSale,
			ContactID: customer.ID,
			Items:     []LineItemInput{{ProductID: product.ID, Quantity: quantity}},
		})
		require.Error(t, err, "quantity %d must be rejected", quantity)
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
	}
	assert.Equal(t, 3, env.reloadProduct(t, business, product.ID).Stock)
}

func TestPostTransaction_InvalidKindRejected(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "gina@example.com")
	product := env.seedProduct(t, business, "widget", 3, 5)

	_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      "refund",
		ContactID: customer.ID,
		Items:     []LineItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestPostTransaction_MixedBatchIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "hank@example.com")
	plenty := env.seedProduct(t, business, "plenty", 10, 1)
	scarce := env.seedProduct(t, business, "scarce", 1, 1)

	_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items: []LineItemInput{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientStock))
	assert.Contains(t, err.Error(), "scarce")

	// Neither product may change, including the one that had stock.
	assert.Equal(t, 10, env.reloadProduct(t, business, plenty.ID).Stock)
	assert.Equal(t, 1, env.reloadProduct(t, business, scarce.ID).Stock)

	var count int64
	require.NoError(t, env.db.Model(&model.Transaction{}).Where("business_id = ?", business).Count(&count).Error)
	assert.Zero(t, count, "no ledger entry may exist for a rejected batch")
}

func TestPostTransaction_DuplicateLineItemsAccumulate(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "iris@example.com")
	product := env.seedProduct(t, business, "widget", 5, 10)

	txn, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items: []LineItemInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, env.reloadProduct(t, business, product.ID).Stock)
	assert.Len(t, txn.Items, 2)
	assert.True(t, txn.TotalAmount.Equal(decimal.NewFromInt(30)))

	// Each line alone fits the remaining 2, accumulated they do not.
	_, err = env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items: []LineItemInput{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: product.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientStock))
	assert.Equal(t, 2, env.reloadProduct(t, business, product.ID).Stock)
}

func TestPostTransaction_TotalSurvivesLaterPriceChange(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "judy@example.com")
	product := env.seedProduct(t, business, "widget", 5, 10)

	txn, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items:     []LineItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// Reprice the product after the commit.
	newPrice := decimal.NewFromInt(99)
	require.NoError(t, env.db.Model(&model.Product{}).Where("id = ?", product.ID).Update("price", newPrice).Error)

	stored, err := env.txRepo.FindByID(context.Background(), business, txn.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(20)), "total must keep price at commit time")
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
}

func TestPostTransaction_ConcurrentPurchasesLoseNoUpdates(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	vendor := env.seedContact(t, business, model.ContactVendor, "supply@example.com")
	product := env.seedProduct(t, business, "widget", 0, 1)

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
				Kind:      model.TxPurchase,
				ContactID: vendor.ID,
				Items:     []LineItemInput{{ProductID: product.ID, Quantity: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, workers, env.reloadProduct(t, business, product.ID).Stock, "every increment must survive")

	var count int64
	require.NoError(t, env.db.Model(&model.Transaction{}).Where("business_id = ?", business).Count(&count).Error)
	assert.Equal(t, int64(workers), count)
}

func TestPostTransaction_ConcurrentSalesNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "rush@example.com")
	product := env.seedProduct(t, business, "widget", 10, 1)

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
				Kind:      model.TxSale,
				ContactID: customer.ID,
				Items:     []LineItemInput{{ProductID: product.ID, Quantity: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.True(t, apperr.IsCode(err, apperr.CodeInsufficientStock), "unexpected failure: %v", err)
		}
	}

	assert.Equal(t, 10, succeeded, "exactly the available stock may be sold")
	assert.Equal(t, 0, env.reloadProduct(t, business, product.ID).Stock)
}

// vanishingProductRepo deletes the victim product right after the
// in-transaction snapshot read, so the guard update hits zero rows.
type vanishingProductRepo struct {
	repository.ProductRepository
	victim uuid.UUID
}

func (r *vanishingProductRepo) FindByIDs(tx *gorm.DB, businessID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	products, err := r.ProductRepository.FindByIDs(tx, businessID, ids)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("business_id = ?", businessID).Delete(&model.Product{}, "id = ?", r.victim).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// failingTxRepo refuses every ledger insert.
type failingTxRepo struct {
	repository.TransactionRepository
}

func (r *failingTxRepo) Insert(tx *gorm.DB, transaction *model.Transaction) error {
	return errors.New("ledger write refused")
}

func TestPostTransaction_ProductVanishingMidCommitConflicts(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "van@example.com")
	product := env.seedProduct(t, business, "widget", 5, 10)

	posting := NewPostingService(env.db,
		&vanishingProductRepo{ProductRepository: env.productRepo, victim: product.ID},
		env.contactRepo, env.txRepo, nil)

	_, err := posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items:     []LineItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict), "got %v", err)
	assert.Contains(t, err.Error(), "deleted during posting")

	var count int64
	require.NoError(t, env.db.Model(&model.Transaction{}).Where("business_id = ?", business).Count(&count).Error)
	assert.Zero(t, count, "no ledger entry may survive the rollback")
}

func TestPostTransaction_LedgerInsertFailureRollsBackStock(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "roll@example.com")
	first := env.seedProduct(t, business, "first", 10, 3)
	second := env.seedProduct(t, business, "second", 7, 4)

	posting := NewPostingService(env.db, env.productRepo, env.contactRepo,
		&failingTxRepo{TransactionRepository: env.txRepo}, nil)

	_, err := posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items: []LineItemInput{
			{ProductID: first.ID, Quantity: 2},
			{ProductID: second.ID, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnavailable), "got %v", err)

	// The deltas were applied before the insert; the rollback must undo
	// every one of them.
	assert.Equal(t, 10, env.reloadProduct(t, business, first.ID).Stock)
	assert.Equal(t, 7, env.reloadProduct(t, business, second.ID).Stock)

	var count int64
	require.NoError(t, env.db.Model(&model.Transaction{}).Where("business_id = ?", business).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostTransaction_ListFiltersByKind(t *testing.T) {
	env := newTestEnv(t)
	business := uuid.New()
	customer := env.seedContact(t, business, model.ContactCustomer, "kate@example.com")
	vendor := env.seedContact(t, business, model.ContactVendor, "mills@example.com")
	product := env.seedProduct(t, business, "widget", 5, 2)

	_, err := env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxPurchase,
		ContactID: vendor.ID,
		Items:     []LineItemInput{{ProductID: product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	_, err = env.posting.PostTransaction(context.Background(), business, PostTransactionInput{
		Kind:      model.TxSale,
		ContactID: customer.ID,
		Items:     []LineItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	sales, total, err := env.reports.GetTransactionReport(context.Background(), business, repository.TransactionFilter{Kind: model.TxSale})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, sales, 1)
	assert.Equal(t, model.TxSale, sales[0].Kind)
	require.Len(t, sales[0].Items, 1)
	assert.Equal(t, 2, sales[0].Items[0].Quantity)

	// Other tenants see nothing.
	_, otherTotal, err := env.reports.GetTransactionReport(context.Background(), uuid.New(), repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, otherTotal)
}
