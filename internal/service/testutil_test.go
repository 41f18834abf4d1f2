package service

import (
	"testing"

	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database. A single connection
// serializes writers the way Postgres row locks would, so concurrent
// posting tests exercise the same all-or-nothing semantics.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Contact{},
		&model.Transaction{},
		&model.TransactionItem{},
	))
	return db
}

type testEnv struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	contactRepo repository.ContactRepository
	txRepo      repository.TransactionRepository
	posting     PostingService
	products    ProductService
	contacts    ContactService
	reports     ReportService
	dashboard   DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	productRepo := repository.NewProductRepo(db)
	contactRepo := repository.NewContactRepo(db)
	txRepo := repository.NewTransactionRepo(db)

	return &testEnv{
		db:          db,
		productRepo: productRepo,
		contactRepo: contactRepo,
		txRepo:      txRepo,
		posting:     NewPostingService(db, productRepo, contactRepo, txRepo, nil),
		products:    NewProductService(db, productRepo, nil),
		contacts:    NewContactService(contactRepo),
		reports:     NewReportService(txRepo, productRepo),
		dashboard:   NewDashboardService(txRepo),
	}
}

func (e *testEnv) seedProduct(t *testing.T, businessID uuid.UUID, name string, stock int, price int64) *model.Product {
	t.Helper()

	product := &model.Product{
		BusinessID: businessID,
		Name:       name,
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
		Category:   "general",
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *testEnv) seedContact(t *testing.T, businessID uuid.UUID, kind model.ContactKind, email string) *model.Contact {
	t.Helper()

	contact := &model.Contact{
		BusinessID: businessID,
		Kind:       kind,
		Name:       string(kind) + " " + email,
		Email:      email,
		Address:    "somewhere",
	}
	require.NoError(t, e.db.Create(contact).Error)
	return contact
}

func (e *testEnv) reloadProduct(t *testing.T, businessID, id uuid.UUID) *model.Product {
	t.Helper()

	var product model.Product
	require.NoError(t, e.db.First(&product, "business_id = ? AND id = ?", businessID, id).Error)
	return &product
}
