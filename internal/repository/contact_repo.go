package repository

import (
	"context"
	"strings"

	"go-stockbook/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactFilter struct {
	Kind   model.ContactKind
	Search string
	Page   int
	Limit  int
}

type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	FindAll(ctx context.Context, businessID uuid.UUID, filter ContactFilter) ([]model.Contact, int64, error)
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.Contact, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
}

type contactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db}
}

// IsDuplicateEmail reports whether err is the unique violation on the
// per-business email index.
func IsDuplicateEmail(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func (r *contactRepo) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepo) FindAll(ctx context.Context, businessID uuid.UUID, filter ContactFilter) ([]model.Contact, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Contact{}).Where("business_id = ?", businessID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageWindow(filter.Page, filter.Limit, 20)

	var contacts []model.Contact
	err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&contacts).Error
	return contacts, total, err
}

func (r *contactRepo) FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.WithContext(ctx).First(&contact, "business_id = ? AND id = ?", businessID, id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) Update(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *contactRepo) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("business_id = ?", businessID).Delete(&model.Contact{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
