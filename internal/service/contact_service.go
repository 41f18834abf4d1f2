package service

import (
	"context"
	"errors"
	"strings"

	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"
	"go-stockbook/pkg/apperr"
	"go-stockbook/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateContactInput struct {
	Name    string            `json:"name" validate:"required"`
	Email   string            `json:"email" validate:"required,email"`
	Phone   string            `json:"phone"`
	Address string            `json:"address" validate:"required"`
	Kind    model.ContactKind `json:"kind" validate:"required,oneof=customer vendor"`
}

type UpdateContactInput struct {
	Name    *string            `json:"name"`
	Email   *string            `json:"email"`
	Phone   *string            `json:"phone"`
	Address *string            `json:"address"`
	Kind    *model.ContactKind `json:"kind"`
}

type ContactService interface {
	CreateContact(ctx context.Context, businessID uuid.UUID, input CreateContactInput) (*model.Contact, error)
	GetContacts(ctx context.Context, businessID uuid.UUID, filter repository.ContactFilter) ([]model.Contact, int64, error)
	GetContact(ctx context.Context, businessID, id uuid.UUID) (*model.Contact, error)
	UpdateContact(ctx context.Context, businessID, id uuid.UUID, input UpdateContactInput) (*model.Contact, error)
	DeleteContact(ctx context.Context, businessID, id uuid.UUID) error
}

type contactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(cRepo repository.ContactRepository) ContactService {
	return &contactService{contactRepo: cRepo}
}

func (s *contactService) CreateContact(ctx context.Context, businessID uuid.UUID, input CreateContactInput) (*model.Contact, error) {
	if errs := validator.ValidateStruct(&input); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.InvalidInput("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	contact := &model.Contact{
		BusinessID: businessID,
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:      strings.TrimSpace(input.Phone),
		Address:    strings.TrimSpace(input.Address),
		Kind:       input.Kind,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		if repository.IsDuplicateEmail(err) {
			return nil, apperr.InvalidInput("email already exists for this business")
		}
		return nil, storeErr(err)
	}
	return contact, nil
}

func (s *contactService) GetContacts(ctx context.Context, businessID uuid.UUID, filter repository.ContactFilter) ([]model.Contact, int64, error) {
	contacts, total, err := s.contactRepo.FindAll(ctx, businessID, filter)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return contacts, total, nil
}

func (s *contactService) GetContact(ctx context.Context, businessID, id uuid.UUID) (*model.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contact not found")
		}
		return nil, storeErr(err)
	}
	return contact, nil
}

func (s *contactService) UpdateContact(ctx context.Context, businessID, id uuid.UUID, input UpdateContactInput) (*model.Contact, error) {
	if input.Kind != nil && *input.Kind != model.ContactCustomer && *input.Kind != model.ContactVendor {
		return nil, apperr.InvalidInput("kind must be either 'customer' or 'vendor'")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	contact, err := s.contactRepo.FindByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contact not found")
		}
		return nil, storeErr(err)
	}

	if input.Name != nil {
		contact.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		contact.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		contact.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		contact.Address = strings.TrimSpace(*input.Address)
	}
	if input.Kind != nil {
		contact.Kind = *input.Kind
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		if repository.IsDuplicateEmail(err) {
			return nil, apperr.InvalidInput("email already exists for this business")
		}
		return nil, storeErr(err)
	}
	return contact, nil
}

func (s *contactService) DeleteContact(ctx context.Context, businessID, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.contactRepo.Delete(ctx, businessID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("contact not found")
		}
		return storeErr(err)
	}
	return nil
}
