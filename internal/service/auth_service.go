package service

import (
	"context"
	"errors"
	"strings"

	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"
	"go-stockbook/pkg/apperr"
	"go-stockbook/pkg/jwt"
	"go-stockbook/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type RegisterInput struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	// BusinessID joins an existing business; empty bootstraps a new one.
	BusinessID uuid.UUID `json:"business_id"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if errs := validator.ValidateStruct(&input); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.InvalidInput("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperr.Conflict("user already exists")
	}

	businessID := input.BusinessID
	if businessID == uuid.Nil {
		businessID = uuid.New()
	}

	user := &model.User{
		Email:      email,
		FullName:   strings.TrimSpace(input.FullName),
		BusinessID: businessID,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, storeErr(err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.BusinessID)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}

func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, storeErr(err)
	}
	return user, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return ErrInvalidCredentials
	}
	if !user.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	if err := user.SetPassword(newPassword); err != nil {
		return storeErr(err)
	}
	return storeErr(s.userRepo.UpdatePassword(ctx, user.ID, user.Password))
}
