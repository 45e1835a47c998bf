package service

import (
	"context"

	"land-steward-backend/internal/model"
	"land-steward-backend/internal/repository"
	apperrors "land-steward-backend/pkg/app_errors"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Authenticate(ctx context.Context, req model.LoginRequest) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
	UpdateAvatar(ctx context.Context, id int, avatarPath string) error
}

type UserServiceImpl struct {
	repository repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &UserServiceImpl{repository: repo}
}

func (s *UserServiceImpl) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repository.Create(ctx, &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
}

// Authenticate 帳號不存在與密碼錯誤回同一個錯誤, 不洩漏哪個 email 已註冊
func (s *UserServiceImpl) Authenticate(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	user, err := s.repository.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.repository.FindByID(ctx, id)
}

func (s *UserServiceImpl) UpdateAvatar(ctx context.Context, id int, avatarPath string) error {
	return s.repository.UpdateAvatar(ctx, id, avatarPath)
}
