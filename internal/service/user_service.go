package service

import (
	"VoteFight/internal/api/dto"
	"VoteFight/internal/model"
	"VoteFight/internal/pkg/security"
	"VoteFight/internal/repository"
	"context"
)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterDTO) (*dto.TokenDTO, error)
	Login(ctx context.Context, req *dto.CredentialDTO) (*dto.TokenDTO, error)
}

type userServiceImpl struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterDTO) (*dto.TokenDTO, error) {
	exist, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrUserExist
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: &req.Username,
		Password: &hashed,
	}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		if isDuplicateError(err) {
			return nil, ErrUserExist
		}
		return nil, err
	}

	return s.issueToken(user)
}

func (s *userServiceImpl) Login(ctx context.Context, req *dto.CredentialDTO) (*dto.TokenDTO, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDelete {
		return nil, ErrUserNotFound
	}
	if user.IsBan {
		return nil, ErrUserBan
	}
	if user.Password == nil || security.CheckPasswordHash(req.Password, *user.Password) != nil {
		return nil, ErrPasswordIncorrect
	}

	return s.issueToken(user)
}

func (s *userServiceImpl) issueToken(user *model.User) (*dto.TokenDTO, error) {
	token, err := security.GenerateToken(user.ID, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &dto.TokenDTO{UserID: user.ID, Token: token}, nil
}
