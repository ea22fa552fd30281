package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"matchmaker/internal/entity"
	"matchmaker/internal/repository"
	"matchmaker/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase interface {
	Register(ctx context.Context, req entity.RegisterRequest, session entity.Session) (entity.AuthResponse, error)
	Login(ctx context.Context, req entity.LoginRequest, session entity.Session) (entity.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string, session entity.Session) (entity.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAllDevices(ctx context.Context, userId string) error
	ValidateAccessToken(token string) (*entity.TokenClaims, error)
}

type authUsecase struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtManager       *jwt.JWTManager
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtManager *jwt.JWTManager,
) AuthUsecase {
	return &authUsecase{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtManager:       jwtManager,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *authUsecase) Register(ctx context.Context, req entity.RegisterRequest, session entity.Session) (entity.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return entity.AuthResponse{}, ErrInvalidInput
	}
	if req.Gender != "" && !entity.IsValidGender(req.Gender) {
		return entity.AuthResponse{}, ErrInvalidGender
	}

	exists, err := u.userRepo.EmailExists(ctx, email)
	if err != nil {
		return entity.AuthResponse{}, err
	}
	if exists {
		return entity.AuthResponse{}, ErrEmailAlreadyTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return entity.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := entity.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Gender:   req.Gender,
	}

	userId, err := u.userRepo.Create(ctx, user)
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return entity.AuthResponse{}, ErrEmailAlreadyTaken
		}
		return entity.AuthResponse{}, err
	}
	user.Id = userId

	return u.issueTokens(ctx, user, session)
}

func (u *authUsecase) Login(ctx context.Context, req entity.LoginRequest, session entity.Session) (entity.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return entity.AuthResponse{}, ErrInvalidCredentials
		}
		return entity.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return entity.AuthResponse{}, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, user, session)
}

func (u *authUsecase) RefreshToken(ctx context.Context, refreshTokenString string, session entity.Session) (entity.AuthResponse, error) {
	refreshToken, err := u.refreshTokenRepo.GetByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return entity.AuthResponse{}, ErrInvalidRefreshToken
		}
		return entity.AuthResponse{}, err
	}

	if refreshToken.IsRevoked {
		return entity.AuthResponse{}, ErrRevokedRefreshToken
	}
	if refreshToken.Expired(time.Now()) {
		return entity.AuthResponse{}, ErrExpiredRefreshToken
	}

	user, err := u.userRepo.Get(ctx, refreshToken.UserId)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return entity.AuthResponse{}, ErrInvalidRefreshToken
		}
		return entity.AuthResponse{}, err
	}

	// Rotation: the old token is single-use.
	revoked, err := u.refreshTokenRepo.Revoke(ctx, refreshTokenString)
	if err != nil {
		return entity.AuthResponse{}, err
	}
	if !revoked {
		return entity.AuthResponse{}, ErrRevokedRefreshToken
	}

	return u.issueTokens(ctx, user, session)
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	_, err := u.refreshTokenRepo.Revoke(ctx, refreshToken)
	return err
}

func (u *authUsecase) LogoutAllDevices(ctx context.Context, userId string) error {
	return u.refreshTokenRepo.RevokeAllByUserId(ctx, userId)
}

func (u *authUsecase) ValidateAccessToken(token string) (*entity.TokenClaims, error) {
	return u.jwtManager.ValidateAccessToken(token)
}

func (u *authUsecase) issueTokens(ctx context.Context, user entity.User, session entity.Session) (entity.AuthResponse, error) {
	accessToken, err := u.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return entity.AuthResponse{}, fmt.Errorf("generate access token: %w", err)
	}

	refreshTokenString, err := u.jwtManager.GenerateRefreshToken()
	if err != nil {
		return entity.AuthResponse{}, fmt.Errorf("generate refresh token: %w", err)
	}

	err = u.refreshTokenRepo.Create(ctx, entity.RefreshToken{
		UserId:     user.Id,
		Token:      refreshTokenString,
		ExpiresAt:  u.jwtManager.GetRefreshTokenExpiration(),
		DeviceInfo: session.DeviceInfo,
		IpAddress:  session.IpAddress,
	})
	if err != nil {
		return entity.AuthResponse{}, err
	}

	user.Password = ""

	return entity.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user,
	}, nil
}
