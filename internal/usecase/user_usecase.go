package usecase

import (
	"context"
	"strings"
	"time"

	"matchmaker/infrastructure/cache"
	"matchmaker/internal/entity"
	"matchmaker/internal/repository"
)

const (
	profileCacheTTL = time.Minute
	maxListValueLen = 500
	maxDescription  = 1000
)

type UserUsecase interface {
	Get(ctx context.Context, userId string) (entity.User, error)
	// Discover lists every other user, optionally restricted to one gender.
	Discover(ctx context.Context, userId, gender string) ([]entity.User, error)
	UpdateGender(ctx context.Context, userId, gender string) (entity.User, error)
	UpdateDescription(ctx context.Context, userId, description string) (entity.User, error)
	AddToList(ctx context.Context, userId, list, value string) (entity.User, error)
	RemoveFromList(ctx context.Context, userId, list, value string) (entity.User, error)
	Delete(ctx context.Context, userId string) error
	SetOnline(ctx context.Context, userId string, online bool) error
}

type userUsecase struct {
	userRepo         repository.UserRepository
	matchRepo        repository.MatchRepository
	messageRepo      repository.MessageRepository
	refreshTokenRepo repository.RefreshTokenRepository
	profiles         *cache.MemCache[entity.User]
}

func NewUserUsecase(
	userRepo repository.UserRepository,
	matchRepo repository.MatchRepository,
	messageRepo repository.MessageRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	profiles *cache.MemCache[entity.User],
) UserUsecase {
	return &userUsecase{
		userRepo:         userRepo,
		matchRepo:        matchRepo,
		messageRepo:      messageRepo,
		refreshTokenRepo: refreshTokenRepo,
		profiles:         profiles,
	}
}

func (u *userUsecase) Get(ctx context.Context, userId string) (entity.User, error) {
	if user, ok := u.profiles.Get(userId); ok {
		return user, nil
	}

	user, err := u.userRepo.Get(ctx, userId)
	if err != nil {
		return entity.User{}, err
	}

	user.Password = ""
	u.profiles.Set(userId, user, profileCacheTTL)
	return user, nil
}

func (u *userUsecase) Discover(ctx context.Context, userId, gender string) ([]entity.User, error) {
	if gender != "" && !entity.IsValidGender(gender) {
		return nil, ErrInvalidGender
	}

	users, err := u.userRepo.Index(ctx, entity.UserIndexFilter{
		ExcludeIds: []string{userId},
		Gender:     gender,
	})
	if err != nil {
		return nil, err
	}
	return stripPasswords(users), nil
}

func (u *userUsecase) UpdateGender(ctx context.Context, userId, gender string) (entity.User, error) {
	if !entity.IsValidGender(gender) {
		return entity.User{}, ErrInvalidGender
	}
	if err := u.userRepo.UpdateGender(ctx, userId, gender); err != nil {
		return entity.User{}, err
	}
	return u.reload(ctx, userId)
}

func (u *userUsecase) UpdateDescription(ctx context.Context, userId, description string) (entity.User, error) {
	description = strings.TrimSpace(description)
	if len(description) > maxDescription {
		return entity.User{}, ErrInvalidInput
	}
	if err := u.userRepo.UpdateDescription(ctx, userId, description); err != nil {
		return entity.User{}, err
	}
	return u.reload(ctx, userId)
}

func (u *userUsecase) AddToList(ctx context.Context, userId, list, value string) (entity.User, error) {
	value, err := listValue(list, value)
	if err != nil {
		return entity.User{}, err
	}
	if err := u.userRepo.AddToList(ctx, userId, list, value); err != nil {
		return entity.User{}, err
	}
	return u.reload(ctx, userId)
}

func (u *userUsecase) RemoveFromList(ctx context.Context, userId, list, value string) (entity.User, error) {
	value, err := listValue(list, value)
	if err != nil {
		return entity.User{}, err
	}
	if err := u.userRepo.RemoveFromList(ctx, userId, list, value); err != nil {
		return entity.User{}, err
	}
	return u.reload(ctx, userId)
}

// Delete removes the account and every trace other users hold of it.
func (u *userUsecase) Delete(ctx context.Context, userId string) error {
	if err := u.userRepo.Delete(ctx, userId); err != nil {
		return err
	}
	u.profiles.Delete(userId)

	// PullReferences rewrites every profile that mentions userId.
	err := u.userRepo.PullReferences(ctx, userId)
	u.profiles.Flush()
	if err != nil {
		return err
	}
	if err := u.matchRepo.DeleteByUser(ctx, userId); err != nil {
		return err
	}
	if err := u.messageRepo.DeleteByParticipant(ctx, userId); err != nil {
		return err
	}
	return u.refreshTokenRepo.RevokeAllByUserId(ctx, userId)
}

func (u *userUsecase) SetOnline(ctx context.Context, userId string, online bool) error {
	u.profiles.Delete(userId)
	return u.userRepo.SetOnline(ctx, userId, online)
}

func (u *userUsecase) reload(ctx context.Context, userId string) (entity.User, error) {
	u.profiles.Delete(userId)
	return u.Get(ctx, userId)
}

func listValue(list, value string) (string, error) {
	switch list {
	case entity.ListTurnOns, entity.ListLookingFor, entity.ListProfileImages:
	default:
		return "", ErrInvalidInput
	}
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxListValueLen {
		return "", ErrInvalidInput
	}
	return value, nil
}

func stripPasswords(users []entity.User) []entity.User {
	for i := range users {
		users[i].Password = ""
	}
	return users
}
