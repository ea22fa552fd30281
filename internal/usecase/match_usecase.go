package usecase

import (
	"context"
	"errors"

	"matchmaker/infrastructure/cache"
	"matchmaker/internal/entity"
	"matchmaker/internal/repository"

	log "github.com/sirupsen/logrus"
)

type MatchUsecase interface {
	Like(ctx context.Context, userId, targetId string) (entity.LikeResult, error)
	ReceivedLikes(ctx context.Context, userId string) ([]entity.User, error)
	CreateMatch(ctx context.Context, userId, targetId string) (entity.Match, error)
	Matches(ctx context.Context, userId string) ([]entity.User, error)
	Unmatch(ctx context.Context, userId, targetId string) error
}

type matchUsecase struct {
	userRepo  repository.UserRepository
	matchRepo repository.MatchRepository
	cached    *cache.MemCache[entity.User]
	notifier  Notifier
}

// NewMatchUsecase shares the profile cache with UserUsecase so that likes
// and matches drop the stale entries of both users.
func NewMatchUsecase(
	userRepo repository.UserRepository,
	matchRepo repository.MatchRepository,
	cached *cache.MemCache[entity.User],
	notifier Notifier,
) MatchUsecase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &matchUsecase{
		userRepo:  userRepo,
		matchRepo: matchRepo,
		cached:    cached,
		notifier:  notifier,
	}
}

// Like records a one-directional like. It never creates a match; Mutual
// tells the caller that targetId already likes userId.
func (m *matchUsecase) Like(ctx context.Context, userId, targetId string) (entity.LikeResult, error) {
	if userId == targetId {
		return entity.LikeResult{}, ErrSelfAction
	}

	user, err := m.userRepo.Get(ctx, userId)
	if err != nil {
		return entity.LikeResult{}, err
	}
	if user.IsMatchedWith(targetId) {
		return entity.LikeResult{}, ErrAlreadyMatched
	}

	err = m.userRepo.AddLike(ctx, userId, targetId)
	m.invalidate(userId, targetId)
	if err != nil {
		return entity.LikeResult{}, err
	}

	// Read after write: of two concurrent opposite likes at least one
	// observes the other.
	user, err = m.userRepo.Get(ctx, userId)
	if err != nil {
		return entity.LikeResult{}, err
	}
	return entity.LikeResult{Mutual: user.IsLikedBy(targetId)}, nil
}

func (m *matchUsecase) ReceivedLikes(ctx context.Context, userId string) ([]entity.User, error) {
	user, err := m.userRepo.Get(ctx, userId)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(user.ReceivedLikes))
	for _, id := range user.ReceivedLikes {
		if !user.IsMatchedWith(id) {
			ids = append(ids, id)
		}
	}
	return m.profiles(ctx, ids)
}

// CreateMatch turns a received like into a match. Calling it again for an
// existing match returns that match unchanged.
func (m *matchUsecase) CreateMatch(ctx context.Context, userId, targetId string) (entity.Match, error) {
	if userId == targetId {
		return entity.Match{}, ErrSelfAction
	}

	user, err := m.userRepo.Get(ctx, userId)
	if err != nil {
		return entity.Match{}, err
	}
	if _, err := m.userRepo.Get(ctx, targetId); err != nil {
		return entity.Match{}, err
	}

	if !user.IsLikedBy(targetId) {
		existing, err := m.matchRepo.GetByPair(ctx, userId, targetId)
		if err == nil {
			return existing, nil
		}
		if errors.Is(err, repository.ErrMatchNotFound) {
			return entity.Match{}, ErrNoPendingLike
		}
		return entity.Match{}, err
	}

	match, err := m.matchRepo.Upsert(ctx, userId, targetId)
	if err != nil {
		return entity.Match{}, err
	}
	err = m.userRepo.LinkMatch(ctx, userId, targetId)
	m.invalidate(userId, targetId)
	if err != nil {
		return entity.Match{}, err
	}

	log.WithFields(log.Fields{"matchId": match.Id, "users": match.Users}).Info("match created")

	m.notifier.Notify(targetId, entity.EventNewMatch, entity.MatchNotification{MatchId: match.Id, UserId: userId})
	m.notifier.Notify(userId, entity.EventNewMatch, entity.MatchNotification{MatchId: match.Id, UserId: targetId})

	return match, nil
}

func (m *matchUsecase) Matches(ctx context.Context, userId string) ([]entity.User, error) {
	user, err := m.userRepo.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	return m.profiles(ctx, user.Matches)
}

func (m *matchUsecase) Unmatch(ctx context.Context, userId, targetId string) error {
	if userId == targetId {
		return ErrSelfAction
	}
	if err := m.matchRepo.DeleteByPair(ctx, userId, targetId); err != nil {
		return err
	}
	err := m.userRepo.UnlinkMatch(ctx, userId, targetId)
	m.invalidate(userId, targetId)
	return err
}

// invalidate runs even when the write failed; a partial update may have
// touched either user.
func (m *matchUsecase) invalidate(ids ...string) {
	if m.cached == nil {
		return
	}
	for _, id := range ids {
		m.cached.Delete(id)
	}
}

func (m *matchUsecase) profiles(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	users, err := m.userRepo.Index(ctx, entity.UserIndexFilter{Ids: ids})
	if err != nil {
		return nil, err
	}
	return stripPasswords(users), nil
}
