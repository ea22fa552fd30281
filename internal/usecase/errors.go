package usecase

import (
	"errors"

	"matchmaker/internal/repository"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailAlreadyTaken   = errors.New("email already taken")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
	ErrRevokedRefreshToken = errors.New("refresh token has been revoked")

	ErrInvalidGender = errors.New("gender must be male, female or other")
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")

	ErrSelfAction     = errors.New("cannot perform this action on yourself")
	ErrAlreadyMatched = errors.New("users are already matched")
	ErrNoPendingLike  = errors.New("selected user has not liked you")

	ErrNotParticipant = errors.New("you are not a participant of this conversation")
	ErrInvalidMessage = errors.New("message must be between 1 and 2000 characters")

	ErrUserNotFound    = repository.ErrUserNotFound
	ErrMatchNotFound   = repository.ErrMatchNotFound
	ErrProductNotFound = repository.ErrProductNotFound
	ErrMessageNotFound = repository.ErrMessageNotFound
)

// Notifier pushes a real-time event to every connection in a user's room.
type Notifier interface {
	Notify(userId, event string, data any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, any) {}
