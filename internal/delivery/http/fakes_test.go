package http

import (
	"context"
	"errors"
	"strings"
	"sync"

	"matchmaker/internal/entity"
	"matchmaker/internal/usecase"
)

type fakeAuth struct {
	usecase.AuthUsecase
	mu        sync.Mutex
	loggedOut []string
}

func (f *fakeAuth) Register(_ context.Context, req entity.RegisterRequest, _ entity.Session) (entity.AuthResponse, error) {
	if req.Email == "taken@example.com" {
		return entity.AuthResponse{}, usecase.ErrEmailAlreadyTaken
	}
	return entity.AuthResponse{
		AccessToken:  "access",
		RefreshToken: "refresh-1",
		User:         entity.User{Id: "u1", Name: req.Name, Email: req.Email},
	}, nil
}

func (f *fakeAuth) Login(_ context.Context, req entity.LoginRequest, _ entity.Session) (entity.AuthResponse, error) {
	if req.Password != "secret1" {
		return entity.AuthResponse{}, usecase.ErrInvalidCredentials
	}
	return entity.AuthResponse{AccessToken: "access", RefreshToken: "refresh-1"}, nil
}

func (f *fakeAuth) RefreshToken(_ context.Context, token string, _ entity.Session) (entity.AuthResponse, error) {
	if token != "refresh-1" {
		return entity.AuthResponse{}, usecase.ErrRevokedRefreshToken
	}
	return entity.AuthResponse{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func (f *fakeAuth) LogoutAllDevices(context.Context, string) error {
	return nil
}

func (f *fakeAuth) ValidateAccessToken(token string) (*entity.TokenClaims, error) {
	userId, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &entity.TokenClaims{UserId: userId, Name: strings.ToUpper(userId)}, nil
}

type fakeUsers struct {
	usecase.UserUsecase
}

func (fakeUsers) Discover(_ context.Context, userId, gender string) ([]entity.User, error) {
	if gender == "robot" {
		return nil, usecase.ErrInvalidGender
	}
	return []entity.User{{Id: "other-than-" + userId, Gender: gender}}, nil
}

func (fakeUsers) Get(_ context.Context, userId string) (entity.User, error) {
	if userId == "broken" {
		return entity.User{}, errors.New("connection reset")
	}
	if userId == "ghost" {
		return entity.User{}, usecase.ErrUserNotFound
	}
	return entity.User{Id: userId}, nil
}

func (fakeUsers) UpdateGender(_ context.Context, userId, gender string) (entity.User, error) {
	return entity.User{Id: userId, Gender: gender}, nil
}

func (fakeUsers) AddToList(_ context.Context, userId, list, value string) (entity.User, error) {
	if list != entity.ListTurnOns {
		return entity.User{}, errors.New("wrong list")
	}
	return entity.User{Id: userId, TurnOns: []string{value}}, nil
}

type fakeMatches struct {
	usecase.MatchUsecase
}

func (fakeMatches) Like(_ context.Context, userId, targetId string) (entity.LikeResult, error) {
	if userId == targetId {
		return entity.LikeResult{}, usecase.ErrSelfAction
	}
	return entity.LikeResult{Mutual: true}, nil
}

func (fakeMatches) CreateMatch(context.Context, string, string) (entity.Match, error) {
	return entity.Match{}, usecase.ErrNoPendingLike
}

type fakeMessages struct {
	usecase.MessageUsecase
	mu      sync.Mutex
	filters []entity.ConversationFilter
}

func (f *fakeMessages) History(_ context.Context, requesterId string, filter entity.ConversationFilter) ([]entity.Message, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	if requesterId != filter.UserA && requesterId != filter.UserB {
		return nil, usecase.ErrNotParticipant
	}
	return []entity.Message{}, nil
}

func (f *fakeMessages) Send(_ context.Context, senderId, receiverId, text string) (entity.Message, error) {
	return entity.Message{Id: "m1", SenderId: senderId, ReceiverId: receiverId, Message: text}, nil
}

func (f *fakeMessages) Get(_ context.Context, requesterId, messageId string) (entity.Message, error) {
	if messageId != "m1" {
		return entity.Message{}, usecase.ErrMessageNotFound
	}
	if requesterId != "alice" && requesterId != "bob" {
		return entity.Message{}, usecase.ErrNotParticipant
	}
	return entity.Message{Id: "m1", SenderId: "alice", ReceiverId: "bob"}, nil
}

func (f *fakeMessages) lastFilter() entity.ConversationFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters[len(f.filters)-1]
}

type fakeProducts struct {
	usecase.ProductUsecase
}

func (fakeProducts) Index(context.Context, string) ([]entity.Product, error) {
	return []entity.Product{{Id: "p1", Name: "Rose"}}, nil
}

func (fakeProducts) Create(_ context.Context, author entity.TokenClaims, p entity.Product) (entity.Product, error) {
	p.Id = "p2"
	p.Author = author.Name
	p.CreatedBy = author.UserId
	return p, nil
}
