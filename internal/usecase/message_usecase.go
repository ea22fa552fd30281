package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"matchmaker/internal/entity"
	"matchmaker/internal/repository"
)

const (
	maxMessageLen       = 2000
	defaultHistoryLimit = 100
	maxHistoryLimit     = 500
)

type MessageUsecase interface {
	// Send persists the message and emits it to the receiver's room.
	Send(ctx context.Context, senderId, receiverId, text string) (entity.Message, error)
	// Get returns one message; only its sender or receiver may read it.
	Get(ctx context.Context, requesterId, messageId string) (entity.Message, error)
	History(ctx context.Context, requesterId string, filter entity.ConversationFilter) ([]entity.Message, error)
	Delete(ctx context.Context, requesterId string, messageIds []string) (int64, error)
}

type messageUsecase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	now         func() time.Time
}

func NewMessageUsecase(messageRepo repository.MessageRepository, userRepo repository.UserRepository, notifier Notifier) MessageUsecase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &messageUsecase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (m *messageUsecase) Send(ctx context.Context, senderId, receiverId, text string) (entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxMessageLen {
		return entity.Message{}, ErrInvalidMessage
	}
	if senderId == receiverId {
		return entity.Message{}, ErrSelfAction
	}
	if _, err := m.userRepo.Get(ctx, receiverId); err != nil {
		return entity.Message{}, err
	}

	message, err := m.messageRepo.Create(ctx, entity.Message{
		SenderId:   senderId,
		ReceiverId: receiverId,
		Message:    text,
		// Mongo stores milliseconds.
		Timestamp: m.now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		return entity.Message{}, err
	}

	m.notifier.Notify(receiverId, entity.EventReceiveMessage, message)
	return message, nil
}

func (m *messageUsecase) Get(ctx context.Context, requesterId, messageId string) (entity.Message, error) {
	message, err := m.messageRepo.Get(ctx, messageId)
	if err != nil {
		return entity.Message{}, err
	}
	if message.SenderId != requesterId && message.ReceiverId != requesterId {
		return entity.Message{}, ErrNotParticipant
	}
	return message, nil
}

func (m *messageUsecase) History(ctx context.Context, requesterId string, filter entity.ConversationFilter) ([]entity.Message, error) {
	if filter.UserA == "" || filter.UserB == "" {
		return nil, ErrInvalidInput
	}
	if requesterId != filter.UserA && requesterId != filter.UserB {
		return nil, ErrNotParticipant
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}

	return m.messageRepo.Conversation(ctx, filter)
}

// Delete removes the listed messages that requesterId sent and reports how
// many were removed. Ids of other users' messages are ignored.
func (m *messageUsecase) Delete(ctx context.Context, requesterId string, messageIds []string) (int64, error) {
	if len(messageIds) == 0 {
		return 0, ErrInvalidInput
	}
	return m.messageRepo.DeleteBySender(ctx, requesterId, messageIds)
}
