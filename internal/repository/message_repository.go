package repository

import (
	"context"
	"errors"

	"matchmaker/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(ctx context.Context, message entity.Message) (entity.Message, error)
	Get(ctx context.Context, messageId string) (entity.Message, error)
	// Conversation returns the newest filter.Limit messages of the pair in
	// ascending (timestamp, seq) order.
	Conversation(ctx context.Context, filter entity.ConversationFilter) ([]entity.Message, error)
	DeleteBySender(ctx context.Context, senderId string, messageIds []string) (int64, error)
	DeleteByParticipant(ctx context.Context, userId string) error
}

type messageRepository struct {
	db mongo.Database
}

func NewMessageRepository(db mongo.Database) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) collection() *mongo.Collection {
	return r.db.Collection("messages")
}

func (r *messageRepository) Create(ctx context.Context, message entity.Message) (entity.Message, error) {
	message.Id = uuid.New().String()
	message.Seq = primitive.NewObjectID()

	_, err := r.collection().InsertOne(ctx, message)
	if err != nil {
		return entity.Message{}, err
	}
	return message, nil
}

func (r *messageRepository) Get(ctx context.Context, messageId string) (entity.Message, error) {
	var message entity.Message
	err := r.collection().FindOne(ctx, bson.M{"_id": messageId}).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.Message{}, ErrMessageNotFound
		}
		return entity.Message{}, err
	}
	return message, nil
}

func (r *messageRepository) Conversation(ctx context.Context, filter entity.ConversationFilter) ([]entity.Message, error) {
	bsonFilter := bson.M{"$or": bson.A{
		bson.M{"senderId": filter.UserA, "receiverId": filter.UserB},
		bson.M{"senderId": filter.UserB, "receiverId": filter.UserA},
	}}
	if !filter.Before.IsZero() {
		bsonFilter["timestamp"] = bson.M{"$lt": filter.Before}
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection().Find(ctx, bsonFilter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []entity.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) DeleteBySender(ctx context.Context, senderId string, messageIds []string) (int64, error) {
	res, err := r.collection().DeleteMany(ctx, bson.M{
		"_id":      bson.M{"$in": messageIds},
		"senderId": senderId,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *messageRepository) DeleteByParticipant(ctx context.Context, userId string) error {
	_, err := r.collection().DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"senderId": userId},
		bson.M{"receiverId": userId},
	}})
	return err
}
