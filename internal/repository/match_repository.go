package repository

import (
	"context"
	"errors"
	"time"

	"matchmaker/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	// Upsert returns the match for the pair, creating it if absent.
	Upsert(ctx context.Context, userA, userB string) (entity.Match, error)
	GetByPair(ctx context.Context, userA, userB string) (entity.Match, error)
	DeleteByPair(ctx context.Context, userA, userB string) error
	DeleteByUser(ctx context.Context, userId string) error
}

type matchRepository struct {
	db mongo.Database
}

func NewMatchRepository(db mongo.Database) MatchRepository {
	return &matchRepository{
		db: db,
	}
}

func (r *matchRepository) collection() *mongo.Collection {
	return r.db.Collection("matches")
}

func (r *matchRepository) Upsert(ctx context.Context, userA, userB string) (entity.Match, error) {
	key := entity.PairKey(userA, userB)
	update := bson.M{"$setOnInsert": bson.M{
		"_id":       uuid.New().String(),
		"users":     entity.SortedPair(userA, userB),
		"pairKey":   key,
		"createdAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var match entity.Match
	err := r.collection().FindOneAndUpdate(ctx, bson.M{"pairKey": key}, update, opts).Decode(&match)
	if err != nil {
		// Two concurrent upserts can both miss and race on the unique index;
		// the loser reads the winner's document.
		if mongo.IsDuplicateKeyError(err) {
			return r.GetByPair(ctx, userA, userB)
		}
		return entity.Match{}, err
	}
	return match, nil
}

func (r *matchRepository) GetByPair(ctx context.Context, userA, userB string) (entity.Match, error) {
	var match entity.Match
	err := r.collection().FindOne(ctx, bson.M{"pairKey": entity.PairKey(userA, userB)}).Decode(&match)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.Match{}, ErrMatchNotFound
		}
		return entity.Match{}, err
	}
	return match, nil
}

func (r *matchRepository) DeleteByPair(ctx context.Context, userA, userB string) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"pairKey": entity.PairKey(userA, userB)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *matchRepository) DeleteByUser(ctx context.Context, userId string) error {
	_, err := r.collection().DeleteMany(ctx, bson.M{"users": userId})
	return err
}
