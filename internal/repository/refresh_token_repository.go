package repository

import (
	"context"
	"errors"
	"time"

	"matchmaker/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepository interface {
	Create(ctx context.Context, refreshToken entity.RefreshToken) error
	GetByToken(ctx context.Context, token string) (entity.RefreshToken, error)
	// Revoke marks token revoked. It reports false when the token was
	// already revoked or does not exist.
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAllByUserId(ctx context.Context, userId string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type refreshTokenRepository struct {
	db mongo.Database
}

func NewRefreshTokenRepository(db mongo.Database) RefreshTokenRepository {
	return &refreshTokenRepository{
		db: db,
	}
}

func (r *refreshTokenRepository) collection() *mongo.Collection {
	return r.db.Collection("refresh_tokens")
}

func (r *refreshTokenRepository) Create(ctx context.Context, refreshToken entity.RefreshToken) error {
	refreshToken.Id = uuid.New().String()
	refreshToken.CreatedAt = time.Now()
	refreshToken.IsRevoked = false

	_, err := r.collection().InsertOne(ctx, refreshToken)
	return err
}

func (r *refreshTokenRepository) GetByToken(ctx context.Context, token string) (entity.RefreshToken, error) {
	var refreshToken entity.RefreshToken
	err := r.collection().FindOne(ctx, bson.M{"token": token}).Decode(&refreshToken)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.RefreshToken{}, ErrTokenNotFound
		}
		return entity.RefreshToken{}, err
	}
	return refreshToken, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, token string) (bool, error) {
	// Filtering on isRevoked makes rotation single-use under concurrent refreshes.
	filter := bson.M{"token": token, "isRevoked": false}
	update := bson.M{
		"$set": bson.M{
			"isRevoked": true,
			"revokedAt": time.Now(),
		},
	}

	res, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *refreshTokenRepository) RevokeAllByUserId(ctx context.Context, userId string) error {
	filter := bson.M{
		"userId":    userId,
		"isRevoked": false,
	}
	update := bson.M{
		"$set": bson.M{
			"isRevoked": true,
			"revokedAt": time.Now(),
		},
	}

	_, err := r.collection().UpdateMany(ctx, filter, update)
	return err
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.collection().DeleteMany(ctx, bson.M{
		"expiresAt": bson.M{"$lt": time.Now()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
