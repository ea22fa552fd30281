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

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrUnknownListName = errors.New("unknown profile list")
)

type UserRepository interface {
	Get(ctx context.Context, userId string) (entity.User, error)
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Index(ctx context.Context, filter entity.UserIndexFilter) ([]entity.User, error)
	Create(ctx context.Context, user entity.User) (string, error)
	Delete(ctx context.Context, userId string) error

	UpdateGender(ctx context.Context, userId, gender string) error
	UpdateDescription(ctx context.Context, userId, description string) error
	AddToList(ctx context.Context, userId, list, value string) error
	RemoveFromList(ctx context.Context, userId, list, value string) error
	SetOnline(ctx context.Context, userId string, online bool) error

	// AddLike records userId's like of targetId on both documents.
	AddLike(ctx context.Context, userId, targetId string) error
	// LinkMatch moves the pair from crushes/receivedLikes into matches.
	LinkMatch(ctx context.Context, userA, userB string) error
	UnlinkMatch(ctx context.Context, userA, userB string) error
	// PullReferences removes userId from every other user's relation lists.
	PullReferences(ctx context.Context, userId string) error
}

type userRepository struct {
	db mongo.Database
}

func NewUserRepository(db mongo.Database) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) collection() *mongo.Collection {
	return r.db.Collection("users")
}

func (r *userRepository) Get(ctx context.Context, userId string) (entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": userId})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (entity.User, error) {
	var user entity.User
	err := r.collection().FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.User{}, ErrUserNotFound
		}
		return entity.User{}, err
	}
	return user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) Index(ctx context.Context, filter entity.UserIndexFilter) ([]entity.User, error) {
	bsonFilter := bson.M{}
	idFilter := bson.M{}
	if filter.Ids != nil {
		idFilter["$in"] = filter.Ids
	}
	if len(filter.ExcludeIds) > 0 {
		idFilter["$nin"] = filter.ExcludeIds
	}
	if len(idFilter) > 0 {
		bsonFilter["_id"] = idFilter
	}
	if filter.Gender != "" {
		bsonFilter["gender"] = filter.Gender
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection().Find(ctx, bsonFilter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []entity.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user entity.User) (string, error) {
	now := time.Now()
	user.Id = uuid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	for _, list := range []*[]string{&user.ProfileImages, &user.TurnOns, &user.LookingFor, &user.Crushes, &user.ReceivedLikes, &user.Matches} {
		if *list == nil {
			*list = []string{}
		}
	}

	_, err := r.collection().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateEmail
		}
		return "", err
	}

	return user.Id, nil
}

func (r *userRepository) Delete(ctx context.Context, userId string) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": userId})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateGender(ctx context.Context, userId, gender string) error {
	return r.updateOne(ctx, userId, bson.M{"$set": bson.M{"gender": gender, "updatedAt": time.Now()}})
}

func (r *userRepository) UpdateDescription(ctx context.Context, userId, description string) error {
	return r.updateOne(ctx, userId, bson.M{"$set": bson.M{"description": description, "updatedAt": time.Now()}})
}

func (r *userRepository) AddToList(ctx context.Context, userId, list, value string) error {
	if !isProfileList(list) {
		return ErrUnknownListName
	}
	return r.updateOne(ctx, userId, bson.M{
		"$addToSet": bson.M{list: value},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (r *userRepository) RemoveFromList(ctx context.Context, userId, list, value string) error {
	if !isProfileList(list) {
		return ErrUnknownListName
	}
	return r.updateOne(ctx, userId, bson.M{
		"$pull": bson.M{list: value},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (r *userRepository) SetOnline(ctx context.Context, userId string, online bool) error {
	return r.updateOne(ctx, userId, bson.M{"$set": bson.M{"isOnline": online}})
}

func (r *userRepository) AddLike(ctx context.Context, userId, targetId string) error {
	now := time.Now()
	// Target first so an unknown target leaves no dangling crush.
	err := r.updateOne(ctx, targetId, bson.M{
		"$addToSet": bson.M{"receivedLikes": userId},
		"$set":      bson.M{"updatedAt": now},
	})
	if err != nil {
		return err
	}
	return r.updateOne(ctx, userId, bson.M{
		"$addToSet": bson.M{"crushes": targetId},
		"$set":      bson.M{"updatedAt": now},
	})
}

func (r *userRepository) LinkMatch(ctx context.Context, userA, userB string) error {
	now := time.Now()
	for _, pair := range [][2]string{{userA, userB}, {userB, userA}} {
		err := r.updateOne(ctx, pair[0], bson.M{
			"$addToSet": bson.M{"matches": pair[1]},
			"$pull":     bson.M{"crushes": pair[1], "receivedLikes": pair[1]},
			"$set":      bson.M{"updatedAt": now},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *userRepository) UnlinkMatch(ctx context.Context, userA, userB string) error {
	now := time.Now()
	for _, pair := range [][2]string{{userA, userB}, {userB, userA}} {
		err := r.updateOne(ctx, pair[0], bson.M{
			"$pull": bson.M{"matches": pair[1]},
			"$set":  bson.M{"updatedAt": now},
		})
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return err
		}
	}
	return nil
}

func (r *userRepository) PullReferences(ctx context.Context, userId string) error {
	filter := bson.M{"$or": bson.A{
		bson.M{"crushes": userId},
		bson.M{"receivedLikes": userId},
		bson.M{"matches": userId},
	}}
	update := bson.M{"$pull": bson.M{
		"crushes":       userId,
		"receivedLikes": userId,
		"matches":       userId,
	}}
	_, err := r.collection().UpdateMany(ctx, filter, update)
	return err
}

func (r *userRepository) updateOne(ctx context.Context, userId string, update bson.M) error {
	res, err := r.collection().UpdateOne(ctx, bson.M{"_id": userId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isProfileList(list string) bool {
	switch list {
	case entity.ListTurnOns, entity.ListLookingFor, entity.ListProfileImages:
		return true
	}
	return false
}
