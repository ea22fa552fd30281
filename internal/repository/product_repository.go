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

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	Index(ctx context.Context, topic string) ([]entity.Product, error)
	Get(ctx context.Context, productId string) (entity.Product, error)
	Create(ctx context.Context, product entity.Product) (entity.Product, error)
	Update(ctx context.Context, product entity.Product) error
	Delete(ctx context.Context, productId string) error
}

type productRepository struct {
	db mongo.Database
}

func NewProductRepository(db mongo.Database) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r *productRepository) collection() *mongo.Collection {
	return r.db.Collection("products")
}

func (r *productRepository) Index(ctx context.Context, topic string) ([]entity.Product, error) {
	filter := bson.M{}
	if topic != "" {
		filter["topic"] = topic
	}

	cursor, err := r.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []entity.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Get(ctx context.Context, productId string) (entity.Product, error) {
	var product entity.Product
	err := r.collection().FindOne(ctx, bson.M{"_id": productId}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.Product{}, ErrProductNotFound
		}
		return entity.Product{}, err
	}
	return product, nil
}

func (r *productRepository) Create(ctx context.Context, product entity.Product) (entity.Product, error) {
	now := time.Now()
	product.Id = uuid.New().String()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.collection().InsertOne(ctx, product); err != nil {
		return entity.Product{}, err
	}
	return product, nil
}

func (r *productRepository) Update(ctx context.Context, product entity.Product) error {
	update := bson.M{
		"$set": bson.M{
			"name":      product.Name,
			"price":     product.Price,
			"topic":     product.Topic,
			"image":     product.Image,
			"updatedAt": time.Now(),
		},
	}
	res, err := r.collection().UpdateOne(ctx, bson.M{"_id": product.Id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, productId string) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": productId})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
