package usecase

import (
	"context"
	"strings"

	"matchmaker/internal/entity"
	"matchmaker/internal/repository"
)

type ProductUsecase interface {
	Index(ctx context.Context, topic string) ([]entity.Product, error)
	Get(ctx context.Context, productId string) (entity.Product, error)
	Create(ctx context.Context, author entity.TokenClaims, product entity.Product) (entity.Product, error)
	Update(ctx context.Context, requesterId string, product entity.Product) (entity.Product, error)
	Delete(ctx context.Context, requesterId, productId string) error
}

type productUsecase struct {
	productRepo repository.ProductRepository
}

func NewProductUsecase(productRepo repository.ProductRepository) ProductUsecase {
	return &productUsecase{
		productRepo: productRepo,
	}
}

func (p *productUsecase) Index(ctx context.Context, topic string) ([]entity.Product, error) {
	return p.productRepo.Index(ctx, strings.TrimSpace(topic))
}

func (p *productUsecase) Get(ctx context.Context, productId string) (entity.Product, error) {
	return p.productRepo.Get(ctx, productId)
}

func (p *productUsecase) Create(ctx context.Context, author entity.TokenClaims, product entity.Product) (entity.Product, error) {
	if err := validateProduct(product); err != nil {
		return entity.Product{}, err
	}
	product.Author = author.Name
	product.CreatedBy = author.UserId
	return p.productRepo.Create(ctx, product)
}

func (p *productUsecase) Update(ctx context.Context, requesterId string, product entity.Product) (entity.Product, error) {
	if err := validateProduct(product); err != nil {
		return entity.Product{}, err
	}
	existing, err := p.productRepo.Get(ctx, product.Id)
	if err != nil {
		return entity.Product{}, err
	}
	if existing.CreatedBy != requesterId {
		return entity.Product{}, ErrForbidden
	}

	if err := p.productRepo.Update(ctx, product); err != nil {
		return entity.Product{}, err
	}
	return p.productRepo.Get(ctx, product.Id)
}

func (p *productUsecase) Delete(ctx context.Context, requesterId, productId string) error {
	existing, err := p.productRepo.Get(ctx, productId)
	if err != nil {
		return err
	}
	if existing.CreatedBy != requesterId {
		return ErrForbidden
	}
	return p.productRepo.Delete(ctx, productId)
}

func validateProduct(product entity.Product) error {
	if strings.TrimSpace(product.Name) == "" || product.Price < 0 {
		return ErrInvalidInput
	}
	return nil
}
