package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the product service.
type ServiceParams struct {
	Repo Repository
}

// Service exposes catalog business rules.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (ProductListDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (ProductDTO, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, input CreateProductInput) (ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a product service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (ProductListDTO, error) {
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return ProductListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ToDTO(row))
	}
	return ProductListDTO{
		Products:   dtos,
		Pagination: pagination.NewMeta(params, total),
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return ProductDTO{}, err
	}
	return ToDTO(*product), nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (ProductDTO, error) {
	if err := validateOriginalPrice(input.Price, input.OriginalPrice); err != nil {
		return ProductDTO{}, err
	}

	inStock := true
	if input.InStock != nil {
		inStock = *input.InStock
	}

	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Image:         input.Image,
		Images:        pq.StringArray(input.Images),
		Category:      strings.TrimSpace(input.Category),
		Sizes:         pq.StringArray(input.Sizes),
		Colors:        pq.StringArray(input.Colors),
		Tags:          pq.StringArray(input.Tags),
		IsNew:         input.IsNew,
		IsSale:        input.IsSale,
		InStock:       inStock,
		StockQuantity: input.StockQuantity,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return ToDTO(*created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return ProductDTO{}, err
	}

	applyUpdate(product, input)

	if err := validateOriginalPrice(product.Price, product.OriginalPrice); err != nil {
		return ProductDTO{}, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return ToDTO(*updated), nil
}

// Delete removes the catalog row. Orders keep their denormalized copies, so
// historical data survives the delete.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func validateOriginalPrice(price int64, originalPrice *int64) error {
	if originalPrice != nil && *originalPrice <= price {
		return pkgerrors.New(pkgerrors.CodeValidation, "original price must exceed the sale price")
	}
	return nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = input.OriginalPrice
	}
	if input.Image != nil {
		product.Image = *input.Image
	}
	if input.Images != nil {
		product.Images = pq.StringArray(*input.Images)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Sizes != nil {
		product.Sizes = pq.StringArray(*input.Sizes)
	}
	if input.Colors != nil {
		product.Colors = pq.StringArray(*input.Colors)
	}
	if input.Tags != nil {
		product.Tags = pq.StringArray(*input.Tags)
	}
	if input.IsNew != nil {
		product.IsNew = *input.IsNew
	}
	if input.IsSale != nil {
		product.IsSale = *input.IsSale
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
}
