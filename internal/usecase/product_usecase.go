package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"kasir/internal/domain/model"
	repo "kasir/internal/repository"

	"github.com/shopspring/decimal"
)

var maxPrice = decimal.New(1, 12)

// ReservationGuard runs fn only while the open cart holds none of the product,
// and keeps the cart from reserving it until fn returns.
type ReservationGuard interface {
	UnlessReserved(productID int64, fn func() error) error
}

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	feed         repo.ChangeSubscriber
	reservations ReservationGuard
	log          *slog.Logger
}

// DI. reservations may be nil when no cart engine runs.
func NewProductUsecase(
	productRepo repo.ProductRepository,
	feed repo.ChangeSubscriber,
	reservations ReservationGuard,
	log *slog.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		feed:         feed,
		reservations: reservations,
		log:          log,
	}
}

// ProductInput is a validated create/edit payload.
type ProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int64
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	// stored as numeric(14,2)
	if !in.Price.Equal(in.Price.Round(2)) {
		return fmt.Errorf("%w: price allows at most 2 decimal places", ErrValidation)
	}
	if in.Price.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: price too large", ErrValidation)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	return nil
}

// ParseProductForm turns raw text input into a ProductInput.
func ParseProductForm(name, price, stock string) (ProductInput, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return ProductInput{}, fmt.Errorf("%w: price must be a number", ErrValidation)
	}
	s, err := strconv.ParseInt(strings.TrimSpace(stock), 10, 64)
	if err != nil {
		return ProductInput{}, fmt.Errorf("%w: stock must be an integer", ErrValidation)
	}

	in := ProductInput{Name: strings.TrimSpace(name), Price: p, Stock: s}
	if err := in.validate(); err != nil {
		return ProductInput{}, err
	}
	return in, nil
}

// ListProducts returns the catalog by name, filtered by q when it is not blank.
func (u *ProductUsecase) ListProducts(ctx context.Context, q string) ([]model.Product, error) {
	if len(q) > 100 {
		return nil, fmt.Errorf("%w: q too long", ErrValidation)
	}
	items, err := u.productRepo.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	return u.productRepo.FindByID(ctx, id)
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:  strings.TrimSpace(in.Name),
		Price: in.Price,
		Stock: in.Stock,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}
	u.log.Info("product created", slog.Int64("product_id", p.ID), slog.String("name", p.Name))
	return p, nil
}

// EditProduct replaces every field. Cart lines keep the snapshot taken when they were added.
func (u *ProductUsecase) EditProduct(ctx context.Context, id int64, in ProductInput) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		ID:    id,
		Name:  strings.TrimSpace(in.Name),
		Price: in.Price,
		Stock: in.Stock,
	}
	if err := u.productRepo.Update(ctx, p); err != nil {
		return model.Product{}, err
	}
	u.log.Info("product edited", slog.Int64("product_id", id))
	return u.productRepo.FindByID(ctx, id)
}

// DeleteProduct refuses while the open cart still reserves units of the product,
// otherwise that stock could never be restored.
func (u *ProductUsecase) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", ErrValidation)
	}

	del := func() error {
		return u.productRepo.Delete(ctx, id)
	}
	var err error
	if u.reservations != nil {
		err = u.reservations.UnlessReserved(id, del)
	} else {
		err = del()
	}
	if err != nil {
		return err
	}
	u.log.Info("product deleted", slog.Int64("product_id", id))
	return nil
}

// Watch pushes the current result for q, then a fresh full result after every
// committed catalog change, until cancel is called. fn runs on the mutating
// goroutine and must not call into the cart engine.
func (u *ProductUsecase) Watch(ctx context.Context, q string, fn func([]model.Product)) (cancel func(), err error) {
	push := func() error {
		items, err := u.productRepo.Search(ctx, q)
		if err != nil {
			return err
		}
		fn(items)
		return nil
	}

	if err := push(); err != nil {
		return nil, fmt.Errorf("watch products: %w", err)
	}
	return u.feed.Subscribe(repo.TableProducts, func() {
		if err := push(); err != nil {
			u.log.Error("watch products refresh failed", slog.Any("err", err))
		}
	}), nil
}
