package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kasir/internal/domain/model"
	repo "kasir/internal/repository"
)

// Generates receipt numbers.
type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

// CartEngine owns the single open cart and keeps it reconciled with catalog stock.
//
// Stock is reserved when a unit enters the cart and returned when it leaves, so for
// every product stock + quantity in cart stays constant. Checkout only materialises
// the receipt. Every operation holds the engine lock for its whole duration.
type CartEngine struct {
	mu    sync.Mutex
	tx    repo.TransactionManager
	clock Clock
	ids   IDGenerator
	log   *slog.Logger

	cart model.Cart
}

func NewCartEngine(tx repo.TransactionManager, clock Clock, ids IDGenerator, log *slog.Logger) *CartEngine {
	return &CartEngine{
		tx:    tx,
		clock: clock,
		ids:   ids,
		log:   log,
	}
}

// Cart returns a copy of the open cart.
func (e *CartEngine) Cart() model.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.Clone()
}

// Reserved reports how many units of productID the cart holds.
func (e *CartEngine) Reserved(productID int64) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.Quantity(productID)
}

// UnlessReserved runs fn only when the cart holds no units of productID. The engine
// lock is held while fn runs, so no add can reserve the product in between.
// fn must not call back into the engine.
func (e *CartEngine) UnlessReserved(productID int64, fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n := e.cart.Quantity(productID); n > 0 {
		return fmt.Errorf("%w: %d unit(s) in cart", ErrReserved, n)
	}
	return fn()
}

// AddToCart reserves one unit and records it in the cart. The line snapshot is
// read in the same store transaction as the decrement.
func (e *CartEngine) AddToCart(ctx context.Context, productID int64) (model.Cart, error) {
	if productID <= 0 {
		return model.Cart{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var snap model.ProductSnapshot
	err := e.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := reserve(ctx, r, p, 1); err != nil {
			return err
		}
		snap = p.Snapshot()
		return nil
	})
	if err != nil {
		return e.cart.Clone(), err
	}

	if i, ok := e.cart.Find(productID); ok {
		e.cart.Lines[i].Quantity++
	} else {
		e.cart.Lines = append(e.cart.Lines, model.CartLine{Product: snap, Quantity: 1})
	}

	e.log.Debug("cart add", slog.Int64("product_id", productID), slog.Int64("quantity", e.cart.Quantity(productID)))
	return e.cart.Clone(), nil
}

// AdjustQuantity changes a line by delta. Increases reserve delta more units or are
// rejected as a whole. Decreases return units; a line reaching zero is removed and
// its full quantity returned.
func (e *CartEngine) AdjustQuantity(ctx context.Context, lineID int64, delta int64) (model.Cart, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.adjust(ctx, lineID, delta); err != nil {
		return e.cart.Clone(), err
	}
	return e.cart.Clone(), nil
}

// RemoveFromCart drops the line and returns all of its units.
func (e *CartEngine) RemoveFromCart(ctx context.Context, lineID int64) (model.Cart, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.cart.Find(lineID)
	if !ok {
		return e.cart.Clone(), fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
	}
	if err := e.adjust(ctx, lineID, -e.cart.Lines[i].Quantity); err != nil {
		return e.cart.Clone(), err
	}
	return e.cart.Clone(), nil
}

// caller holds e.mu
func (e *CartEngine) adjust(ctx context.Context, lineID int64, delta int64) error {
	i, ok := e.cart.Find(lineID)
	if !ok {
		return fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
	}
	if delta == 0 {
		return nil
	}

	line := e.cart.Lines[i]

	// reserve before summing: an unchecked delta can overflow Quantity+delta
	if delta > 0 {
		err := e.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			p, err := r.Products().FindByID(ctx, lineID)
			if err != nil {
				return err
			}
			return reserve(ctx, r, p, delta)
		})
		if err != nil {
			return err
		}
		e.cart.Lines[i].Quantity += delta
		e.log.Debug("cart adjust",
			slog.Int64("product_id", lineID),
			slog.Int64("delta", delta),
			slog.Int64("quantity", e.cart.Lines[i].Quantity),
		)
		return nil
	}

	newQty := line.Quantity + delta
	if newQty <= 0 {
		if err := e.restore(ctx, lineID, line.Quantity); err != nil {
			return err
		}
		e.cart.Lines = append(e.cart.Lines[:i], e.cart.Lines[i+1:]...)
	} else {
		if err := e.restore(ctx, lineID, -delta); err != nil {
			return err
		}
		e.cart.Lines[i].Quantity = newQty
	}

	e.log.Debug("cart adjust",
		slog.Int64("product_id", lineID),
		slog.Int64("delta", delta),
		slog.Int64("quantity", max(newQty, 0)),
	)
	return nil
}

// Checkout appends the cart as a transaction and empties the cart.
// Stock is not touched: it was reserved as units were added.
func (e *CartEngine) Checkout(ctx context.Context) (model.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cart.IsEmpty() {
		return model.Transaction{}, ErrEmptyCart
	}

	items := e.cart.LineItems()
	t := model.Transaction{
		Date:        e.clock.Now().UnixMilli(),
		Items:       items,
		TotalAmount: items.Total(),
		ReceiptNo:   e.ids.NewID(),
	}

	err := e.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Transactions().Append(ctx, &t)
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("checkout: %w", err)
	}

	e.cart = model.Cart{}
	e.log.Info("checkout",
		slog.Int64("transaction_id", t.ID),
		slog.String("receipt_no", t.ReceiptNo),
		slog.String("total", t.TotalAmount.String()),
		slog.Int("lines", len(items)),
	)
	return t, nil
}

// Discard abandons the cart and returns every reserved unit in one store
// transaction. Must run before the engine is dropped or stock leaks downward.
func (e *CartEngine) Discard(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cart.IsEmpty() {
		return nil
	}

	var abandoned []int64
	err := e.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		abandoned = abandoned[:0]
		for _, l := range e.cart.Lines {
			err := r.Inventory().IncreaseStock(ctx, l.Product.ID, l.Quantity)
			if errors.Is(err, repo.ErrNotFound) {
				abandoned = append(abandoned, l.Product.ID)
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("discard cart: %w", err)
	}

	if len(abandoned) > 0 {
		e.log.Warn("reserved stock abandoned: product deleted", slog.Any("product_ids", abandoned))
	}
	e.log.Info("cart discarded", slog.Int("lines", len(e.cart.Lines)), slog.Int64("units", e.cart.ItemCount()))
	e.cart = model.Cart{}
	return nil
}

// restore returns qty units of productID. A product deleted behind the engine's back
// cannot take stock back; the units are written off and logged.
func (e *CartEngine) restore(ctx context.Context, productID int64, qty int64) error {
	err := e.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Inventory().IncreaseStock(ctx, productID, qty)
	})
	if errors.Is(err, repo.ErrNotFound) {
		e.log.Warn("reserved stock abandoned: product deleted",
			slog.Int64("product_id", productID),
			slog.Int64("quantity", qty),
		)
		return nil
	}
	return err
}

func reserve(ctx context.Context, r repo.TxRepos, p model.Product, qty int64) error {
	if p.Stock < qty {
		return fmt.Errorf("%w: %s has %d left", ErrOutOfStock, p.Name, p.Stock)
	}
	ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrOutOfStock, p.Name)
	}
	return nil
}
