package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kasir/internal/domain/model"
	repo "kasir/internal/repository"

	"github.com/shopspring/decimal"
)

type TransactionUsecase struct {
	transactions repo.TransactionRepository
	feed         repo.ChangeSubscriber
	log          *slog.Logger
}

func NewTransactionUsecase(transactions repo.TransactionRepository, feed repo.ChangeSubscriber, log *slog.Logger) *TransactionUsecase {
	return &TransactionUsecase{transactions: transactions, feed: feed, log: log}
}

type ReceiptLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Receipt is the detail view of one transaction.
type Receipt struct {
	ID        int64           `json:"id"`
	ReceiptNo string          `json:"receipt_no"`
	Date      time.Time       `json:"date"`
	Lines     []ReceiptLine   `json:"lines"`
	ItemCount int64           `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// ListTransactions returns the history newest first.
func (u *TransactionUsecase) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	items, err := u.transactions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

func (u *TransactionUsecase) GetReceipt(ctx context.Context, id int64) (Receipt, error) {
	if id <= 0 {
		return Receipt{}, fmt.Errorf("%w: invalid transaction id", ErrValidation)
	}
	t, err := u.transactions.FindByID(ctx, id)
	if err != nil {
		return Receipt{}, err
	}
	return ToReceipt(t), nil
}

// ToReceipt renders the stored snapshot; the total is the one recorded at checkout.
func ToReceipt(t model.Transaction) Receipt {
	lines := make([]ReceiptLine, 0, len(t.Items))
	var count int64
	for _, it := range t.Items {
		lines = append(lines, ReceiptLine{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
		count += it.Quantity
	}

	return Receipt{
		ID:        t.ID,
		ReceiptNo: t.ReceiptNo,
		Date:      t.Time().UTC(),
		Lines:     lines,
		ItemCount: count,
		Total:     t.TotalAmount,
	}
}

// Watch pushes the history now and after every appended transaction.
func (u *TransactionUsecase) Watch(ctx context.Context, fn func([]model.Transaction)) (cancel func(), err error) {
	push := func() error {
		items, err := u.transactions.List(ctx)
		if err != nil {
			return err
		}
		fn(items)
		return nil
	}

	if err := push(); err != nil {
		return nil, fmt.Errorf("watch transactions: %w", err)
	}
	return u.feed.Subscribe(repo.TableTransactions, func() {
		if err := push(); err != nil {
			u.log.Error("watch transactions refresh failed", slog.Any("err", err))
		}
	}), nil
}
