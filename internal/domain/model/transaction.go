package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a completed sale. Immutable once appended.
type Transaction struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Date        int64           `gorm:"column:date;not null;index" json:"date"` // epoch millis
	Items       LineItems       `gorm:"column:items;type:text;not null" json:"items"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null" json:"total_amount"`
	ReceiptNo   string          `gorm:"column:receipt_no;type:varchar(36);not null;uniqueIndex" json:"receipt_no"`
}

func (t Transaction) Time() time.Time {
	return time.UnixMilli(t.Date)
}

// LineItem is the receipt row: product snapshot + quantity.
type LineItem struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int64           `json:"quantity"`
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// LineItems is stored as a JSON text column.
type LineItems []LineItem

func (items LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (items LineItems) Value() (driver.Value, error) {
	if items == nil {
		items = LineItems{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (items *LineItems) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*items = LineItems{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("line items: unsupported source %T", src)
	}
	return DecodeLineItems(data, items)
}

func EncodeLineItems(items LineItems) ([]byte, error) {
	return json.Marshal(items)
}

func DecodeLineItems(data []byte, items *LineItems) error {
	var out LineItems
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("line items: %w", err)
	}
	if out == nil {
		out = LineItems{}
	}
	*items = out
	return nil
}
