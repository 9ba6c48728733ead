package repository

// Table names used for change notification.
const (
	TableProducts     = "products"
	TableTransactions = "transactions"
)

// ChangeSubscriber is told, synchronously, after every committed mutation of a table.
type ChangeSubscriber interface {
	Subscribe(table string, fn func()) (unsubscribe func())
}
