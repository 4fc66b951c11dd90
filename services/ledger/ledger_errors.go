package ledger

import "fmt"

var (
	ErrTransactionNotFound = fmt.Errorf("transaction not found")
)
