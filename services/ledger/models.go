package ledger

import (
	"encoding/json"
	"time"
)

type TransactionStatus string

const TransactionCompleted TransactionStatus = "completed"

// Transaction is an immutable ledger entry. It is visible to the parties
// named in From and To.
type Transaction struct {
	ID        string            `json:"id"`
	AssetID   string            `json:"asset_id"`
	AssetName *string           `json:"asset_name"`
	Kind      string            `json:"type_"`
	From      *string           `json:"from"`
	To        *string           `json:"to"`
	Status    TransactionStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Extra     json.RawMessage   `json:"blockchain_data"`
}

func (t Transaction) InvolvesParty(callerID string) bool {
	return (t.From != nil && *t.From == callerID) || (t.To != nil && *t.To == callerID)
}

type CreateTransactionRequest struct {
	AssetID   string          `json:"asset_id" binding:"required"`
	AssetName *string         `json:"asset_name"`
	Kind      string          `json:"type_" binding:"required"`
	From      *string         `json:"from"`
	To        *string         `json:"to"`
	Extra     json.RawMessage `json:"blockchain_data"`
}
