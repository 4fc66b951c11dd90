package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finternet/finternet-backend/internal/store"
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/finternet/finternet-backend/services/monitoring/metrics"
	"github.com/finternet/finternet-backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type LedgerService struct {
	store   *store.RecordStore[Transaction]
	logger  *logging.Logger
	metrics *metrics.Metrics
}

func NewLedgerService(logger *logging.Logger, m *metrics.Metrics) *LedgerService {
	s := &LedgerService{
		store: store.New(
			func(t Transaction) string { return t.ID },
			func(callerID string, t Transaction) bool { return t.InvolvesParty(callerID) },
		),
		logger:  logger,
		metrics: m,
	}
	m.TrackStoreSize("transaction", s.store.Len)
	return s
}

// CreateTransaction records a completed transaction. From defaults to the
// caller when the request leaves it out.
func (l *LedgerService) CreateTransaction(ctx context.Context, caller utils.Caller, req CreateTransactionRequest) (Transaction, error) {
	from := req.From
	if from == nil {
		id := caller.ID
		from = &id
	}

	tx := Transaction{
		ID:        uuid.New().String(),
		AssetID:   req.AssetID,
		AssetName: req.AssetName,
		Kind:      req.Kind,
		From:      from,
		To:        req.To,
		Status:    TransactionCompleted,
		Timestamp: time.Now().UTC(),
		Extra:     req.Extra,
	}

	l.store.Append(tx)
	l.metrics.RecordsCreated.WithLabelValues("transaction").Inc()

	l.logger.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"type":           tx.Kind,
		"asset_id":       tx.AssetID,
		"caller":         caller.Name,
	}).Info("Transaction created")

	return tx, nil
}

func (l *LedgerService) ListTransactions(ctx context.Context, caller utils.Caller) []Transaction {
	return l.store.List(caller.ID)
}

func (l *LedgerService) GetTransaction(ctx context.Context, caller utils.Caller, id string) (Transaction, error) {
	tx, err := l.store.Get(caller.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		return Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("fetching transaction %s: %w", id, err)
	}
	return tx, nil
}
