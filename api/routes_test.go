package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/finternet/finternet-backend/api/apistrings"
	"github.com/finternet/finternet-backend/models"
	activitylogs "github.com/finternet/finternet-backend/services/activity_logs"
	"github.com/finternet/finternet-backend/services/ledger"
	"github.com/finternet/finternet-backend/services/payment"
	"github.com/gin-gonic/gin"
)

func TestLedgerOwnership(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	alice := tokenFor(t, "user-alice")
	bob := tokenFor(t, "user-bob")

	rec := ts.do(t, http.MethodPost, "/api/transactions", alice, map[string]interface{}{
		"asset_id":        "asset-1",
		"type_":           "transfer",
		"blockchain_data": map[string]string{"hash": "0xabc"},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[ledger.Transaction](t, rec)
	if created.From == nil || *created.From != "user-alice" {
		t.Errorf("expected from to default to the caller, got %v", created.From)
	}
	if created.Status != ledger.TransactionCompleted {
		t.Errorf("expected completed, got %s", created.Status)
	}
	if !strings.Contains(rec.Body.String(), `"asset_name":null`) {
		t.Errorf("expected absent optionals to serialize as null: %s", rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/transactions/"+created.ID, alice, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner should read own transaction, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/transactions/"+created.ID, bob, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another caller, got %d", rec.Code)
	}
	if body := decode[models.ErrorResponse](t, rec); body.Message != apistrings.TransactionNotFound {
		t.Errorf("unexpected message %q", body.Message)
	}

	rec = ts.do(t, http.MethodGet, "/api/transactions/does-not-exist", alice, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}

	if list := decode[[]ledger.Transaction](t, ts.do(t, http.MethodGet, "/api/transactions", bob, nil, nil)); len(list) != 0 {
		t.Errorf("bob should see nothing, got %d records", len(list))
	}
	if list := decode[[]ledger.Transaction](t, ts.do(t, http.MethodGet, "/api/transactions", alice, nil, nil)); len(list) != 1 {
		t.Errorf("alice should see one record, got %d", len(list))
	}
}

func TestLedgerRecipientCanRead(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	alice := tokenFor(t, "user-alice")
	bob := tokenFor(t, "user-bob")

	rec := ts.do(t, http.MethodPost, "/api/transactions", alice, map[string]interface{}{
		"asset_id": "asset-1",
		"type_":    "transfer",
		"to":       "user-bob",
	}, nil)
	created := decode[ledger.Transaction](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/transactions/"+created.ID, bob, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("recipient should read the transaction, got %d", rec.Code)
	}
}

func TestLedgerRejectsBadBody(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	token := tokenFor(t, "user-1")

	rec := ts.do(t, http.MethodPost, "/api/transactions", token, map[string]interface{}{"type_": "transfer"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decode[models.ErrorResponse](t, rec); body.Status != "failed" || len(body.Errors) == 0 {
		t.Errorf("expected failed envelope with details, got %+v", body)
	}
}

func TestPaymentSettlesThroughAPI(t *testing.T) {
	ts := newTestServer(t, 20*time.Millisecond)
	token := tokenFor(t, "user-1")

	rec := ts.do(t, http.MethodPost, "/api/payments", token, map[string]interface{}{
		"amount":          100,
		"currency":        "USD",
		"payment_type":    "fiat_to_crypto",
		"crypto_currency": "BTC",
		"crypto_address":  "bc1qexample",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[payment.Payment](t, rec)
	if created.Status != payment.PaymentPending {
		t.Fatalf("expected pending on creation, got %s", created.Status)
	}

	// draining the scheduler waits for the settlement task
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ts.scheduler.Shutdown(ctx); err != nil {
		t.Fatalf("scheduler did not drain: %v", err)
	}

	rec = ts.do(t, http.MethodGet, "/api/payments/"+created.ID, token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if settled := decode[payment.Payment](t, rec); settled.Status != payment.PaymentCompleted {
		t.Errorf("expected completed after settlement, got %s", settled.Status)
	}
}

func TestInvalidPaymentTypeIsRejected(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	token := tokenFor(t, "user-1")

	rec := ts.do(t, http.MethodPost, "/api/payments", token, map[string]interface{}{
		"amount":       10,
		"currency":     "USD",
		"payment_type": "invalid",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decode[models.ErrorResponse](t, rec); body.Message != apistrings.InvalidPaymentType {
		t.Errorf("unexpected message %q", body.Message)
	}

	if list := decode[[]payment.Payment](t, ts.do(t, http.MethodGet, "/api/payments", token, nil, nil)); len(list) != 0 {
		t.Errorf("rejected payment must not be stored, found %d", len(list))
	}
}

func TestPaymentMissingFieldsIsBadRequest(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	token := tokenFor(t, "user-1")

	rec := ts.do(t, http.MethodPost, "/api/payments", token, map[string]interface{}{
		"currency":     "USD",
		"payment_type": "fiat_to_crypto",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPaymentCrossOwnerIsNotFound(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	alice := tokenFor(t, "user-alice")
	bob := tokenFor(t, "user-bob")

	rec := ts.do(t, http.MethodPost, "/api/payments", alice, map[string]interface{}{
		"amount":       5,
		"currency":     "USD",
		"payment_type": "fiat_to_crypto",
	}, nil)
	created := decode[payment.Payment](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/payments/"+created.ID, bob, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := decode[models.ErrorResponse](t, rec); body.Message != apistrings.PaymentNotFound {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestIdempotencyKeyReplaysResponse(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	alice := tokenFor(t, "user-alice")
	bob := tokenFor(t, "user-bob")
	body := map[string]interface{}{
		"amount":       25,
		"currency":     "USD",
		"payment_type": "fiat_to_crypto",
	}
	key := map[string]string{IdempotencyKeyHeader: "order-77"}

	first := ts.do(t, http.MethodPost, "/api/payments", alice, body, key)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}
	if first.Header().Get(IdempotencyHitHeader) != "" {
		t.Errorf("first request must not be a replay")
	}

	second := ts.do(t, http.MethodPost, "/api/payments", alice, body, key)
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Header().Get(IdempotencyHitHeader) != "true" {
		t.Errorf("expected replay header")
	}
	if decode[payment.Payment](t, first).ID != decode[payment.Payment](t, second).ID {
		t.Errorf("replay should return the same payment")
	}

	// same key, other caller: a fresh payment
	other := ts.do(t, http.MethodPost, "/api/payments", bob, body, key)
	if other.Header().Get(IdempotencyHitHeader) != "" {
		t.Errorf("keys must be scoped per caller")
	}

	if list := decode[[]payment.Payment](t, ts.do(t, http.MethodGet, "/api/payments", alice, nil, nil)); len(list) != 1 {
		t.Errorf("expected one stored payment for alice, got %d", len(list))
	}
}

func TestIdempotencyIgnoresFailedResponses(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	token := tokenFor(t, "user-1")
	key := map[string]string{IdempotencyKeyHeader: "retry-me"}

	bad := map[string]interface{}{"amount": 1, "currency": "USD", "payment_type": "nope"}
	if rec := ts.do(t, http.MethodPost, "/api/payments", token, bad, key); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	good := map[string]interface{}{"amount": 1, "currency": "USD", "payment_type": "crypto_to_fiat"}
	rec := ts.do(t, http.MethodPost, "/api/payments", token, good, key)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 after a failed attempt, got %d", rec.Code)
	}
	if rec.Header().Get(IdempotencyHitHeader) != "" {
		t.Errorf("a failed response must not be replayed")
	}
}

func TestIdempotencyKeyInFlightIsRejected(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	token := tokenFor(t, "user-1")
	key := map[string]string{IdempotencyKeyHeader: "slow-1"}

	started := make(chan struct{})
	proceed := make(chan struct{})
	calls := 0
	ts.server.router.POST("/slow", ts.server.AuthenticatedMiddleware(), ts.server.IdempotencyMiddleware(), func(ctx *gin.Context) {
		calls++
		close(started)
		<-proceed
		ctx.JSON(http.StatusCreated, gin.H{"id": "slow"})
	})

	done := make(chan int)
	go func() {
		done <- ts.do(t, http.MethodPost, "/slow", token, nil, key).Code
	}()
	<-started

	concurrent := ts.do(t, http.MethodPost, "/slow", token, nil, key)
	if concurrent.Code != http.StatusConflict {
		t.Fatalf("expected 409 while the first request runs, got %d", concurrent.Code)
	}
	if body := decode[models.ErrorResponse](t, concurrent); body.Message != apistrings.IdempotencyInProgress {
		t.Errorf("unexpected message %q", body.Message)
	}

	close(proceed)
	if code := <-done; code != http.StatusCreated {
		t.Fatalf("expected 201 for the first request, got %d", code)
	}

	replay := ts.do(t, http.MethodPost, "/slow", token, nil, key)
	if replay.Code != http.StatusCreated || replay.Header().Get(IdempotencyHitHeader) != "true" {
		t.Errorf("expected a replay after completion, got %d", replay.Code)
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestActivityTrailFollowsCreations(t *testing.T) {
	ts := newTestServer(t, time.Hour)
	alice := tokenFor(t, "user-alice")
	bob := tokenFor(t, "user-bob")
	key := map[string]string{IdempotencyKeyHeader: "activity-1"}

	tx := decode[ledger.Transaction](t, ts.do(t, http.MethodPost, "/api/transactions", alice, map[string]interface{}{"asset_id": "a", "type_": "transfer"}, nil))
	paid := decode[payment.Payment](t, ts.do(t, http.MethodPost, "/api/payments", alice, map[string]interface{}{"amount": 1, "currency": "USD", "payment_type": "fiat_to_crypto"}, key))
	ts.do(t, http.MethodPost, "/api/payments", alice, map[string]interface{}{"amount": 1, "currency": "USD", "payment_type": "fiat_to_crypto"}, key)
	// rejected requests leave no trace
	ts.do(t, http.MethodPost, "/api/payments", alice, map[string]interface{}{"amount": 1, "currency": "USD", "payment_type": "bad"}, nil)

	rec := ts.do(t, http.MethodGet, "/api/activity", alice, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	entries := decode[[]activitylogs.Entry](t, rec)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Action, "replayed a payment") {
		t.Errorf("newest entry should be the replay, got %q", entries[0].Action)
	}
	if entries[2].EntityType == nil || *entries[2].EntityType != "transaction" {
		t.Errorf("oldest entry should be the transaction, got %+v", entries[2])
	}
	if entries[2].EntityID == nil || *entries[2].EntityID != tx.ID {
		t.Errorf("transaction entry should reference %s, got %v", tx.ID, entries[2].EntityID)
	}
	for _, e := range entries[:2] {
		if e.EntityID == nil || *e.EntityID != paid.ID {
			t.Errorf("payment entry %q should reference %s, got %v", e.Action, paid.ID, e.EntityID)
		}
	}

	if others := decode[[]activitylogs.Entry](t, ts.do(t, http.MethodGet, "/api/activity", bob, nil, nil)); len(others) != 0 {
		t.Errorf("bob should have no activity, got %d", len(others))
	}

	if rec := ts.do(t, http.MethodGet, "/api/activity?limit=0", alice, nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a zero limit, got %d", rec.Code)
	}
	if page := decode[[]activitylogs.Entry](t, ts.do(t, http.MethodGet, "/api/activity?limit=1&offset=2", alice, nil, nil)); len(page) != 1 {
		t.Errorf("expected a single entry page, got %d", len(page))
	}
}
