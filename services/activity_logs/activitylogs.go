package activitylogs

import (
	"context"
	"net"
	"time"

	"github.com/finternet/finternet-backend/internal/store"
	"github.com/google/uuid"
)

// Entry is one thing a caller did, e.g. creating a payment. Entries are
// visible only to the caller they belong to.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	EntityType *string   `json:"entity_type"`
	EntityID   *string   `json:"entity_id"`
	IPAddress  *string   `json:"ip_address"`
	UserAgent  *string   `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

type ActivityLog struct {
	store *store.RecordStore[Entry]
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{
		store: store.New(
			func(e Entry) string { return e.ID },
			func(callerID string, e Entry) bool { return e.UserID == callerID },
		),
	}
}

type CreateActivityLogParams struct {
	UserID     string
	Action     string
	EntityType *string
	EntityID   *string
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}

func (a *ActivityLog) Create(ctx context.Context, params CreateActivityLogParams) Entry {
	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	entry := Entry{
		ID:         uuid.New().String(),
		UserID:     params.UserID,
		Action:     params.Action,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		IPAddress:  toIP(params.IPAddress),
		UserAgent:  toNullString(params.UserAgent),
		CreatedAt:  createdAt.UTC(),
	}
	a.store.Append(entry)
	return entry
}

// GetByUser pages through a caller's entries, newest first.
func (a *ActivityLog) GetByUser(ctx context.Context, userID string, limit, offset int) []Entry {
	all := a.store.List(userID)

	recent := make([]Entry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		recent = append(recent, all[i])
	}

	if offset >= len(recent) {
		return []Entry{}
	}
	recent = recent[offset:]
	if limit > 0 && limit < len(recent) {
		recent = recent[:limit]
	}
	return recent
}

func (a *ActivityLog) Len() int {
	return a.store.Len()
}

// Helper functions
func toNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// toIP keeps only values that parse as an address, in canonical form
func toIP(ip string) *string {
	if ip == "" {
		return nil
	}
	if parsed := net.ParseIP(ip); parsed != nil {
		canonical := parsed.String()
		return &canonical
	}
	return nil
}
