package reminder

import (
	"context"
	"strconv"
	"time"

	"rembot/pkg/storage"
)

const pendingDomain = "pending"

// Pending is a reminder waiting for the user to answer a clarifying question.
type Pending struct {
	Draft        Draft    `json:"draft"`
	ClarifyCount int      `json:"clarify_count"`
	OriginalText string   `json:"original_text"`
	Options      []Option `json:"options,omitempty"`
}

type PendingStore struct {
	client storage.Client
	ttl    time.Duration
}

func NewPendingStore(client storage.Client, ttl time.Duration) *PendingStore {
	return &PendingStore{client: client, ttl: ttl}
}

func pendingKey(userID int64) string {
	return storage.GenerateCacheKey("v1", "telegram", pendingDomain, strconv.FormatInt(userID, 10))
}

func (p *PendingStore) Load(ctx context.Context, userID int64) (*Pending, bool, error) {
	pending := new(Pending)
	found, err := p.client.Load(storage.WithHiddenContent(ctx), pendingKey(userID), pending)
	if err != nil || !found {
		return nil, false, err
	}

	return pending, true, nil
}

func (p *PendingStore) Save(ctx context.Context, userID int64, pending *Pending) error {
	// drafts carry the user's own words
	return p.client.Save(storage.WithHiddenContent(ctx), pendingKey(userID), pending, p.ttl)
}

func (p *PendingStore) Drop(ctx context.Context, userID int64) error {
	return p.client.Delete(ctx, pendingKey(userID))
}

// Count returns how many users are in the middle of a clarification.
func (p *PendingStore) Count(ctx context.Context) (int, error) {
	keys, err := p.client.FindKeys(ctx, storage.GenerateCacheKey("v1", "telegram", pendingDomain, "*"))
	if err != nil {
		return 0, err
	}

	return len(keys), nil
}
