package reminder

import (
	"context"
	"testing"
	"time"

	"rembot/pkg/db"
	"rembot/pkg/migrate"
	"rembot/pkg/storage"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// 2024-05-01 is a Wednesday, 13:00 at +03:00.
var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return testNow
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := db.NewConn(ctx, &db.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	require.NoError(t, migrate.Execute(ctx, conn.DB))

	return conn
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store := NewStore(newTestDB(t))
	store.now = fixedNow

	return store
}

type parseCall struct {
	text     string
	offset   string
	followup bool
}

type scriptedParser struct {
	intents []*Intent
	err     error
	calls   []parseCall
}

func (p *scriptedParser) Parse(_ context.Context, text, offset string, followup bool) (*Intent, error) {
	p.calls = append(p.calls, parseCall{text: text, offset: offset, followup: followup})
	if p.err != nil {
		return nil, p.err
	}
	if len(p.intents) == 0 {
		return &Intent{Intent: IntentChat}, nil
	}

	in := p.intents[0]
	p.intents = p.intents[1:]

	return in, nil
}

func newTestService(t *testing.T, parser IntentParser) (*Service, *Store) {
	t.Helper()

	store := newTestStore(t)
	cfg := &Config{DefaultTZ: "+03:00", ClarifyMaxRounds: 2, ClarifyTTL: time.Hour}
	svc := NewService(cfg, store, parser, NewPendingStore(storage.NewMemoryClient(), time.Hour), nil)
	svc.now = fixedNow

	return svc, store
}

func timePtr(t time.Time) *time.Time {
	return &t
}
