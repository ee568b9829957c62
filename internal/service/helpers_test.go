package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/scope_auth/internal/db"
	"github.com/Skotchmaster/scope_auth/internal/events"
	"github.com/Skotchmaster/scope_auth/internal/hash"
	"github.com/Skotchmaster/scope_auth/internal/repo"
	"github.com/Skotchmaster/scope_auth/internal/tokens"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	repo   *repo.GormRepo
	codec  *tokens.Codec
	pub    *recordingPublisher
	auth   *AuthService
	authz  *Authorizer
	scopes *ScopeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.Open(ctx, db.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	codec, err := tokens.NewCodec(tokens.Config{Secret: []byte("test-jwt-secret")})
	require.NoError(t, err)

	r := &repo.GormRepo{DB: gdb}
	pub := &recordingPublisher{}
	hasher := &hash.Hasher{Params: hash.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}}

	return &fixture{
		repo:  r,
		codec: codec,
		pub:   pub,
		auth: &AuthService{
			Users:      r,
			Hasher:     hasher,
			Tokens:     codec,
			Events:     pub,
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 72 * time.Hour,
		},
		authz:  &Authorizer{Users: r, Tokens: codec},
		scopes: &ScopeService{Repo: r, Events: pub},
	}
}
