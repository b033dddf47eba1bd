package cache

import (
	"testing"
	"time"

	"github.com/riskibarqy/squad-predictor/internal/domain/match"
	"github.com/riskibarqy/squad-predictor/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/squad-predictor/internal/platform/cache"
)

func TestMatchRepository_GetByIDServesCachedRow(t *testing.T) {
	seeded := memory.SeedMatches()
	next := memory.NewMatchRepository(seeded)
	repo := NewMatchRepository(next, basecache.NewStore(time.Minute))

	got, ok, err := repo.GetByID(t.Context(), memory.MatchIDScheduled)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !ok {
		t.Fatalf("expected seeded match to exist")
	}
	if got.Status != match.StatusScheduled {
		t.Fatalf("unexpected status: %s", got.Status)
	}

	// Flip the row underneath; the cached read keeps serving until the TTL.
	got.Status = match.StatusLive
	if err := next.Upsert(t.Context(), got); err != nil {
		t.Fatalf("upsert match: %v", err)
	}

	cached, _, err := repo.GetByID(t.Context(), memory.MatchIDScheduled)
	if err != nil {
		t.Fatalf("get cached match: %v", err)
	}
	if cached.Status != match.StatusScheduled {
		t.Fatalf("expected cached scheduled status, got %s", cached.Status)
	}
}

func TestMatchRepository_MissIsCachedWithoutError(t *testing.T) {
	repo := NewMatchRepository(memory.NewMatchRepository(nil), basecache.NewStore(time.Minute))

	_, ok, err := repo.GetByID(t.Context(), "ghost")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if ok {
		t.Fatalf("expected miss for unknown match")
	}
}

func TestMatchRepository_ListByStatus(t *testing.T) {
	repo := NewMatchRepository(memory.NewMatchRepository(memory.SeedMatches()), basecache.NewStore(time.Minute))

	live, err := repo.ListByStatus(t.Context(), match.StatusLive)
	if err != nil {
		t.Fatalf("list live: %v", err)
	}
	if len(live) != 1 || live[0].ID != memory.MatchIDLive {
		t.Fatalf("unexpected live matches: %+v", live)
	}
}
