package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/squad-predictor/internal/domain/squad"
)

type SquadStateRepository struct {
	mu    sync.RWMutex
	items map[string]storedState
}

type storedState struct {
	key   squad.Key
	state squad.State
}

func NewSquadStateRepository() *SquadStateRepository {
	return &SquadStateRepository{
		items: make(map[string]storedState),
	}
}

func (r *SquadStateRepository) Get(_ context.Context, key squad.Key) (squad.State, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.items[key.String()]
	if !ok {
		return squad.State{}, false, nil
	}

	return stored.state.Clone(), true, nil
}

func (r *SquadStateRepository) Save(_ context.Context, key squad.Key, state squad.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[key.String()] = storedState{key: key, state: state.Clone()}

	return nil
}

func (r *SquadStateRepository) Delete(_ context.Context, key squad.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, key.String())

	return nil
}

func (r *SquadStateRepository) ListByMatch(_ context.Context, matchID string) ([]squad.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]squad.Record, 0)
	for _, stored := range r.items {
		if stored.key.MatchID != matchID {
			continue
		}
		out = append(out, squad.Record{Key: stored.key, State: stored.state.Clone()})
	}

	return out, nil
}
