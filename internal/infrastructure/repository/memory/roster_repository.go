package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

// RosterRepository keeps the last successfully fetched roster per match.
type RosterRepository struct {
	mu    sync.RWMutex
	items map[string][]player.Player
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{
		items: make(map[string][]player.Player),
	}
}

func (r *RosterRepository) ListByMatch(_ context.Context, matchID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roster, ok := r.items[matchID]
	if !ok {
		return nil, nil
	}

	return append([]player.Player(nil), roster...), nil
}

func (r *RosterRepository) SaveRoster(_ context.Context, matchID string, roster []player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[matchID] = append([]player.Player(nil), roster...)

	return nil
}
