package player

import "context"

// Repository is the durable copy of the last successfully fetched roster per
// match. It backs the last-known fallback when the score provider is down.
type Repository interface {
	ListByMatch(ctx context.Context, matchID string) ([]Player, error)
	SaveRoster(ctx context.Context, matchID string, roster []Player) error
}
