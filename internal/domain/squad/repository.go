package squad

import "context"

// Key identifies the durable record for one editing session. TeamID is only
// set for dual-favorite matches where the user picked a side to predict.
type Key struct {
	MatchID string
	UserID  string
	TeamID  string
}

func (k Key) String() string {
	if k.TeamID == "" {
		return k.MatchID + "::" + k.UserID
	}
	return k.MatchID + "::" + k.UserID + "::" + k.TeamID
}

// Record pairs a key with its stored state, for match-wide sweeps.
type Record struct {
	Key   Key
	State State
}

// Repository holds the sole durable copy of squad state; in-memory copies
// are caches that reconcile against it.
type Repository interface {
	Get(ctx context.Context, key Key) (State, bool, error)
	Save(ctx context.Context, key Key, state State) error
	Delete(ctx context.Context, key Key) error
	ListByMatch(ctx context.Context, matchID string) ([]Record, error)
}
