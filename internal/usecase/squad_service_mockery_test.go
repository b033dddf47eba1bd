package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/squad-predictor/internal/domain/match"
	"github.com/riskibarqy/squad-predictor/internal/domain/squad"
	matchmock "github.com/riskibarqy/squad-predictor/internal/mocks/domain/match"
	squadmock "github.com/riskibarqy/squad-predictor/internal/mocks/domain/squad"
)

func TestSquadService_GetState_FreshSquadUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	matches := matchmock.NewRepository(t)
	states := squadmock.NewRepository(t)

	service := NewSquadService(matches, states, nil, nil, testLogger())
	ref := StateRef{MatchID: "idn-2026-08-30-psj-psb", UserID: "user-9"}

	matches.
		On("GetByID", mock.Anything, ref.MatchID).
		Return(match.Match{ID: ref.MatchID, Status: match.StatusScheduled}, true, nil).
		Once()
	states.
		On("Get", mock.Anything, squad.Key{MatchID: ref.MatchID, UserID: ref.UserID}).
		Return(squad.State{}, false, nil).
		Once()

	st, err := service.GetState(ctx, ref)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if st.MatchID != ref.MatchID {
		t.Fatalf("unexpected match id: %s", st.MatchID)
	}
	if st.Locked || st.Completed || st.Attack.FormationID != "" {
		t.Fatalf("expected an empty unlocked squad, got %+v", st)
	}
}

func TestSquadService_GetState_MatchStoreErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	matches := matchmock.NewRepository(t)
	states := squadmock.NewRepository(t)

	service := NewSquadService(matches, states, nil, nil, testLogger())
	storeErr := errors.New("connection reset")

	matches.
		On("GetByID", mock.Anything, "idn-2026-08-30-psj-psb").
		Return(match.Match{}, false, storeErr).
		Once()

	_, err := service.GetState(ctx, StateRef{MatchID: "idn-2026-08-30-psj-psb", UserID: "user-9"})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
