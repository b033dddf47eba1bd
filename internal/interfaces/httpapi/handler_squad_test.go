package httpapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/squad-predictor/internal/domain/user"
	"github.com/riskibarqy/squad-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/squad-predictor/internal/platform/cache"
	"github.com/riskibarqy/squad-predictor/internal/usecase"
)

type staticProvider struct {
	squad []usecase.ExternalPlayer
}

func (p staticProvider) FetchLineup(context.Context, string) (*usecase.ExternalLineup, error) {
	return nil, nil
}

func (p staticProvider) FetchSquad(context.Context, string) ([]usecase.ExternalPlayer, error) {
	return p.squad, nil
}

func homeSquad() []usecase.ExternalPlayer {
	out := []usecase.ExternalPlayer{
		{ID: "gk-1", Name: "Keeper", TeamID: memory.TeamIDPersija, Position: "GK", Rating: 85},
	}
	for i, role := range []string{"CB", "CB", "LB", "RB"} {
		out = append(out, usecase.ExternalPlayer{
			ID: fmt.Sprintf("def-%d", i+1), Name: fmt.Sprintf("Defender %d", i+1),
			TeamID: memory.TeamIDPersija, Position: role, Rating: 80 - i,
		})
	}
	for i := range 3 {
		out = append(out, usecase.ExternalPlayer{
			ID: fmt.Sprintf("mid-%d", i+1), Name: fmt.Sprintf("Midfielder %d", i+1),
			TeamID: memory.TeamIDPersija, Position: "CM", Rating: 78 - i,
		})
	}
	for i, role := range []string{"ST", "LW", "RW"} {
		out = append(out, usecase.ExternalPlayer{
			ID: fmt.Sprintf("fwd-%d", i+1), Name: fmt.Sprintf("Forward %d", i+1),
			TeamID: memory.TeamIDPersija, Position: role, Rating: 82 - i,
		})
	}
	return out
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	matches := memory.NewMatchRepository(memory.SeedMatches())
	states := memory.NewSquadStateRepository()
	rosterRepo := memory.NewRosterRepository()

	rosterService := usecase.NewRosterService(
		staticProvider{squad: homeSquad()},
		cache.NewStore(time.Minute),
		rosterRepo,
		logger,
	)
	squadService := usecase.NewSquadService(matches, states, rosterService, nil, logger)
	lockoutService := usecase.NewLockoutService(matches, states, squadService, logger, 2)

	handler := NewHandler(squadService, rosterService, lockoutService, logger)
	verifier := stubVerifier{principal: user.Principal{UserID: "user-1"}}

	return NewRouter(handler, verifier, logger, []string{"*"}, "job-secret")
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer token-123")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) squadStateDTO {
	t.Helper()

	var envelope struct {
		Data squadStateDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode state envelope: %v", err)
	}
	return envelope.Data
}

func TestRouter_SquadRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/"+memory.MatchIDScheduled+"/squad", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_FullSquadFlow(t *testing.T) {
	router := newTestRouter(t)
	base := "/v1/matches/" + memory.MatchIDScheduled + "/squad"

	rec := doJSON(t, router, http.MethodPut, base+"/formation", `{"mode":"attack","formation_id":"4-3-3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("select formation: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	state := decodeState(t, rec)
	if state.Phase != "attack_building" {
		t.Fatalf("expected phase attack_building, got %q", state.Phase)
	}
	if len(state.Attack.Slots) != 11 {
		t.Fatalf("expected 11 attack slots, got %d", len(state.Attack.Slots))
	}

	// 4-3-3 slot order: GK, LB, CB, CB, RB, CM, CM, CM, LW, ST, RW.
	lineup := []string{"gk-1", "def-3", "def-1", "def-2", "def-4", "mid-1", "mid-2", "mid-3", "fwd-2", "fwd-1", "fwd-3"}
	for slot, playerID := range lineup {
		rec = doJSON(t, router, http.MethodPut,
			fmt.Sprintf("%s/slots/%d", base, slot),
			fmt.Sprintf(`{"player_id":%q}`, playerID))
		if rec.Code != http.StatusOK {
			t.Fatalf("assign slot %d: expected 200, got %d: %s", slot, rec.Code, rec.Body.String())
		}
	}
	state = decodeState(t, rec)
	if state.Phase != "defense_choice" {
		t.Fatalf("expected phase defense_choice after full attack, got %q", state.Phase)
	}
	if !state.Attack.Complete {
		t.Fatalf("expected attack side complete")
	}

	rec = doJSON(t, router, http.MethodPost, base+"/defense", `{"same_as_attack":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("choose defense: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, base+"/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	state = decodeState(t, rec)
	if !state.Completed {
		t.Fatalf("expected completed squad")
	}
	if state.Snapshot == nil || len(state.Snapshot.Attack.PlayerIDs) != 11 {
		t.Fatalf("expected an 11-player snapshot, got %+v", state.Snapshot)
	}
}

func TestRouter_FormationChangeOnCompletedSquadNeedsConfirm(t *testing.T) {
	router := newTestRouter(t)
	base := "/v1/matches/" + memory.MatchIDScheduled + "/squad"

	doJSON(t, router, http.MethodPut, base+"/formation", `{"mode":"attack","formation_id":"4-3-3"}`)
	lineup := []string{"gk-1", "def-3", "def-1", "def-2", "def-4", "mid-1", "mid-2", "mid-3", "fwd-2", "fwd-1", "fwd-3"}
	for slot, playerID := range lineup {
		doJSON(t, router, http.MethodPut, fmt.Sprintf("%s/slots/%d", base, slot), fmt.Sprintf(`{"player_id":%q}`, playerID))
	}
	doJSON(t, router, http.MethodPost, base+"/defense", `{"same_as_attack":true}`)
	doJSON(t, router, http.MethodPost, base+"/complete", "")

	rec := doJSON(t, router, http.MethodPut, base+"/formation", `{"mode":"attack","formation_id":"4-4-2"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without confirm, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPut, base+"/formation", `{"mode":"attack","formation_id":"4-4-2","confirm":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with confirm, got %d: %s", rec.Code, rec.Body.String())
	}
	state := decodeState(t, rec)
	if state.Attack.FormationID != "4-4-2" {
		t.Fatalf("expected formation 4-4-2, got %q", state.Attack.FormationID)
	}
	if state.Completed {
		t.Fatalf("expected squad reopened after formation change")
	}
}

func TestRouter_InvalidPayloads(t *testing.T) {
	router := newTestRouter(t)
	base := "/v1/matches/" + memory.MatchIDScheduled + "/squad"

	rec := doJSON(t, router, http.MethodPut, base+"/formation", `{"mode":"sideways","formation_id":"4-3-3"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, base+"/formation", `{"mode":"attack","formation_id":"4-3-3","bogus":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, base+"/slots/eleven", `{"player_id":"gk-1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric slot, got %d", rec.Code)
	}
}

func TestRouter_RosterAndFormationsArePublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/formations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("formations: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/matches/"+memory.MatchIDScheduled+"/roster?team_id="+memory.TeamIDPersija, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("roster: expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data rosterDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode roster envelope: %v", err)
	}
	if len(envelope.Data.Players) != 11 {
		t.Fatalf("expected 11 roster players, got %d", len(envelope.Data.Players))
	}
}

func TestRouter_LockoutSweepGuardedByJobToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/lockout-sweep", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/lockout-sweep", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with job token, got %d: %s", rec.Code, rec.Body.String())
	}
}
