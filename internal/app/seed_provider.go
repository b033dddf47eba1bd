package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/squad-predictor/internal/domain/match"
	"github.com/riskibarqy/squad-predictor/internal/usecase"
)

// seedLineupProvider serves generated team squads for the seeded dev matches
// so the service runs end to end without a score API token.
type seedLineupProvider struct {
	squadByMatch map[string][]usecase.ExternalPlayer
}

func newSeedLineupProvider(matches []match.Match) *seedLineupProvider {
	p := &seedLineupProvider{squadByMatch: make(map[string][]usecase.ExternalPlayer, len(matches))}
	for _, m := range matches {
		roster := seedTeamSquad(m.HomeTeamID)
		roster = append(roster, seedTeamSquad(m.AwayTeamID)...)
		p.squadByMatch[m.ID] = roster
	}
	return p
}

func (p *seedLineupProvider) FetchLineup(_ context.Context, _ string) (*usecase.ExternalLineup, error) {
	return nil, nil
}

func (p *seedLineupProvider) FetchSquad(_ context.Context, matchID string) ([]usecase.ExternalPlayer, error) {
	roster, ok := p.squadByMatch[matchID]
	if !ok {
		return nil, fmt.Errorf("no seeded roster for match %s", matchID)
	}
	return roster, nil
}

var seedRoles = []struct {
	label  string
	rating int
}{
	{"GK", 82}, {"GK", 74},
	{"CB", 80}, {"CB", 79}, {"CB", 76}, {"LB", 78}, {"RB", 77},
	{"CM", 81}, {"CM", 79}, {"CM", 75}, {"LM", 76}, {"RM", 74},
	{"ST", 84}, {"ST", 77}, {"LW", 80}, {"RW", 79},
}

func seedTeamSquad(teamID string) []usecase.ExternalPlayer {
	club := strings.TrimPrefix(teamID, "idn-")
	out := make([]usecase.ExternalPlayer, 0, len(seedRoles))
	for i, role := range seedRoles {
		out = append(out, usecase.ExternalPlayer{
			ID:       fmt.Sprintf("%s-%s-%d", club, strings.ToLower(role.label), i+1),
			Name:     fmt.Sprintf("%s %s %d", strings.ToUpper(club[:1])+club[1:], role.label, i+1),
			TeamID:   teamID,
			Position: role.label,
			Rating:   role.rating,
		})
	}
	return out
}
