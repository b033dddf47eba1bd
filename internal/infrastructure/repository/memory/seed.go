package memory

import (
	"time"

	"github.com/riskibarqy/squad-predictor/internal/domain/match"
)

const (
	TeamIDPersija   = "idn-persija"
	TeamIDPersib    = "idn-persib"
	TeamIDPersebaya = "idn-persebaya"
	TeamIDBaliUtd   = "idn-baliutd"

	MatchIDScheduled = "idn-2026-08-30-psj-psb"
	MatchIDLive      = "idn-2026-08-28-prb-bu"
	MatchIDFinished  = "idn-2026-08-21-psb-prb"
)

func SeedMatches() []match.Match {
	return []match.Match{
		{
			ID:         MatchIDScheduled,
			HomeTeamID: TeamIDPersija,
			AwayTeamID: TeamIDPersib,
			KickoffAt:  time.Date(2026, time.August, 30, 19, 0, 0, 0, time.UTC),
			Status:     match.StatusScheduled,
		},
		{
			ID:         MatchIDLive,
			HomeTeamID: TeamIDPersebaya,
			AwayTeamID: TeamIDBaliUtd,
			KickoffAt:  time.Date(2026, time.August, 28, 19, 0, 0, 0, time.UTC),
			Status:     match.StatusLive,
		},
		{
			ID:         MatchIDFinished,
			HomeTeamID: TeamIDPersib,
			AwayTeamID: TeamIDPersebaya,
			KickoffAt:  time.Date(2026, time.August, 21, 19, 0, 0, 0, time.UTC),
			Status:     match.StatusFinished,
		},
	}
}
