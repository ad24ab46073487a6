package memory

import (
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/series"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/venue"
)

const (
	EntityIDSydney     = "entity-sydney"
	VenueIDStarSydney  = "venue-star-sydney"
	VenueIDRootyHill   = "venue-rooty-hill"
	VenueIDCrownMelb   = "venue-crown-melbourne"
	TitleIDColossus    = "title-colossus"
	TitleIDChampionSCS = "title-sydney-championships"
)

func SeedVenues() []venue.Venue {
	fee := 3.0
	return []venue.Venue{
		{
			ID:        VenueIDStarSydney,
			Name:      "The Star Sydney",
			ShortName: "The Star",
			Aliases:   []string{"Star Poker", "Star Casino"},
			EntityID:  EntityIDSydney,
			VenueFee:  &fee,
		},
		{
			ID:        VenueIDRootyHill,
			Name:      "Rooty Hill RSL",
			ShortName: "Rooty Hill",
			EntityID:  EntityIDSydney,
			VenueFee:  &fee,
		},
		{
			ID:        VenueIDCrownMelb,
			Name:      "Crown Melbourne",
			ShortName: "Crown",
			Aliases:   []string{"Crown Poker Room"},
			EntityID:  EntityIDSydney,
		},
	}
}

func SeedSeriesTitles() []series.Title {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []series.Title{
		{ID: TitleIDColossus, Title: "Colossus", SeriesCategory: series.CategoryRegular, CreatedAt: created, UpdatedAt: created},
		{
			ID:             TitleIDChampionSCS,
			Title:          "Sydney Championships",
			Aliases:        []string{"Sydney Champs", "SCS"},
			SeriesCategory: series.CategoryChampionship,
			CreatedAt:      created,
			UpdatedAt:      created,
		},
	}
}

func SeedRecurringGames() []recurring.RecurringGame {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	firstGame := time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC)
	buyIn := 120.0
	guarantee := 5000.0
	ticket := 250.0
	return []recurring.RecurringGame{
		{
			ID:                     "recurring-star-thursday-grind",
			Name:                   "Thursday Grind",
			VenueID:                VenueIDStarSydney,
			EntityID:               EntityIDSydney,
			DayOfWeek:              "THURSDAY",
			Frequency:              recurring.FrequencyWeekly,
			IsActive:               true,
			StartTime:              "19:00",
			FirstGameDate:          &firstGame,
			GameType:               game.TypeTournament,
			GameVariant:            "NLHE",
			TypicalBuyIn:           &buyIn,
			TypicalGuarantee:       &guarantee,
			HasAccumulatorTickets:  true,
			AccumulatorTicketValue: &ticket,
			CreatedAt:              created,
			UpdatedAt:              created,
		},
	}
}
