package dashboard

import (
	"context"
	"testing"
	"time"

	"zoo-keeper/internal/domain/animals"
	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/enclosures"
	"zoo-keeper/internal/domain/occupancy"
	"zoo-keeper/internal/domain/species"

	"github.com/stretchr/testify/require"
)

type speciesStub []species.Species

func (s speciesStub) List(ctx context.Context) ([]species.Species, error) { return s, nil }

type enclosuresStub []enclosures.View

func (e enclosuresStub) List(ctx context.Context) ([]enclosures.View, error) { return e, nil }

type animalsStub struct {
	items []animals.Animal
	now   time.Time
}

func (a animalsStub) List(ctx context.Context, actor animals.Actor, in animals.ListInput) ([]animals.Animal, error) {
	return a.items, nil
}

func (a animalsStub) NeedsFeeding(an animals.Animal) bool {
	return animals.NeedsFeeding(an.LastFedAt, a.now)
}

func TestSummary(t *testing.T) {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	fed := now.Add(-time.Hour)

	svc := NewService(
		speciesStub{{ID: "zebra"}, {ID: "lion"}},
		enclosuresStub{
			{Enclosure: enclosures.Enclosure{ID: "p", DietType: diet.Herbivore}, Occupancy: occupancy.Snapshot{Current: 1, Capacity: 1, IsFull: true}},
			{Enclosure: enclosures.Enclosure{ID: "d", DietType: diet.Carnivore}, Occupancy: occupancy.Snapshot{Current: 0, Capacity: 2}},
		},
		animalsStub{now: now, items: []animals.Animal{
			{ID: "a", LastFedAt: &fed},
			{ID: "b"},
		}},
	)

	sum, err := svc.Summary(context.Background(), animals.Actor{UserID: "keeper", IsStaff: true})
	require.NoError(t, err)
	require.Equal(t, Summary{
		Species:        2,
		Enclosures:     2,
		FullEnclosures: 1,
		Animals:        2,
		NeedingFeeding: 1,
		EnclosuresByDiet: map[diet.Diet]int{
			diet.Herbivore: 1,
			diet.Carnivore: 1,
			diet.Omnivore:  0,
		},
	}, sum)
}
