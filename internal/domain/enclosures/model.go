package enclosures

import (
	"time"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/occupancy"
)

// Origin distingue recintos creados por el staff de los generados por el
// backfill legacy (el rollback del backfill solo borra estos últimos).
type Origin string

const (
	OriginManual         Origin = "manual"
	OriginLegacyBackfill Origin = "legacy_backfill"
)

type Enclosure struct {
	ID          string
	Name        string
	Description string

	Capacity int       // >= 1
	DietType diet.Diet // herbivore, carnivore, omnivore
	Origin   Origin

	CreatedAt time.Time
	UpdatedAt time.Time
}

// View es un recinto con su ocupación actual (derivada, no persistida).
type View struct {
	Enclosure
	Occupancy occupancy.Snapshot
}

// MapView agrupa los recintos por dieta para la vista de mapa.
type MapView struct {
	Herbivore []View
	Carnivore []View
	Omnivore  []View
}
