package animals

import (
	"context"
	"time"

	"zoo-keeper/internal/domain/enclosures"
	"zoo-keeper/internal/domain/species"
)

type Repository interface {
	Create(ctx context.Context, a Animal) error
	// Update persiste nombre, last_fed_at y updated_at. No toca enclosure_id.
	Update(ctx context.Context, a Animal) error
	// UpdateEnclosure cambia solo el recinto, como escritura atómica de un campo.
	UpdateEnclosure(ctx context.Context, id, enclosureID string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Animal, error)
	List(ctx context.Context, filter ListFilter) ([]Animal, error)

	CountBySpecies(ctx context.Context, speciesID string) (int, error)
	OccupantsByEnclosure(ctx context.Context) (map[string][]string, error)
}

type ListFilter struct {
	OwnerUserID  string   // vacío => todos (staff)
	SpeciesID    string   // exacto
	EnclosureIDs []string // nil => sin filtro; vacío no-nil => ningún match
	Query        string   // substring del nombre, case-insensitive
}

// SpeciesLookup y EnclosureLookup son los colaboradores de lectura del validador.
type SpeciesLookup interface {
	GetByID(ctx context.Context, id string) (species.Species, error)
}

type EnclosureLookup interface {
	GetByID(ctx context.Context, id string) (enclosures.Enclosure, error)
	List(ctx context.Context) ([]enclosures.View, error)
}
