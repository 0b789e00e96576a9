package memory

import (
	"context"
	"fmt"
	"strings"

	"zoo-keeper/internal/domain/backfill"
	"zoo-keeper/internal/domain/species"
)

// LegacySource arma los pares (nombre libre de recinto, dieta) a partir de
// los repos en memoria. Equivale al JOIN animals/species del adapter postgres.
type LegacySource struct {
	Animals *AnimalRepo
	Species species.Repository
}

func (s LegacySource) ListLegacyAnimals(ctx context.Context) ([]backfill.LegacyAnimal, error) {
	s.Animals.mu.RLock()
	rows := make([]backfill.LegacyAnimal, 0)
	speciesOf := make(map[string]string)
	for _, a := range s.Animals.byID {
		if strings.TrimSpace(a.LegacyEnclosure) == "" {
			continue
		}
		rows = append(rows, backfill.LegacyAnimal{AnimalID: a.ID, EnclosureName: a.LegacyEnclosure})
		speciesOf[a.ID] = a.SpeciesID
	}
	s.Animals.mu.RUnlock()

	for i := range rows {
		sp, err := s.Species.GetByID(ctx, speciesOf[rows[i].AnimalID])
		if err != nil {
			return nil, fmt.Errorf("species of animal %s: %w", rows[i].AnimalID, err)
		}
		rows[i].Diet = sp.Diet
	}
	return rows, nil
}
