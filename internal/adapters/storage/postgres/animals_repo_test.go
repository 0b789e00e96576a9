package postgres

import (
	"testing"

	"zoo-keeper/internal/domain/animals"

	"github.com/stretchr/testify/require"
)

func TestBuildAnimalListQuery(t *testing.T) {
	q, args := buildAnimalListQuery(animals.ListFilter{})
	require.Equal(t, "SELECT "+animalColumns+" FROM animals ORDER BY created_at ASC", q)
	require.Empty(t, args)

	q, args = buildAnimalListQuery(animals.ListFilter{
		OwnerUserID:  "u1",
		SpeciesID:    "zebra",
		EnclosureIDs: []string{"e1", "e2"},
		Query:        "50%_off",
	})
	require.Equal(t, "SELECT "+animalColumns+" FROM animals WHERE owner_user_id = $1 AND species_id = $2 AND enclosure_id = ANY($3) AND name ILIKE $4 ORDER BY created_at ASC", q)
	require.Equal(t, []any{"u1", "zebra", []string{"e1", "e2"}, `%50\%\_off%`}, args)

	q, _ = buildAnimalListQuery(animals.ListFilter{EnclosureIDs: []string{}})
	require.Empty(t, q)
}
