package species

import (
	"time"

	"zoo-keeper/internal/domain/diet"
)

// Species es el catálogo que mantiene el staff. La dieta define en qué
// recintos pueden vivir sus animales.
type Species struct {
	ID   string
	Name string
	Diet diet.Diet

	CreatedAt time.Time
	UpdatedAt time.Time
}
