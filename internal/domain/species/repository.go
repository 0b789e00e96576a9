package species

import "context"

type Repository interface {
	Create(ctx context.Context, s Species) error
	Update(ctx context.Context, s Species) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Species, error)
	GetByName(ctx context.Context, name string) (Species, error)
	List(ctx context.Context) ([]Species, error)
}

// UsageCounter evita importar el paquete animals (rompe ciclos).
type UsageCounter interface {
	CountBySpecies(ctx context.Context, speciesID string) (int, error)
}
