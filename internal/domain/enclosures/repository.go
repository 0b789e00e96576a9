package enclosures

import "context"

type Repository interface {
	Create(ctx context.Context, e Enclosure) error
	Update(ctx context.Context, e Enclosure) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Enclosure, error)
	List(ctx context.Context) ([]Enclosure, error)
}

// OccupantLister evita importar el paquete animals: devuelve, por recinto,
// los IDs de animales asignados. Se usa para hidratar el ledger al arrancar.
type OccupantLister interface {
	OccupantsByEnclosure(ctx context.Context) (map[string][]string, error)
}
