package animals

import "time"

// Animal es un animal registrado por su dueño (o por el staff).
type Animal struct {
	ID          string
	OwnerUserID string // inmutable

	Name      string
	SpeciesID string // inmutable

	// EnclosureID es el recinto asignado; vacío solo en datos heredados.
	EnclosureID string

	// LegacyEnclosure es el nombre libre del recinto previo al modelo tipado.
	// Solo lo lee el backfill; no participa en reglas de negocio.
	LegacyEnclosure string

	LastFedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor es quien ejecuta la operación. IsStaff viene del proveedor de identidad.
type Actor struct {
	UserID  string
	IsStaff bool
}

// CanActOn: el dueño sobre sus animales; el staff sobre todos.
func (a Actor) CanActOn(an Animal) bool {
	if a.IsStaff {
		return true
	}
	return a.UserID != "" && a.UserID == an.OwnerUserID
}
