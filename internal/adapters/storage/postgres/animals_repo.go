package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"zoo-keeper/internal/domain/animals"
	"zoo-keeper/internal/domain/backfill"
	"zoo-keeper/internal/domain/diet"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `id, owner_user_id, name, species_id, enclosure_id, legacy_enclosure, last_fed_at, created_at, updated_at`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		a.ID,
		a.OwnerUserID,
		a.Name,
		a.SpeciesID,
		toNullString(a.EnclosureID),
		a.LegacyEnclosure,
		toNullTime(a.LastFedAt),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

// Update no toca enclosure_id: el recinto solo cambia por UpdateEnclosure.
func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			name = $2,
			last_fed_at = $3,
			updated_at = $4
		WHERE id = $1
	`,
		a.ID,
		a.Name,
		toNullTime(a.LastFedAt),
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) UpdateEnclosure(ctx context.Context, id, enclosureID string, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals SET enclosure_id = $2, updated_at = $3
		WHERE id = $1
	`, id, toNullString(enclosureID), updatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, ErrNotFound
	}

	a, err := scanAnimal(r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+` FROM animals WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.Animal{}, ErrNotFound
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) List(ctx context.Context, f animals.ListFilter) ([]animals.Animal, error) {
	query, args := buildAnimalListQuery(f)
	if query == "" {
		return []animals.Animal{}, nil
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// buildAnimalListQuery arma el WHERE según los filtros presentes.
// Devuelve query vacía cuando el filtro no puede matchear nada.
func buildAnimalListQuery(f animals.ListFilter) (string, []any) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OwnerUserID != "" {
		where = append(where, "owner_user_id = "+arg(f.OwnerUserID))
	}
	if f.SpeciesID != "" {
		where = append(where, "species_id = "+arg(f.SpeciesID))
	}
	if f.EnclosureIDs != nil {
		if len(f.EnclosureIDs) == 0 {
			return "", nil
		}
		where = append(where, "enclosure_id = ANY("+arg(f.EnclosureIDs)+")")
	}
	if f.Query != "" {
		where = append(where, "name ILIKE "+arg("%"+escapeLike(f.Query)+"%"))
	}

	q := "SELECT " + animalColumns + " FROM animals"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at ASC"
	return q, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *AnimalsRepo) CountBySpecies(ctx context.Context, speciesID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM animals WHERE species_id = $1`, speciesID).Scan(&n)
	return n, err
}

func (r *AnimalsRepo) OccupantsByEnclosure(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT enclosure_id, id FROM animals
		WHERE enclosure_id IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var enclosureID, id string
		if err := rows.Scan(&enclosureID, &id); err != nil {
			return nil, err
		}
		out[enclosureID] = append(out[enclosureID], id)
	}
	return out, rows.Err()
}

// ListLegacyAnimals implementa backfill.Source: nombre libre + dieta de la especie.
func (r *AnimalsRepo) ListLegacyAnimals(ctx context.Context) ([]backfill.LegacyAnimal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.legacy_enclosure, s.diet
		FROM animals a
		JOIN species s ON s.id = a.species_id
		WHERE btrim(a.legacy_enclosure) <> ''
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]backfill.LegacyAnimal, 0)
	for rows.Next() {
		var la backfill.LegacyAnimal
		var d string
		if err := rows.Scan(&la.AnimalID, &la.EnclosureName, &d); err != nil {
			return nil, err
		}
		la.Diet = diet.Diet(d)
		out = append(out, la)
	}
	return out, rows.Err()
}

func scanAnimal(row scanner) (animals.Animal, error) {
	var a animals.Animal
	var enclosureID sql.NullString
	var lastFed sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.OwnerUserID,
		&a.Name,
		&a.SpeciesID,
		&enclosureID,
		&a.LegacyEnclosure,
		&lastFed,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}
	if enclosureID.Valid {
		a.EnclosureID = enclosureID.String
	}
	if lastFed.Valid {
		t := lastFed.Time
		a.LastFedAt = &t
	}
	return a, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
