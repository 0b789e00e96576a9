package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/species"
)

type SpeciesRepo struct {
	db *sql.DB
}

func NewSpeciesRepo(db *sql.DB) *SpeciesRepo {
	return &SpeciesRepo{db: db}
}

func (r *SpeciesRepo) Create(ctx context.Context, s species.Species) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO species (id, name, diet, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, s.ID, s.Name, string(s.Diet), s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *SpeciesRepo) Update(ctx context.Context, s species.Species) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE species SET name = $2, diet = $3, updated_at = $4
		WHERE id = $1
	`, s.ID, s.Name, string(s.Diet), s.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SpeciesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM species WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SpeciesRepo) GetByID(ctx context.Context, id string) (species.Species, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return species.Species{}, ErrNotFound
	}
	return r.getOne(ctx, `
		SELECT id, name, diet, created_at, updated_at
		FROM species WHERE id = $1
	`, id)
}

func (r *SpeciesRepo) GetByName(ctx context.Context, name string) (species.Species, error) {
	return r.getOne(ctx, `
		SELECT id, name, diet, created_at, updated_at
		FROM species WHERE lower(name) = lower($1)
	`, strings.TrimSpace(name))
}

func (r *SpeciesRepo) List(ctx context.Context) ([]species.Species, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, diet, created_at, updated_at
		FROM species
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]species.Species, 0)
	for rows.Next() {
		s, err := scanSpecies(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SpeciesRepo) getOne(ctx context.Context, query string, arg string) (species.Species, error) {
	s, err := scanSpecies(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return species.Species{}, ErrNotFound
		}
		return species.Species{}, err
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSpecies(row scanner) (species.Species, error) {
	var s species.Species
	var d string
	if err := row.Scan(&s.ID, &s.Name, &d, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return species.Species{}, err
	}
	s.Diet = diet.Diet(d)
	return s, nil
}
