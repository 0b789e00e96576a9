package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/enclosures"
)

type EnclosuresRepo struct {
	db *sql.DB
}

func NewEnclosuresRepo(db *sql.DB) *EnclosuresRepo {
	return &EnclosuresRepo{db: db}
}

const enclosureColumns = `id, name, description, capacity, diet_type, origin, created_at, updated_at`

func (r *EnclosuresRepo) Create(ctx context.Context, e enclosures.Enclosure) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enclosures (`+enclosureColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.Name,
		e.Description,
		e.Capacity,
		string(e.DietType),
		string(e.Origin),
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *EnclosuresRepo) Update(ctx context.Context, e enclosures.Enclosure) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE enclosures
		SET
			name = $2,
			description = $3,
			capacity = $4,
			diet_type = $5,
			updated_at = $6
		WHERE id = $1
	`,
		e.ID,
		e.Name,
		e.Description,
		e.Capacity,
		string(e.DietType),
		e.UpdatedAt,
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

func (r *EnclosuresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enclosures WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EnclosuresRepo) GetByID(ctx context.Context, id string) (enclosures.Enclosure, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return enclosures.Enclosure{}, ErrNotFound
	}

	e, err := scanEnclosure(r.db.QueryRowContext(ctx, `
		SELECT `+enclosureColumns+` FROM enclosures WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return enclosures.Enclosure{}, ErrNotFound
		}
		return enclosures.Enclosure{}, err
	}
	return e, nil
}

func (r *EnclosuresRepo) List(ctx context.Context) ([]enclosures.Enclosure, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+enclosureColumns+` FROM enclosures
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]enclosures.Enclosure, 0)
	for rows.Next() {
		e, err := scanEnclosure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEnclosure(row scanner) (enclosures.Enclosure, error) {
	var e enclosures.Enclosure
	var d, origin string
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.Capacity,
		&d,
		&origin,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return enclosures.Enclosure{}, err
	}
	e.DietType = diet.Diet(d)
	e.Origin = enclosures.Origin(origin)
	return e, nil
}
