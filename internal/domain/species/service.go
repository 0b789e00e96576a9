package species

import (
	"context"
	"errors"
	"strings"
	"time"

	"zoo-keeper/internal/domain/diet"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("species not found")
	ErrDuplicate    = errors.New("species name already exists")
	ErrInUse        = errors.New("species has animals")
)

type Service struct {
	repo  Repository
	usage UsageCounter
	now   func() time.Time
}

func NewService(repo Repository, usage UsageCounter) *Service {
	return &Service{
		repo:  repo,
		usage: usage,
		now:   time.Now,
	}
}

type CreateInput struct {
	Name string
	Diet string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Species, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Species{}, ErrInvalidInput
	}
	d, err := diet.Parse(in.Diet)
	if err != nil {
		return Species{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return Species{}, ErrDuplicate
	}

	now := s.now()
	sp := Species{
		ID:        uuid.NewString(),
		Name:      name,
		Diet:      d,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, sp); err != nil {
		return Species{}, err
	}
	return sp, nil
}

type UpdateInput struct {
	// Punteros para PATCH: nil = no tocar.
	Name *string
	Diet *string
}

// Update permite editar nombre y dieta. Cambiar la dieta de una especie con
// animales rompería la compatibilidad con sus recintos, así que se rechaza.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Species, error) {
	sp, err := s.GetByID(ctx, id)
	if err != nil {
		return Species{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Species{}, ErrInvalidInput
		}
		if other, err := s.repo.GetByName(ctx, name); err == nil && other.ID != sp.ID {
			return Species{}, ErrDuplicate
		}
		sp.Name = name
	}

	if in.Diet != nil {
		d, err := diet.Parse(*in.Diet)
		if err != nil {
			return Species{}, ErrInvalidInput
		}
		if d != sp.Diet {
			n, err := s.countAnimals(ctx, sp.ID)
			if err != nil {
				return Species{}, err
			}
			if n > 0 {
				return Species{}, ErrInUse
			}
		}
		sp.Diet = d
	}

	sp.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sp); err != nil {
		return Species{}, err
	}
	return sp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	sp, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.countAnimals(ctx, sp.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrInUse
	}
	return s.repo.Delete(ctx, sp.ID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Species, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Species{}, ErrNotFound
	}
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Species{}, ErrNotFound
	}
	return sp, nil
}

func (s *Service) List(ctx context.Context) ([]Species, error) {
	return s.repo.List(ctx)
}

func (s *Service) countAnimals(ctx context.Context, speciesID string) (int, error) {
	if s.usage == nil {
		return 0, nil
	}
	return s.usage.CountBySpecies(ctx, speciesID)
}
