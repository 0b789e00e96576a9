package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"zoo-keeper/internal/domain/animals"
)

// AnimalRepo guarda animales en memoria. El RWMutex hace que el cambio de
// recinto de un animal sea atómico para los lectores.
type AnimalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
}

func NewAnimalRepo() *AnimalRepo {
	return &AnimalRepo{
		byID: make(map[string]animals.Animal),
	}
}

func (r *AnimalRepo) Create(ctx context.Context, a animals.Animal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *AnimalRepo) Update(ctx context.Context, a animals.Animal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[a.ID]
	if !exists {
		return ErrNotFound
	}
	// El recinto solo cambia por UpdateEnclosure.
	a.EnclosureID = cur.EnclosureID
	a.OwnerUserID = cur.OwnerUserID
	a.SpeciesID = cur.SpeciesID
	r.byID[a.ID] = a
	return nil
}

func (r *AnimalRepo) UpdateEnclosure(ctx context.Context, id, enclosureID string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.byID[id]
	if !exists {
		return ErrNotFound
	}
	a.EnclosureID = enclosureID
	a.UpdatedAt = updatedAt
	r.byID[id] = a
	return nil
}

func (r *AnimalRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *AnimalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *AnimalRepo) List(ctx context.Context, f animals.ListFilter) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var encSet map[string]struct{}
	if f.EnclosureIDs != nil {
		encSet = make(map[string]struct{}, len(f.EnclosureIDs))
		for _, id := range f.EnclosureIDs {
			encSet[id] = struct{}{}
		}
	}
	q := strings.ToLower(f.Query)

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if f.OwnerUserID != "" && a.OwnerUserID != f.OwnerUserID {
			continue
		}
		if f.SpeciesID != "" && a.SpeciesID != f.SpeciesID {
			continue
		}
		if encSet != nil {
			if _, ok := encSet[a.EnclosureID]; !ok {
				continue
			}
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *AnimalRepo) CountBySpecies(ctx context.Context, speciesID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.byID {
		if a.SpeciesID == speciesID {
			n++
		}
	}
	return n, nil
}

func (r *AnimalRepo) OccupantsByEnclosure(ctx context.Context) (map[string][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string)
	for _, a := range r.byID {
		if a.EnclosureID == "" {
			continue
		}
		out[a.EnclosureID] = append(out[a.EnclosureID], a.ID)
	}
	return out, nil
}
