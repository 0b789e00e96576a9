package enclosures

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/occupancy"
	"zoo-keeper/internal/platform/logger"
	"zoo-keeper/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("enclosure not found")

	// Alias de los errores del ledger para que los handlers no importen occupancy.
	ErrCapacityBelowOccupancy = occupancy.ErrCapacityBelowOccupancy
	ErrOccupied               = occupancy.ErrOccupied
	ErrBusy                   = occupancy.ErrBusy
)

type Service struct {
	repo   Repository
	ledger *occupancy.Ledger
	log    logger.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(repo Repository, ledger *occupancy.Ledger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		ledger: ledger,
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(map[string]any{"component": "enclosures"})
	return s
}

// Hydrate carga en el ledger todos los recintos persistidos con sus ocupantes.
// Se llama una vez al arrancar, antes de aceptar requests.
func (s *Service) Hydrate(ctx context.Context, occupants OccupantLister) error {
	items, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list enclosures: %w", err)
	}
	byEnclosure, err := occupants.OccupantsByEnclosure(ctx)
	if err != nil {
		return fmt.Errorf("list occupants: %w", err)
	}

	for _, e := range items {
		ids := byEnclosure[e.ID]
		if err := s.ledger.Track(e.ID, e.Capacity, e.DietType, ids...); err != nil {
			// Datos heredados pueden venir sobre capacidad: no bloqueamos el arranque,
			// el recinto queda lleno hasta que salgan animales.
			if errors.Is(err, occupancy.ErrCapacityExceeded) {
				s.log.Warn("enclosure over capacity in storage", map[string]any{
					"enclosure_id": e.ID,
					"capacity":     e.Capacity,
					"occupants":    len(ids),
				})
				if err := s.ledger.Track(e.ID, len(ids), e.DietType, ids...); err != nil {
					return fmt.Errorf("track enclosure %s: %w", e.ID, err)
				}
				metrics.SetOccupancy(e.ID, len(ids))
				continue
			}
			return fmt.Errorf("track enclosure %s: %w", e.ID, err)
		}
		metrics.SetOccupancy(e.ID, len(ids))
	}

	s.log.Info("ledger hydrated", map[string]any{"enclosures": len(items)})
	return nil
}

type CreateInput struct {
	Name        string
	Description string
	Capacity    int
	DietType    string
	Origin      Origin // vacío => manual
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Enclosure, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Capacity < 1 {
		return Enclosure{}, ErrInvalidInput
	}
	d, err := diet.Parse(in.DietType)
	if err != nil {
		return Enclosure{}, ErrInvalidInput
	}
	origin := in.Origin
	if origin == "" {
		origin = OriginManual
	}

	now := s.now()
	e := Enclosure{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Capacity:    in.Capacity,
		DietType:    d,
		Origin:      origin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Enclosure{}, err
	}
	if err := s.ledger.Track(e.ID, e.Capacity, e.DietType); err != nil {
		return Enclosure{}, err
	}
	metrics.SetOccupancy(e.ID, 0)

	s.log.Info("enclosure created", map[string]any{
		"enclosure_id": e.ID,
		"name":         e.Name,
		"capacity":     e.Capacity,
		"diet_type":    string(e.DietType),
		"origin":       string(e.Origin),
	})
	return e, nil
}

type UpdateInput struct {
	// Punteros para PATCH: nil = no tocar.
	Name        *string
	Description *string
	DietType    *string
	Capacity    *int
}

// Update aplica el PATCH como una sola escritura al repo.
//
// Orden respecto del ledger (sin locks durante el I/O):
//   - bajar capacidad: ledger primero (rechaza si queda bajo la ocupación), revertir si falla el repo.
//   - subir capacidad: repo primero, ledger después.
//   - cambiar dieta: Freeze (solo recinto vacío) -> repo -> Thaw con la dieta nueva.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Enclosure, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Enclosure{}, err
	}

	next := current
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Enclosure{}, ErrInvalidInput
		}
		next.Name = name
	}
	if in.Description != nil {
		next.Description = strings.TrimSpace(*in.Description)
	}
	if in.DietType != nil {
		d, err := diet.Parse(*in.DietType)
		if err != nil {
			return Enclosure{}, ErrInvalidInput
		}
		next.DietType = d
	}
	if in.Capacity != nil {
		if *in.Capacity < 1 {
			return Enclosure{}, ErrInvalidInput
		}
		next.Capacity = *in.Capacity
	}

	snap, ok := s.ledger.Snapshot(current.ID)
	if !ok {
		return Enclosure{}, ErrNotFound
	}

	shrink := next.Capacity < snap.Capacity
	grow := next.Capacity > snap.Capacity
	retype := next.DietType != current.DietType

	prevCapacity := snap.Capacity
	if shrink {
		if _, err := s.ledger.Resize(current.ID, next.Capacity); err != nil {
			return Enclosure{}, err
		}
	}
	if retype {
		if err := s.ledger.Freeze(current.ID); err != nil {
			if shrink {
				_, _ = s.ledger.Resize(current.ID, prevCapacity)
			}
			return Enclosure{}, err
		}
	}

	next.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, next); err != nil {
		if retype {
			s.ledger.Thaw(current.ID, "")
		}
		if shrink {
			_, _ = s.ledger.Resize(current.ID, prevCapacity)
		}
		return Enclosure{}, err
	}

	if grow {
		if _, err := s.ledger.Resize(current.ID, next.Capacity); err != nil {
			s.log.Error("ledger resize after commit failed", map[string]any{
				"enclosure_id": current.ID,
				"error":        err.Error(),
			})
		}
	}
	if retype {
		s.ledger.Thaw(current.ID, next.DietType)
	}

	s.log.Info("enclosure updated", map[string]any{
		"enclosure_id": next.ID,
		"capacity":     next.Capacity,
		"diet_type":    string(next.DietType),
	})
	return next, nil
}

// Resize es el atajo de Update solo para capacidad.
func (s *Service) Resize(ctx context.Context, id string, capacity int) (Enclosure, error) {
	return s.Update(ctx, id, UpdateInput{Capacity: &capacity})
}

// Delete solo borra recintos vacíos.
func (s *Service) Delete(ctx context.Context, id string) error {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.ledger.Freeze(e.ID); err != nil {
		if errors.Is(err, occupancy.ErrUnknownEnclosure) {
			return ErrNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, e.ID); err != nil {
		s.ledger.Thaw(e.ID, "")
		return err
	}
	if err := s.ledger.Forget(e.ID); err != nil {
		s.log.Error("ledger forget failed", map[string]any{
			"enclosure_id": e.ID,
			"error":        err.Error(),
		})
	}
	metrics.ForgetEnclosure(e.ID)

	s.log.Info("enclosure deleted", map[string]any{"enclosure_id": e.ID})
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Enclosure, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Enclosure{}, ErrNotFound
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Enclosure{}, ErrNotFound
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(e), nil
}

// Snapshot devuelve {current, capacity, is_full} desde el ledger.
func (s *Service) Snapshot(ctx context.Context, id string) (occupancy.Snapshot, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return occupancy.Snapshot{}, err
	}
	snap, ok := s.ledger.Snapshot(e.ID)
	if !ok {
		return occupancy.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *Service) List(ctx context.Context) ([]View, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name == items[j].Name {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].Name < items[j].Name
	})

	out := make([]View, 0, len(items))
	for _, e := range items {
		out = append(out, s.view(e))
	}
	return out, nil
}

// ListByOrigin filtra por origen (el backfill usa legacy_backfill).
func (s *Service) ListByOrigin(ctx context.Context, origin Origin) ([]Enclosure, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Enclosure, 0)
	for _, e := range items {
		if e.Origin == origin {
			out = append(out, e)
		}
	}
	return out, nil
}

// Map agrupa los recintos en tres listas por dieta.
func (s *Service) Map(ctx context.Context) (MapView, error) {
	views, err := s.List(ctx)
	if err != nil {
		return MapView{}, err
	}

	m := MapView{
		Herbivore: make([]View, 0),
		Carnivore: make([]View, 0),
		Omnivore:  make([]View, 0),
	}
	for _, v := range views {
		switch v.DietType {
		case diet.Herbivore:
			m.Herbivore = append(m.Herbivore, v)
		case diet.Carnivore:
			m.Carnivore = append(m.Carnivore, v)
		case diet.Omnivore:
			m.Omnivore = append(m.Omnivore, v)
		}
	}
	return m, nil
}

func (s *Service) view(e Enclosure) View {
	snap, ok := s.ledger.Snapshot(e.ID)
	if !ok {
		snap = occupancy.Snapshot{Capacity: e.Capacity}
	}
	return View{Enclosure: e, Occupancy: snap}
}
