package animals

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/occupancy"
	"zoo-keeper/internal/platform/logger"

	"github.com/google/uuid"
)

// DefaultPersistTimeout acota cada escritura del recinto de un animal.
const DefaultPersistTimeout = 3 * time.Second

type Service struct {
	repo       Repository
	species    SpeciesLookup
	enclosures EnclosureLookup
	ledger     *occupancy.Ledger
	locks      animalLocks

	log            logger.Logger
	now            func() time.Time
	persistTimeout time.Duration
}

type Option func(*Service)

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithPersistTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, sp SpeciesLookup, enc EnclosureLookup, ledger *occupancy.Ledger, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		species:        sp,
		enclosures:     enc,
		ledger:         ledger,
		log:            logger.Nop(),
		now:            time.Now,
		persistTimeout: DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(map[string]any{"component": "animals"})
	return s
}

type CreateInput struct {
	Name        string
	SpeciesID   string
	EnclosureID string
	// OwnerUserID solo lo respeta el staff; para el resto el dueño es el actor.
	OwnerUserID string
}

func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (Animal, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Animal{}, ErrNotFoundOrForbidden
	}
	name := strings.TrimSpace(in.Name)
	speciesID := strings.TrimSpace(in.SpeciesID)
	enclosureID := strings.TrimSpace(in.EnclosureID)
	if name == "" || speciesID == "" || enclosureID == "" {
		return Animal{}, ErrInvalidInput
	}

	sp, err := s.species.GetByID(ctx, speciesID)
	if err != nil {
		return Animal{}, ErrInvalidInput
	}

	owner := actor.UserID
	if actor.IsStaff && strings.TrimSpace(in.OwnerUserID) != "" {
		owner = strings.TrimSpace(in.OwnerUserID)
	}

	now := s.now()
	a := Animal{
		ID:          uuid.NewString(),
		OwnerUserID: owner,
		Name:        name,
		SpeciesID:   sp.ID,
		EnclosureID: enclosureID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := s.reserve(ctx, a.ID, enclosureID, sp.Diet)
	if err != nil {
		return Animal{}, err
	}

	if err := s.persist(ctx, "create", res, func(pctx context.Context) error {
		return s.repo.Create(pctx, a)
	}); err != nil {
		return Animal{}, err
	}

	s.log.Info("animal created", map[string]any{
		"animal_id":    a.ID,
		"owner_id":     a.OwnerUserID,
		"species_id":   a.SpeciesID,
		"enclosure_id": a.EnclosureID,
	})
	return a, nil
}

// Get devuelve el animal si el actor es dueño o staff.
func (s *Service) Get(ctx context.Context, actor Actor, id string) (Animal, error) {
	return s.load(ctx, actor, id)
}

type ListInput struct {
	SpeciesID string
	Enclosure string // substring del nombre del recinto
	Query     string // substring del nombre del animal
}

// List: el staff ve todo; el resto solo sus animales.
func (s *Service) List(ctx context.Context, actor Actor, in ListInput) ([]Animal, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, ErrNotFoundOrForbidden
	}

	filter := ListFilter{
		SpeciesID: strings.TrimSpace(in.SpeciesID),
		Query:     strings.TrimSpace(in.Query),
	}
	if !actor.IsStaff {
		filter.OwnerUserID = actor.UserID
	}

	if q := strings.ToLower(strings.TrimSpace(in.Enclosure)); q != "" {
		views, err := s.enclosures.List(ctx)
		if err != nil {
			return nil, err
		}
		filter.EnclosureIDs = make([]string, 0)
		for _, v := range views {
			if strings.Contains(strings.ToLower(v.Name), q) {
				filter.EnclosureIDs = append(filter.EnclosureIDs, v.ID)
			}
		}
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name == items[j].Name {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

type UpdateInput struct {
	Name        *string
	EnclosureID *string
}

// Update cambia nombre y/o recinto. El recinto pasa por Assign.
func (s *Service) Update(ctx context.Context, actor Actor, id string, in UpdateInput) (Animal, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	a, err := s.load(ctx, actor, id)
	if err != nil {
		return Animal{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Animal{}, ErrInvalidInput
		}
		a.Name = name
	}

	writeName := func(wctx context.Context) error {
		pctx, cancel := context.WithTimeout(wctx, s.persistTimeout)
		defer cancel()
		a.UpdatedAt = s.now()
		return s.repo.Update(pctx, a)
	}

	// Con cambio de recinto el nombre se escribe dentro del movimiento, así
	// un fallo deja animal y ledger como estaban.
	if in.EnclosureID != nil {
		target := strings.TrimSpace(*in.EnclosureID)
		if target == "" {
			return Animal{}, ErrInvalidInput
		}
		var then func(context.Context) error
		if in.Name != nil {
			then = writeName
		}
		moved, err := s.assignLocked(ctx, a, target, then)
		if err != nil {
			return Animal{}, err
		}
		return moved, nil
	}

	if in.Name != nil {
		if err := writeName(ctx); err != nil {
			return Animal{}, &PersistenceError{Op: "update", Err: err}
		}
	}
	return a, nil
}

// Delete borra el registro y recién después libera el lugar en el ledger.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	a, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	s.releaseHeld(a.EnclosureID, a.ID)

	s.log.Info("animal deleted", map[string]any{"animal_id": a.ID, "enclosure_id": a.EnclosureID})
	return nil
}

// FeedNow registra que el animal comió ahora.
func (s *Service) FeedNow(ctx context.Context, actor Actor, id string) (Animal, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	a, err := s.load(ctx, actor, id)
	if err != nil {
		return Animal{}, err
	}

	now := s.now()
	a.LastFedAt = &now
	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, &PersistenceError{Op: "feed", Err: err}
	}

	s.log.Debug("animal fed", map[string]any{"animal_id": a.ID})
	return a, nil
}

// NeedsFeeding evalúa la regla con el reloj del servicio.
func (s *Service) NeedsFeeding(a Animal) bool {
	return NeedsFeeding(a.LastFedAt, s.now())
}

// CountBySpecies lo usa species para bloquear borrados y cambios de dieta.
func (s *Service) CountBySpecies(ctx context.Context, speciesID string) (int, error) {
	return s.repo.CountBySpecies(ctx, speciesID)
}

// load une "no existe" y "no es tuyo" en ErrNotFoundOrForbidden.
func (s *Service) load(ctx context.Context, actor Actor, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(actor.UserID) == "" {
		return Animal{}, ErrNotFoundOrForbidden
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Animal{}, err
		}
		return Animal{}, ErrNotFoundOrForbidden
	}
	if !actor.CanActOn(a) {
		return Animal{}, ErrNotFoundOrForbidden
	}
	return a, nil
}

func (s *Service) observeOccupancy(enclosureID string) {
	observeOccupancy(s.ledger, enclosureID)
}

// dietOf resuelve la dieta de la especie de un animal.
func (s *Service) dietOf(ctx context.Context, speciesID string) (diet.Diet, error) {
	sp, err := s.species.GetByID(ctx, speciesID)
	if err != nil {
		return "", ErrNotFoundOrForbidden
	}
	return sp.Diet, nil
}
