package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/occupancy"
	"zoo-keeper/internal/platform/metrics"
)

// Assign mueve un animal a otro recinto.
//
// Secuencia:
//  1. cargar animal (dueño o staff; si no, ErrNotFoundOrForbidden)
//  2. mismo recinto: éxito sin tocar el ledger
//  3. cargar recinto y especie; dieta incompatible => DietMismatchError
//  4. reservar lugar en el ledger (capacidad)
//  5. persistir con timeout; si falla se cancela la reserva
//  6. liberar el recinto anterior
//
// Mientras dura el paso 5 el animal cuenta en los dos recintos: un Reserve
// concurrente sobre el recinto de origen puede ver CapacityExceeded aunque
// ese lugar esté por liberarse.
func (s *Service) Assign(ctx context.Context, actor Actor, animalID, targetEnclosureID string) (Animal, error) {
	unlock := s.locks.lock(strings.TrimSpace(animalID))
	defer unlock()

	a, err := s.load(ctx, actor, animalID)
	if err != nil {
		metrics.ObserveAssignment(metrics.ResultNotFound)
		return Animal{}, err
	}
	target := strings.TrimSpace(targetEnclosureID)
	if target == "" {
		return Animal{}, ErrInvalidInput
	}
	return s.assignLocked(ctx, a, target, nil)
}

// assignLocked asume el lock del animal tomado. Si then != nil corre después
// de persistir el recinto y antes de liberar el anterior; si falla, el
// movimiento se deshace y se devuelve PersistenceError.
func (s *Service) assignLocked(ctx context.Context, a Animal, target string, then func(context.Context) error) (Animal, error) {
	if a.EnclosureID == target {
		if then != nil {
			if err := then(ctx); err != nil {
				return Animal{}, &PersistenceError{Op: "update", Err: err}
			}
		}
		metrics.ObserveAssignment(metrics.ResultNoop)
		return a, nil
	}

	speciesDiet, err := s.dietOf(ctx, a.SpeciesID)
	if err != nil {
		metrics.ObserveAssignment(metrics.ResultNotFound)
		return Animal{}, err
	}

	res, err := s.reserve(ctx, a.ID, target, speciesDiet)
	if err != nil {
		return Animal{}, err
	}

	now := s.now()
	if err := s.persist(ctx, "assign", res, func(pctx context.Context) error {
		return s.repo.UpdateEnclosure(pctx, a.ID, target, now)
	}); err != nil {
		return Animal{}, err
	}

	if then != nil {
		if err := then(ctx); err != nil {
			return Animal{}, s.undoMove(ctx, a, res, err)
		}
	}

	prev := a.EnclosureID
	s.releaseHeld(prev, a.ID)

	a.EnclosureID = target
	a.UpdatedAt = now

	metrics.ObserveAssignment(metrics.ResultAssigned)
	s.log.Info("animal assigned", map[string]any{
		"animal_id": a.ID,
		"from":      prev,
		"to":        target,
	})
	return a, nil
}

// reserve valida dieta contra el recinto persistido y toma el lugar en el ledger.
// El ledger vuelve a chequear la dieta dentro de su sección crítica.
func (s *Service) reserve(ctx context.Context, animalID, enclosureID string, speciesDiet diet.Diet) (occupancy.Reservation, error) {
	enc, err := s.enclosures.GetByID(ctx, enclosureID)
	if err != nil {
		metrics.ObserveAssignment(metrics.ResultNotFound)
		return occupancy.Reservation{}, ErrNotFoundOrForbidden
	}
	if !diet.Compatible(speciesDiet, enc.DietType) {
		metrics.ObserveAssignment(metrics.ResultDietMismatch)
		return occupancy.Reservation{}, &DietMismatchError{Expected: enc.DietType, Actual: speciesDiet}
	}

	res, err := s.ledger.Reserve(enc.ID, animalID, speciesDiet)
	if err == nil {
		return res, nil
	}

	var capErr *occupancy.CapacityError
	var dietErr *occupancy.DietError
	switch {
	case errors.As(err, &capErr):
		metrics.ObserveAssignment(metrics.ResultCapacityExceeded)
		return occupancy.Reservation{}, &CapacityExceededError{EnclosureID: enc.ID, Capacity: capErr.Capacity}
	case errors.As(err, &dietErr):
		metrics.ObserveAssignment(metrics.ResultDietMismatch)
		return occupancy.Reservation{}, &DietMismatchError{Expected: dietErr.Expected, Actual: dietErr.Actual}
	case errors.Is(err, occupancy.ErrBusy):
		return occupancy.Reservation{}, ErrEnclosureBusy
	case errors.Is(err, occupancy.ErrUnknownEnclosure):
		metrics.ObserveAssignment(metrics.ResultNotFound)
		return occupancy.Reservation{}, ErrNotFoundOrForbidden
	default:
		return occupancy.Reservation{}, err
	}
}

// persist corre write con un contexto acotado. Si falla, cancela la reserva
// para que ledger y storage vuelvan a coincidir.
func (s *Service) persist(ctx context.Context, op string, res occupancy.Reservation, write func(context.Context) error) error {
	pctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	// Un write que vuelve nil quedó commiteado aunque el plazo ya haya vencido:
	// solo un error del write dispara la compensación.
	start := time.Now()
	err := write(pctx)
	metrics.ObservePersist(time.Since(start).Seconds())

	if err != nil {
		s.ledger.Cancel(res)
		metrics.ObserveCompensation()
		metrics.ObserveAssignment(metrics.ResultPersistenceFailure)
		s.log.Warn("persist failed, reservation released", map[string]any{
			"op":           op,
			"animal_id":    res.AnimalID,
			"enclosure_id": res.EnclosureID,
			"error":        err.Error(),
		})
		return &PersistenceError{Op: op, Err: err}
	}

	s.observeOccupancy(res.EnclosureID)
	return nil
}

// undoMove revierte un cambio de recinto ya persistido cuando falla un paso
// posterior. El recinto anterior sigue reservado, así que volver siempre entra.
func (s *Service) undoMove(ctx context.Context, a Animal, res occupancy.Reservation, cause error) error {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	if err := s.repo.UpdateEnclosure(pctx, a.ID, a.EnclosureID, a.UpdatedAt); err != nil {
		// Storage quedó en el destino: el ledger lo sigue.
		s.releaseHeld(a.EnclosureID, a.ID)
		s.observeOccupancy(res.EnclosureID)
		s.log.Error("move could not be reverted, animal stays in target", map[string]any{
			"animal_id":    a.ID,
			"enclosure_id": res.EnclosureID,
			"error":        err.Error(),
		})
		return &PersistenceError{Op: "update", Err: errors.Join(cause, err)}
	}

	s.ledger.Cancel(res)
	s.observeOccupancy(res.EnclosureID)
	metrics.ObserveCompensation()
	metrics.ObserveAssignment(metrics.ResultPersistenceFailure)
	s.log.Warn("update failed, move reverted", map[string]any{
		"animal_id":    a.ID,
		"enclosure_id": res.EnclosureID,
		"error":        cause.Error(),
	})
	return &PersistenceError{Op: "update", Err: cause}
}

// releaseHeld libera el lugar del animal en enclosureID si lo tiene.
func (s *Service) releaseHeld(enclosureID, animalID string) {
	if enclosureID != "" && s.ledger.Holds(enclosureID, animalID) {
		s.ledger.Release(enclosureID, animalID)
		s.observeOccupancy(enclosureID)
	}
}

func observeOccupancy(l *occupancy.Ledger, enclosureID string) {
	if snap, ok := l.Snapshot(enclosureID); ok {
		metrics.SetOccupancy(enclosureID, snap.Current)
	}
}
