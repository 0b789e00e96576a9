package occupancy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"zoo-keeper/internal/domain/diet"
)

var (
	ErrUnknownEnclosure       = errors.New("unknown enclosure")
	ErrCapacityExceeded       = errors.New("enclosure is full")
	ErrCapacityBelowOccupancy = errors.New("capacity below current occupancy")
	ErrInvalidCapacity        = errors.New("capacity must be at least 1")
	ErrOccupied               = errors.New("enclosure is not empty")
	ErrDietMismatch           = errors.New("diet not compatible with enclosure")
	ErrBusy                   = errors.New("enclosure is being modified")

	// ErrConsistencyFault es un defecto: un Release sin su Reserve previo.
	// Nunca se devuelve como error; el ledger hace panic con él.
	ErrConsistencyFault = errors.New("occupancy: release without matching reservation")
)

// CapacityError acompaña a ErrCapacityExceeded con la capacidad vigente.
type CapacityError struct {
	EnclosureID string
	Capacity    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("enclosure %s is full (capacity %d)", e.EnclosureID, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// DietError acompaña a ErrDietMismatch con la dieta vigente del recinto.
type DietError struct {
	EnclosureID string
	Expected    diet.Diet
	Actual      diet.Diet
}

func (e *DietError) Error() string {
	return fmt.Sprintf("enclosure %s accepts %s animals, got %s", e.EnclosureID, e.Expected, e.Actual)
}

func (e *DietError) Unwrap() error { return ErrDietMismatch }

// Reservation representa un lugar tomado en un recinto.
// Noop=true cuando el animal ya ocupaba ese recinto (no se tocó el conteo).
type Reservation struct {
	EnclosureID string
	AnimalID    string
	Noop        bool
}

type Snapshot struct {
	Current  int  `json:"current"`
	Capacity int  `json:"capacity"`
	IsFull   bool `json:"is_full"`
}

// slot es la sección exclusiva de un recinto.
type slot struct {
	mu       sync.Mutex
	capacity int
	diet     diet.Diet
	members  map[string]struct{}
	frozen   bool // staff cambiando dieta o borrando: no se aceptan reservas
	closed   bool // ya no está en el mapa (Forget)
}

// Ledger lleva la ocupación autoritativa por recinto.
// El mapa de slots tiene su propio RWMutex (solo lookup/alta); cada slot
// tiene su mutex, así que recintos distintos no se bloquean entre sí.
type Ledger struct {
	mu    sync.RWMutex
	slots map[string]*slot
}

func NewLedger() *Ledger {
	return &Ledger{slots: make(map[string]*slot)}
}

// Track registra (o re-hidrata) un recinto con su capacidad, dieta y los
// animales que ya lo ocupan. Se usa al crear recintos y al arrancar desde storage.
func (l *Ledger) Track(enclosureID string, capacity int, d diet.Diet, animalIDs ...string) error {
	enclosureID = strings.TrimSpace(enclosureID)
	if enclosureID == "" {
		return ErrUnknownEnclosure
	}
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	if !d.Valid() {
		return diet.ErrInvalidDiet
	}

	members := make(map[string]struct{}, len(animalIDs))
	for _, id := range animalIDs {
		if strings.TrimSpace(id) == "" {
			continue
		}
		members[id] = struct{}{}
	}
	if len(members) > capacity {
		return &CapacityError{EnclosureID: enclosureID, Capacity: capacity}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.slots[enclosureID]; ok {
		s.mu.Lock()
		s.capacity = capacity
		s.diet = d
		s.members = members
		s.mu.Unlock()
		return nil
	}
	l.slots[enclosureID] = &slot{capacity: capacity, diet: d, members: members}
	return nil
}

// Forget quita un recinto vacío del ledger.
func (l *Ledger) Forget(enclosureID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[enclosureID]
	if !ok {
		return ErrUnknownEnclosure
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.members) > 0 {
		return ErrOccupied
	}
	s.closed = true
	delete(l.slots, enclosureID)
	return nil
}

// Reserve chequea dieta y capacidad y ocupa un lugar, todo en una sola
// sección crítica del recinto.
func (l *Ledger) Reserve(enclosureID, animalID string, speciesDiet diet.Diet) (Reservation, error) {
	s, ok := l.slot(enclosureID)
	if !ok {
		return Reservation{}, ErrUnknownEnclosure
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Reservation{}, ErrUnknownEnclosure
	}
	if _, already := s.members[animalID]; already {
		return Reservation{EnclosureID: enclosureID, AnimalID: animalID, Noop: true}, nil
	}
	if s.frozen {
		return Reservation{}, ErrBusy
	}
	if !diet.Compatible(speciesDiet, s.diet) {
		return Reservation{}, &DietError{EnclosureID: enclosureID, Expected: s.diet, Actual: speciesDiet}
	}
	if len(s.members) >= s.capacity {
		return Reservation{}, &CapacityError{EnclosureID: enclosureID, Capacity: s.capacity}
	}
	s.members[animalID] = struct{}{}
	return Reservation{EnclosureID: enclosureID, AnimalID: animalID}, nil
}

// Release libera el lugar de un animal. Solo es válido tras un Reserve exitoso
// para el mismo par (recinto, animal).
func (l *Ledger) Release(enclosureID, animalID string) {
	s, ok := l.slot(enclosureID)
	if !ok {
		panic(fmt.Errorf("%w: enclosure=%s animal=%s", ErrConsistencyFault, enclosureID, animalID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.members[animalID]; !held {
		panic(fmt.Errorf("%w: enclosure=%s animal=%s", ErrConsistencyFault, enclosureID, animalID))
	}
	delete(s.members, animalID)
}

// Cancel deshace una Reservation. Las no-op no tocan el conteo.
func (l *Ledger) Cancel(r Reservation) {
	if r.Noop || r.EnclosureID == "" {
		return
	}
	l.Release(r.EnclosureID, r.AnimalID)
}

// Resize cambia la capacidad rechazando valores por debajo de la ocupación.
// Devuelve la capacidad anterior para poder revertir.
func (l *Ledger) Resize(enclosureID string, capacity int) (int, error) {
	if capacity < 1 {
		return 0, ErrInvalidCapacity
	}
	s, ok := l.slot(enclosureID)
	if !ok {
		return 0, ErrUnknownEnclosure
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrUnknownEnclosure
	}
	if capacity < len(s.members) {
		return s.capacity, ErrCapacityBelowOccupancy
	}
	prev := s.capacity
	s.capacity = capacity
	return prev, nil
}

// Freeze bloquea nuevas reservas en un recinto vacío mientras el staff
// persiste un cambio de dieta o un borrado. Se libera con Thaw (o Forget).
func (l *Ledger) Freeze(enclosureID string) error {
	s, ok := l.slot(enclosureID)
	if !ok {
		return ErrUnknownEnclosure
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrUnknownEnclosure
	}
	if s.frozen {
		return ErrBusy
	}
	if len(s.members) > 0 {
		return ErrOccupied
	}
	s.frozen = true
	return nil
}

// Thaw reabre un recinto congelado. Si d no es vacía, pasa a ser su dieta.
func (l *Ledger) Thaw(enclosureID string, d diet.Diet) {
	s, ok := l.slot(enclosureID)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d.Valid() {
		s.diet = d
	}
	s.frozen = false
}

func (l *Ledger) Occupancy(enclosureID string) int {
	snap, _ := l.Snapshot(enclosureID)
	return snap.Current
}

func (l *Ledger) Snapshot(enclosureID string) (Snapshot, bool) {
	s, ok := l.slot(enclosureID)
	if !ok {
		return Snapshot{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.members)
	return Snapshot{Current: n, Capacity: s.capacity, IsFull: n >= s.capacity}, true
}

// Holds indica si el animal ocupa un lugar en el recinto.
func (l *Ledger) Holds(enclosureID, animalID string) bool {
	s, ok := l.slot(enclosureID)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, held := s.members[animalID]
	return held
}

// Members devuelve los animales del recinto, ordenados (para logs y tests).
func (l *Ledger) Members(enclosureID string) []string {
	s, ok := l.slot(enclosureID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	out := make([]string, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	s.mu.Unlock()

	sort.Strings(out)
	return out
}

func (l *Ledger) slot(enclosureID string) (*slot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.slots[enclosureID]
	return s, ok
}
