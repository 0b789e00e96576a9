package animals

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/enclosures"
	"zoo-keeper/internal/domain/occupancy"
	"zoo-keeper/internal/domain/species"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// -------------------------
// Test doubles (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	mu   sync.RWMutex
	byID map[string]Animal

	// failEnclosure hace fallar UpdateEnclosure/Create con ese error.
	failEnclosure error
	// blockEnclosure espera a que venza el contexto antes de responder.
	blockEnclosure bool
	// commitDelay demora Create/UpdateEnclosure ignorando el contexto y luego commitea.
	commitDelay time.Duration
	// failUpdate hace fallar Update (nombre, comida).
	failUpdate error
	// flakyEvery > 0 hace fallar una de cada N escrituras de recinto.
	flakyEvery int32
	writes     atomic.Int32
}

var errFlaky = errors.New("flaky write")

func (r *testRepo) flaky() error {
	if r.flakyEvery > 0 && r.writes.Add(1)%r.flakyEvery == 0 {
		return errFlaky
	}
	return nil
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Animal{}}
}

func (r *testRepo) Create(ctx context.Context, a Animal) error {
	if r.failEnclosure != nil {
		return r.failEnclosure
	}
	if err := r.flaky(); err != nil {
		return err
	}
	time.Sleep(r.commitDelay)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Animal) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[a.ID]
	if !ok {
		return errRepoNotFound
	}
	a.EnclosureID = cur.EnclosureID
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) UpdateEnclosure(ctx context.Context, id, enclosureID string, updatedAt time.Time) error {
	if r.blockEnclosure {
		<-ctx.Done()
		return ctx.Err()
	}
	if r.failEnclosure != nil {
		return r.failEnclosure
	}
	if err := r.flaky(); err != nil {
		return err
	}
	time.Sleep(r.commitDelay)
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return errRepoNotFound
	}
	a.EnclosureID = enclosureID
	a.UpdatedAt = updatedAt
	r.byID[id] = a
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, errRepoNotFound
	}
	return a, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Animal, 0)
	for _, a := range r.byID {
		if f.OwnerUserID != "" && a.OwnerUserID != f.OwnerUserID {
			continue
		}
		if f.SpeciesID != "" && a.SpeciesID != f.SpeciesID {
			continue
		}
		if f.EnclosureIDs != nil {
			found := false
			for _, id := range f.EnclosureIDs {
				if id == a.EnclosureID {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) CountBySpecies(ctx context.Context, speciesID string) (int, error) {
	items, _ := r.List(ctx, ListFilter{SpeciesID: speciesID})
	return len(items), nil
}

func (r *testRepo) OccupantsByEnclosure(ctx context.Context) (map[string][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[string][]string{}
	for _, a := range r.byID {
		out[a.EnclosureID] = append(out[a.EnclosureID], a.ID)
	}
	return out, nil
}

type testSpecies map[string]species.Species

func (s testSpecies) GetByID(ctx context.Context, id string) (species.Species, error) {
	sp, ok := s[id]
	if !ok {
		return species.Species{}, errRepoNotFound
	}
	return sp, nil
}

type testEnclosures map[string]enclosures.Enclosure

func (e testEnclosures) GetByID(ctx context.Context, id string) (enclosures.Enclosure, error) {
	enc, ok := e[id]
	if !ok {
		return enclosures.Enclosure{}, errRepoNotFound
	}
	return enc, nil
}

func (e testEnclosures) List(ctx context.Context) ([]enclosures.View, error) {
	out := make([]enclosures.View, 0, len(e))
	for _, enc := range e {
		out = append(out, enclosures.View{Enclosure: enc})
	}
	return out, nil
}

// -------------------------
// Fixture
// -------------------------

var (
	owner = Actor{UserID: "owner-1"}
	other = Actor{UserID: "owner-2"}
	staff = Actor{UserID: "keeper", IsStaff: true}

	fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc    *Service
	repo   *testRepo
	ledger *occupancy.Ledger
}

// newFixture arma tres recintos:
//
//	meadow  herbívoro cap 5
//	paddock herbívoro cap 1
//	den     carnívoro cap 2
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	encs := testEnclosures{
		"meadow":  {ID: "meadow", Name: "Meadow", Capacity: 5, DietType: diet.Herbivore},
		"paddock": {ID: "paddock", Name: "Paddock", Capacity: 1, DietType: diet.Herbivore},
		"den":     {ID: "den", Name: "Lion Den", Capacity: 2, DietType: diet.Carnivore},
	}
	sps := testSpecies{
		"zebra": {ID: "zebra", Name: "Zebra", Diet: diet.Herbivore},
		"lion":  {ID: "lion", Name: "Lion", Diet: diet.Carnivore},
	}

	ledger := occupancy.NewLedger()
	for _, e := range encs {
		require.NoError(t, ledger.Track(e.ID, e.Capacity, e.DietType))
	}

	repo := newTestRepo()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{
		svc:    NewService(repo, sps, encs, ledger, opts...),
		repo:   repo,
		ledger: ledger,
	}
}

// seed registra un animal ya asignado, como si viniera de storage.
func (f *fixture) seed(t *testing.T, id, ownerID, speciesID, enclosureID string) {
	t.Helper()
	sp := map[string]diet.Diet{"zebra": diet.Herbivore, "lion": diet.Carnivore}[speciesID]
	_, err := f.ledger.Reserve(enclosureID, id, sp)
	require.NoError(t, err)
	f.repo.byID[id] = Animal{ID: id, OwnerUserID: ownerID, Name: id, SpeciesID: speciesID, EnclosureID: enclosureID}
}

func (f *fixture) enclosureOf(t *testing.T, id string) string {
	t.Helper()
	a, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a.EnclosureID
}

// -------------------------
// Assign
// -------------------------

func TestAssign_MovesAnimalAndUpdatesBothEnclosures(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")

	a, err := f.svc.Assign(context.Background(), owner, "zara", "paddock")
	require.NoError(t, err)
	require.Equal(t, "paddock", a.EnclosureID)
	require.Equal(t, fixedNow, a.UpdatedAt)

	require.Equal(t, "paddock", f.enclosureOf(t, "zara"))
	require.Equal(t, 0, f.ledger.Occupancy("meadow"))
	require.Equal(t, 1, f.ledger.Occupancy("paddock"))
}

func TestAssign_SameEnclosureIsNoop(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "paddock")

	a, err := f.svc.Assign(context.Background(), owner, "zara", "paddock")
	require.NoError(t, err)
	require.Equal(t, "paddock", a.EnclosureID)
	require.Equal(t, 1, f.ledger.Occupancy("paddock"))
}

func TestAssign_DietMismatch(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")

	_, err := f.svc.Assign(context.Background(), owner, "zara", "den")
	require.ErrorIs(t, err, ErrDietMismatch)

	var dm *DietMismatchError
	require.ErrorAs(t, err, &dm)
	require.Equal(t, diet.Carnivore, dm.Expected)
	require.Equal(t, diet.Herbivore, dm.Actual)

	require.Equal(t, "meadow", f.enclosureOf(t, "zara"))
	require.Equal(t, 0, f.ledger.Occupancy("den"))
}

func TestAssign_CapacityExceeded(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "paddock")
	f.seed(t, "zed", owner.UserID, "zebra", "meadow")

	_, err := f.svc.Assign(context.Background(), owner, "zed", "paddock")
	require.ErrorIs(t, err, ErrCapacityExceeded)

	var ce *CapacityExceededError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, 1, ce.Capacity)
	require.Equal(t, "meadow", f.enclosureOf(t, "zed"))
}

func TestAssign_NotFoundAndForbiddenLookTheSame(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")

	_, err := f.svc.Assign(context.Background(), other, "zara", "paddock")
	require.ErrorIs(t, err, ErrNotFoundOrForbidden)

	_, err = f.svc.Assign(context.Background(), owner, "ghost", "paddock")
	require.ErrorIs(t, err, ErrNotFoundOrForbidden)

	_, err = f.svc.Assign(context.Background(), owner, "zara", "nowhere")
	require.ErrorIs(t, err, ErrNotFoundOrForbidden)

	// Staff puede mover animales ajenos.
	_, err = f.svc.Assign(context.Background(), staff, "zara", "paddock")
	require.NoError(t, err)
}

func TestAssign_PersistenceFailureRollsBackReservation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")
	f.repo.failEnclosure = errors.New("connection reset")

	_, err := f.svc.Assign(context.Background(), owner, "zara", "paddock")
	require.ErrorIs(t, err, ErrPersistenceFailure)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "assign", pe.Op)

	// Nada cambió: ni el ledger ni el registro.
	require.Equal(t, 0, f.ledger.Occupancy("paddock"))
	require.True(t, f.ledger.Holds("meadow", "zara"))
	require.Equal(t, "meadow", f.enclosureOf(t, "zara"))

	// El lugar liberado se puede volver a tomar.
	f.repo.failEnclosure = nil
	_, err = f.svc.Assign(context.Background(), owner, "zara", "paddock")
	require.NoError(t, err)
}

func TestAssign_PersistTimeoutIsAFailure(t *testing.T) {
	f := newFixture(t, WithPersistTimeout(20*time.Millisecond))
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")
	f.repo.blockEnclosure = true

	_, err := f.svc.Assign(context.Background(), owner, "zara", "paddock")
	require.ErrorIs(t, err, ErrPersistenceFailure)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 0, f.ledger.Occupancy("paddock"))
}

func TestCreate_LateCommitStillCounts(t *testing.T) {
	f := newFixture(t, WithPersistTimeout(10*time.Millisecond))
	f.repo.commitDelay = 40 * time.Millisecond

	// El repo commitea pasado el plazo pero sin error: el alta vale.
	a, err := f.svc.Create(context.Background(), owner, CreateInput{Name: "Zara", SpeciesID: "zebra", EnclosureID: "paddock"})
	require.NoError(t, err)
	require.True(t, f.ledger.Holds("paddock", a.ID))

	_, err = f.svc.Create(context.Background(), owner, CreateInput{Name: "Zed", SpeciesID: "zebra", EnclosureID: "paddock"})
	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.Len(t, f.repo.byID, 1)
	require.Equal(t, 1, f.ledger.Occupancy("paddock"))
}

func TestAssign_LateCommitStillCounts(t *testing.T) {
	f := newFixture(t, WithPersistTimeout(10*time.Millisecond))
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")
	f.repo.commitDelay = 40 * time.Millisecond

	_, err := f.svc.Assign(context.Background(), owner, "zara", "paddock")
	require.NoError(t, err)
	require.Equal(t, "paddock", f.enclosureOf(t, "zara"))
	require.True(t, f.ledger.Holds("paddock", "zara"))
	require.Equal(t, 0, f.ledger.Occupancy("meadow"))
}

func TestAssign_ConcurrentLastSlot(t *testing.T) {
	for round := 0; round < 100; round++ {
		f := newFixture(t)
		f.seed(t, "a", owner.UserID, "zebra", "meadow")
		f.seed(t, "b", other.UserID, "zebra", "meadow")

		var ok, full atomic.Int32
		var g errgroup.Group
		start := make(chan struct{})
		for _, c := range []struct {
			actor Actor
			id    string
		}{{owner, "a"}, {other, "b"}} {
			g.Go(func() error {
				<-start
				_, err := f.svc.Assign(context.Background(), c.actor, c.id, "paddock")
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, ErrCapacityExceeded):
					full.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		close(start)
		require.NoError(t, g.Wait())

		require.Equal(t, int32(1), ok.Load())
		require.Equal(t, int32(1), full.Load())
		require.Equal(t, 1, f.ledger.Occupancy("paddock"))

		inPaddock := 0
		for _, id := range []string{"a", "b"} {
			if f.enclosureOf(t, id) == "paddock" {
				inPaddock++
			}
		}
		require.Equal(t, 1, inPaddock)
	}
}

func TestAssign_ConcurrentMovesOfSameAnimal(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "paddock")

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		target := "meadow"
		if i%2 == 0 {
			target = "paddock"
		}
		g.Go(func() error {
			_, err := f.svc.Assign(context.Background(), owner, "zara", target)
			return err
		})
	}
	require.NoError(t, g.Wait())

	// El animal cuenta en un solo recinto: el que dice su registro.
	where := f.enclosureOf(t, "zara")
	require.Equal(t, 1, f.ledger.Occupancy(where))
	require.Equal(t, 1, f.ledger.Occupancy("meadow")+f.ledger.Occupancy("paddock"))
}

// -------------------------
// Create / Delete / Update
// -------------------------

func TestCreate_ReservesSlot(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Leo",
		SpeciesID:   "lion",
		EnclosureID: "den",
	})
	require.NoError(t, err)
	require.Equal(t, owner.UserID, a.OwnerUserID)
	require.True(t, f.ledger.Holds("den", a.ID))
}

func TestCreate_RejectsWhenFullOrWrongDiet(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "paddock")

	_, err := f.svc.Create(context.Background(), owner, CreateInput{Name: "Zed", SpeciesID: "zebra", EnclosureID: "paddock"})
	require.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = f.svc.Create(context.Background(), owner, CreateInput{Name: "Zed", SpeciesID: "zebra", EnclosureID: "den"})
	require.ErrorIs(t, err, ErrDietMismatch)

	_, err = f.svc.Create(context.Background(), owner, CreateInput{Name: "Zed", SpeciesID: "unicorn", EnclosureID: "meadow"})
	require.ErrorIs(t, err, ErrInvalidInput)

	require.Len(t, f.repo.byID, 1)
}

func TestCreate_PersistenceFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.repo.failEnclosure = errors.New("disk full")

	_, err := f.svc.Create(context.Background(), owner, CreateInput{Name: "Leo", SpeciesID: "lion", EnclosureID: "den"})
	require.ErrorIs(t, err, ErrPersistenceFailure)
	require.Equal(t, 0, f.ledger.Occupancy("den"))
	require.Empty(t, f.repo.byID)
}

func TestCreate_StaffCanCreateOnBehalfOfOwner(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Create(context.Background(), staff, CreateInput{
		Name: "Leo", SpeciesID: "lion", EnclosureID: "den", OwnerUserID: owner.UserID,
	})
	require.NoError(t, err)
	require.Equal(t, owner.UserID, a.OwnerUserID)

	// Un dueño no puede asignar otro dueño.
	b, err := f.svc.Create(context.Background(), other, CreateInput{
		Name: "Nala", SpeciesID: "lion", EnclosureID: "den", OwnerUserID: owner.UserID,
	})
	require.NoError(t, err)
	require.Equal(t, other.UserID, b.OwnerUserID)
}

func TestDelete_ReleasesSlot(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "paddock")

	require.ErrorIs(t, f.svc.Delete(context.Background(), other, "zara"), ErrNotFoundOrForbidden)
	require.NoError(t, f.svc.Delete(context.Background(), owner, "zara"))
	require.Equal(t, 0, f.ledger.Occupancy("paddock"))
	require.Empty(t, f.repo.byID)
}

func TestUpdate_RenameAndMove(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")

	name, target := "Zara II", "paddock"
	a, err := f.svc.Update(context.Background(), owner, "zara", UpdateInput{Name: &name, EnclosureID: &target})
	require.NoError(t, err)
	require.Equal(t, "Zara II", a.Name)
	require.Equal(t, "paddock", a.EnclosureID)

	stored, err := f.repo.GetByID(context.Background(), "zara")
	require.NoError(t, err)
	require.Equal(t, "Zara II", stored.Name)
	require.Equal(t, "paddock", stored.EnclosureID)
}

func TestUpdate_RenameFailureRevertsMove(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")
	f.repo.failUpdate = errors.New("db down")

	name, target := "Zara II", "paddock"
	_, err := f.svc.Update(context.Background(), owner, "zara", UpdateInput{Name: &name, EnclosureID: &target})
	require.ErrorIs(t, err, ErrPersistenceFailure)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "update", pe.Op)

	stored, err := f.repo.GetByID(context.Background(), "zara")
	require.NoError(t, err)
	require.Equal(t, "zara", stored.Name)
	require.Equal(t, "meadow", stored.EnclosureID)
	require.True(t, f.ledger.Holds("meadow", "zara"))
	require.Equal(t, 0, f.ledger.Occupancy("paddock"))

	// Solo nombre: mismo error tipado, nada cambia.
	_, err = f.svc.Update(context.Background(), owner, "zara", UpdateInput{Name: &name})
	require.ErrorIs(t, err, ErrPersistenceFailure)

	f.repo.failUpdate = nil
	a, err := f.svc.Update(context.Background(), owner, "zara", UpdateInput{Name: &name, EnclosureID: &target})
	require.NoError(t, err)
	require.Equal(t, "paddock", a.EnclosureID)
	require.Equal(t, 0, f.ledger.Occupancy("meadow"))
}

// Operaciones públicas mezcladas al azar, con escrituras que fallan de vez en
// cuando: nunca hay panic y al final ledger y registros coinciden.
func TestService_RandomOperationsKeepLedgerAndRecordsInSync(t *testing.T) {
	f := newFixture(t)
	f.repo.flakyEvery = 7

	var (
		mu  sync.Mutex
		ids []string
	)
	pick := func(r *rand.Rand) string {
		mu.Lock()
		defer mu.Unlock()
		if len(ids) == 0 {
			return "ghost"
		}
		return ids[r.IntN(len(ids))]
	}
	enclosuresFor := []string{"meadow", "paddock", "den"}

	expected := func(err error) bool {
		return err == nil ||
			errors.Is(err, ErrCapacityExceeded) ||
			errors.Is(err, ErrDietMismatch) ||
			errors.Is(err, ErrNotFoundOrForbidden) ||
			errors.Is(err, ErrPersistenceFailure)
	}

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("worker %d panicked: %v", w, p)
				}
			}()
			r := rand.New(rand.NewPCG(uint64(w), 42))
			ctx := context.Background()

			for i := 0; i < 300; i++ {
				var opErr error
				switch r.IntN(5) {
				case 0:
					sp := "zebra"
					if r.IntN(4) == 0 {
						sp = "lion"
					}
					var a Animal
					a, opErr = f.svc.Create(ctx, staff, CreateInput{
						Name: fmt.Sprintf("a-%d-%d", w, i), SpeciesID: sp,
						EnclosureID: enclosuresFor[r.IntN(len(enclosuresFor))],
					})
					if opErr == nil {
						mu.Lock()
						ids = append(ids, a.ID)
						mu.Unlock()
					}
				case 1:
					_, opErr = f.svc.Assign(ctx, staff, pick(r), enclosuresFor[r.IntN(len(enclosuresFor))])
				case 2:
					name := fmt.Sprintf("renamed-%d", i)
					target := enclosuresFor[r.IntN(len(enclosuresFor))]
					_, opErr = f.svc.Update(ctx, staff, pick(r), UpdateInput{Name: &name, EnclosureID: &target})
				case 3:
					opErr = f.svc.Delete(ctx, staff, pick(r))
				case 4:
					_, opErr = f.svc.FeedNow(ctx, staff, pick(r))
				}
				if !expected(opErr) {
					return fmt.Errorf("unexpected error: %w", opErr)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	stored, err := f.repo.OccupantsByEnclosure(context.Background())
	require.NoError(t, err)
	for _, enc := range enclosuresFor {
		got := stored[enc]
		sort.Strings(got)
		if got == nil {
			got = []string{}
		}
		require.Equal(t, got, f.ledger.Members(enc), "enclosure %s", enc)

		snap, ok := f.ledger.Snapshot(enc)
		require.True(t, ok)
		require.LessOrEqual(t, snap.Current, snap.Capacity)
	}
}

// -------------------------
// List / feeding
// -------------------------

func TestList_ScopesByOwnerAndFilters(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")
	f.seed(t, "leo", owner.UserID, "lion", "den")
	f.seed(t, "nala", other.UserID, "lion", "den")

	items, err := f.svc.List(context.Background(), owner, ListInput{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = f.svc.List(context.Background(), staff, ListInput{Enclosure: "den"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = f.svc.List(context.Background(), staff, ListInput{Enclosure: "nothing-matches"})
	require.NoError(t, err)
	require.Empty(t, items)

	items, err = f.svc.List(context.Background(), owner, ListInput{SpeciesID: "lion", Query: "LE"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "leo", items[0].ID)
}

func TestFeedNow_SetsLastFedAtFromClock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "zara", owner.UserID, "zebra", "meadow")

	require.True(t, f.svc.NeedsFeeding(f.repo.byID["zara"]))

	a, err := f.svc.FeedNow(context.Background(), owner, "zara")
	require.NoError(t, err)
	require.NotNil(t, a.LastFedAt)
	require.Equal(t, fixedNow, *a.LastFedAt)
	require.False(t, f.svc.NeedsFeeding(a))
	require.Equal(t, "meadow", f.enclosureOf(t, "zara"))

	_, err = f.svc.FeedNow(context.Background(), other, "zara")
	require.ErrorIs(t, err, ErrNotFoundOrForbidden)
}

func TestNeedsFeeding(t *testing.T) {
	now := fixedNow
	at := func(d time.Duration) *time.Time {
		v := now.Add(-d)
		return &v
	}

	cases := []struct {
		name string
		last *time.Time
		want bool
	}{
		{"never fed", nil, true},
		{"just fed", at(0), false},
		{"exactly 24h", at(24 * time.Hour), false},
		{"24h and 1s", at(24*time.Hour + time.Second), true},
		{"23h59m", at(23*time.Hour + 59*time.Minute), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, NeedsFeeding(c.last, now))
		})
	}
}
