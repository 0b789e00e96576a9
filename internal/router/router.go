package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "zoo-keeper/docs"
	mem "zoo-keeper/internal/adapters/storage/memory"
	pg "zoo-keeper/internal/adapters/storage/postgres"
	"zoo-keeper/internal/domain/animals"
	"zoo-keeper/internal/domain/dashboard"
	"zoo-keeper/internal/domain/enclosures"
	"zoo-keeper/internal/domain/occupancy"
	"zoo-keeper/internal/domain/species"
	"zoo-keeper/internal/middleware"
	"zoo-keeper/internal/platform/logger"
	"zoo-keeper/internal/platform/metrics"
	"zoo-keeper/internal/ports/auth"
	"zoo-keeper/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier                 // puede ser nil (modo dev)
	Capabilities capabilities.CapabilitiesResolver // opcional: promueve a staff

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger         logger.Logger
	PersistTimeout time.Duration
}

// NewRouter arma repos, ledger y servicios, hidrata el ledger desde storage
// y devuelve el handler listo para servir.
func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AuthContext(opts.AuthVerifier, opts.Capabilities))
	r.Use(middleware.AccessLog(log))
	// Un Release sin Reserve previo hace panic en el ledger: Recoverer lo vuelve 500.
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		speciesRepo   species.Repository
		enclosureRepo enclosures.Repository
		animalRepo    animals.Repository
	)

	if opts.DB != nil {
		speciesRepo = pg.NewSpeciesRepo(opts.DB)
		enclosureRepo = pg.NewEnclosuresRepo(opts.DB)
		animalRepo = pg.NewAnimalsRepo(opts.DB)
	} else {
		speciesRepo = mem.NewSpeciesRepo()
		enclosureRepo = mem.NewEnclosureRepo()
		animalRepo = mem.NewAnimalRepo()
	}

	// Services por módulo
	ledger := occupancy.NewLedger()
	enclosuresSvc := enclosures.NewService(enclosureRepo, ledger, enclosures.WithLogger(log))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := enclosuresSvc.Hydrate(ctx, animalRepo); err != nil {
		return nil, fmt.Errorf("hydrate ledger: %w", err)
	}

	speciesSvc := species.NewService(speciesRepo, animalRepo)
	animalsSvc := animals.NewService(animalRepo, speciesSvc, enclosuresSvc, ledger,
		animals.WithLogger(log),
		animals.WithPersistTimeout(opts.PersistTimeout),
	)
	dashboardSvc := dashboard.NewService(speciesSvc, enclosuresSvc, animalsSvc)

	// Rutas por módulo
	species.RegisterRoutes(r, speciesSvc)
	enclosures.RegisterRoutes(r, enclosuresSvc)
	animals.RegisterRoutes(r, animalsSvc)
	dashboard.RegisterRoutes(r, dashboardSvc)

	return r, nil
}
