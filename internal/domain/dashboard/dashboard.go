package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"zoo-keeper/internal/domain/animals"
	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/enclosures"
	"zoo-keeper/internal/domain/species"
	"zoo-keeper/internal/middleware"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

type SpeciesLister interface {
	List(ctx context.Context) ([]species.Species, error)
}

type EnclosureLister interface {
	List(ctx context.Context) ([]enclosures.View, error)
}

type AnimalLister interface {
	List(ctx context.Context, actor animals.Actor, in animals.ListInput) ([]animals.Animal, error)
	NeedsFeeding(a animals.Animal) bool
}

// Summary es el resumen que ve el staff.
type Summary struct {
	Species          int               `json:"species"`
	Enclosures       int               `json:"enclosures"`
	FullEnclosures   int               `json:"full_enclosures"`
	Animals          int               `json:"animals"`
	NeedingFeeding   int               `json:"animals_needing_feeding"`
	EnclosuresByDiet map[diet.Diet]int `json:"enclosures_by_diet"`
}

type Service struct {
	species    SpeciesLister
	enclosures EnclosureLister
	animals    AnimalLister
}

func NewService(sp SpeciesLister, enc EnclosureLister, an AnimalLister) *Service {
	return &Service{species: sp, enclosures: enc, animals: an}
}

// Summary lee los tres catálogos en paralelo.
func (s *Service) Summary(ctx context.Context, actor animals.Actor) (Summary, error) {
	var (
		sps   []species.Species
		views []enclosures.View
		items []animals.Animal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sps, err = s.species.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		views, err = s.enclosures.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.animals.List(gctx, actor, animals.ListInput{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	out := Summary{
		Species:          len(sps),
		Enclosures:       len(views),
		Animals:          len(items),
		EnclosuresByDiet: make(map[diet.Diet]int, 3),
	}
	for _, d := range diet.All() {
		out.EnclosuresByDiet[d] = 0
	}
	for _, v := range views {
		out.EnclosuresByDiet[v.DietType]++
		if v.Occupancy.IsFull {
			out.FullEnclosures++
		}
	}
	for _, a := range items {
		if s.animals.NeedsFeeding(a) {
			out.NeedingFeeding++
		}
	}
	return out, nil
}

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/admin/dashboard", summaryHandler(svc))
}

// summaryHandler godoc
// @Summary Resumen del zoo
// @Description Conteos de especies, recintos (llenos y por dieta) y animales (y cuántos necesitan comer). Solo staff.
// @Tags admin
// @Produce json
// @Param X-Debug-Staff header string false "Solo en modo dev, true para actuar como staff"
// @Success 200 {object} Summary
// @Failure 403 {string} string "forbidden"
// @Router /admin/dashboard [get]
func summaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsStaff {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		sum, err := svc.Summary(r.Context(), animals.Actor{UserID: claims.UserID, IsStaff: true})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(sum)
	}
}
