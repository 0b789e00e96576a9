// Package backfill convierte los nombres de recinto en texto libre de los
// animales heredados en recintos tipados. Corre una sola vez durante la
// migración del modelo de datos, sin asignaciones concurrentes.
package backfill

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/enclosures"
	"zoo-keeper/internal/platform/logger"
	"zoo-keeper/internal/platform/metrics"
)

// MinCapacity es el piso de capacidad de los recintos creados.
const MinCapacity = 3

// LegacyAnimal es un animal con su nombre de recinto heredado y la dieta de su especie.
type LegacyAnimal struct {
	AnimalID      string
	EnclosureName string
	Diet          diet.Diet
}

type Source interface {
	ListLegacyAnimals(ctx context.Context) ([]LegacyAnimal, error)
}

// Sink lo implementa enclosures.Service.
type Sink interface {
	Create(ctx context.Context, in enclosures.CreateInput) (enclosures.Enclosure, error)
	ListByOrigin(ctx context.Context, origin enclosures.Origin) ([]enclosures.Enclosure, error)
	Delete(ctx context.Context, id string) error
}

type Result struct {
	EnclosuresCreated int      `json:"enclosures_created"`
	Skipped           []string `json:"skipped,omitempty"` // nombres que ya tenían recinto legacy
}

// Group es un nombre heredado con el recinto que le corresponde.
type Group struct {
	Name     string
	Diet     diet.Diet
	Capacity int
	Animals  int
}

type Runner struct {
	source Source
	sink   Sink
	log    logger.Logger
}

func NewRunner(source Source, sink Sink, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		source: source,
		sink:   sink,
		log:    log.With(map[string]any{"component": "backfill"}),
	}
}

// Plan agrupa por nombre (trim) y resuelve dieta y capacidad de cada grupo.
// Los nombres vacíos se ignoran. El orden es por nombre.
func Plan(rows []LegacyAnimal) []Group {
	diets := make(map[string][]diet.Diet)
	for _, r := range rows {
		name := strings.TrimSpace(r.EnclosureName)
		if name == "" {
			continue
		}
		diets[name] = append(diets[name], r.Diet)
	}

	out := make([]Group, 0, len(diets))
	for name, ds := range diets {
		out = append(out, Group{
			Name:     name,
			Diet:     diet.Resolve(ds),
			Capacity: max(MinCapacity, len(ds)),
			Animals:  len(ds),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func Description(name string) string {
	return "Auto-created enclosure for " + name
}

// Run crea un recinto por grupo. Si un nombre ya tiene un recinto legacy se
// saltea, así que correrlo dos veces no duplica. Ante un error corta y
// devuelve lo creado hasta ese momento.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result

	rows, err := r.source.ListLegacyAnimals(ctx)
	if err != nil {
		return res, fmt.Errorf("list legacy animals: %w", err)
	}
	groups := Plan(rows)
	if len(groups) == 0 {
		r.log.Info("no legacy groups, nothing to do", nil)
		return res, nil
	}

	existing, err := r.sink.ListByOrigin(ctx, enclosures.OriginLegacyBackfill)
	if err != nil {
		return res, fmt.Errorf("list legacy enclosures: %w", err)
	}
	done := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		done[e.Name] = struct{}{}
	}

	for _, g := range groups {
		if _, ok := done[g.Name]; ok {
			res.Skipped = append(res.Skipped, g.Name)
			continue
		}

		e, err := r.sink.Create(ctx, enclosures.CreateInput{
			Name:        g.Name,
			Description: Description(g.Name),
			Capacity:    g.Capacity,
			DietType:    string(g.Diet),
			Origin:      enclosures.OriginLegacyBackfill,
		})
		if err != nil {
			metrics.AddBackfillCreated(res.EnclosuresCreated)
			return res, fmt.Errorf("create enclosure %q: %w", g.Name, err)
		}
		res.EnclosuresCreated++

		r.log.Info("legacy enclosure created", map[string]any{
			"enclosure_id": e.ID,
			"name":         g.Name,
			"diet_type":    string(g.Diet),
			"capacity":     g.Capacity,
			"animals":      g.Animals,
		})
	}

	metrics.AddBackfillCreated(res.EnclosuresCreated)
	return res, nil
}

// Rollback borra todos los recintos creados por Run. Los recintos con
// animales asignados después del backfill no se pueden borrar y cortan el rollback.
func (r *Runner) Rollback(ctx context.Context) (int, error) {
	items, err := r.sink.ListByOrigin(ctx, enclosures.OriginLegacyBackfill)
	if err != nil {
		return 0, fmt.Errorf("list legacy enclosures: %w", err)
	}

	deleted := 0
	for _, e := range items {
		if err := r.sink.Delete(ctx, e.ID); err != nil {
			return deleted, fmt.Errorf("delete enclosure %q: %w", e.Name, err)
		}
		deleted++
	}

	r.log.Info("legacy backfill rolled back", map[string]any{"deleted": deleted})
	return deleted, nil
}
