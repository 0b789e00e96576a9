package species

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/species", func(sr chi.Router) {
		sr.Get("/", listSpeciesHandler(svc))
		sr.Post("/", createSpeciesHandler(svc))

		sr.Get("/{speciesID}", getSpeciesHandler(svc))
		sr.Patch("/{speciesID}", updateSpeciesHandler(svc))
		sr.Delete("/{speciesID}", deleteSpeciesHandler(svc))
	})
}

type createSpeciesRequest struct {
	Name string    `json:"name"`
	Diet diet.Diet `json:"diet" enums:"herbivore,carnivore,omnivore"`
}

type updateSpeciesRequest struct {
	Name *string `json:"name"`
	Diet *string `json:"diet"`
}

type speciesResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Diet      diet.Diet `json:"diet"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func listSpeciesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]speciesResponse, 0, len(items))
		for _, sp := range items {
			out = append(out, toSpeciesResponse(sp))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createSpeciesHandler godoc
// @Summary Crear especie
// @Description Alta de especie en el catálogo. Solo staff.
// @Tags species
// @Accept json
// @Produce json
// @Param X-Debug-Staff header string false "Solo en modo dev, true para actuar como staff"
// @Param payload body createSpeciesRequest true "Datos de la especie"
// @Success 201 {object} speciesResponse
// @Failure 400 {string} string "invalid input"
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "species name already exists"
// @Router /species [post]
func createSpeciesHandler(svc *Service) http.HandlerFunc {
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

		var req createSpeciesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sp, err := svc.Create(r.Context(), CreateInput{Name: req.Name, Diet: string(req.Diet)})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSpeciesResponse(sp))
	}
}

func getSpeciesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sp, err := svc.GetByID(r.Context(), chi.URLParam(r, "speciesID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSpeciesResponse(sp))
	}
}

func updateSpeciesHandler(svc *Service) http.HandlerFunc {
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

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateSpeciesRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sp, err := svc.Update(r.Context(), chi.URLParam(r, "speciesID"), UpdateInput{
			Name: req.Name,
			Diet: req.Diet,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSpeciesResponse(sp))
	}
}

func deleteSpeciesHandler(svc *Service) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), chi.URLParam(r, "speciesID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "species not found", http.StatusNotFound)
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toSpeciesResponse(sp Species) speciesResponse {
	return speciesResponse{
		ID:        sp.ID,
		Name:      sp.Name,
		Diet:      sp.Diet,
		CreatedAt: sp.CreatedAt,
		UpdatedAt: sp.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
