package enclosures

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"zoo-keeper/internal/domain/diet"
	"zoo-keeper/internal/domain/occupancy"
	"zoo-keeper/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/enclosures", func(er chi.Router) {
		er.Get("/", listEnclosuresHandler(svc))
		er.Post("/", createEnclosureHandler(svc))

		er.Get("/{enclosureID}", getEnclosureHandler(svc))
		er.Patch("/{enclosureID}", updateEnclosureHandler(svc))
		er.Delete("/{enclosureID}", deleteEnclosureHandler(svc))

		// Ocupación actual (current, capacity, is_full)
		er.Get("/{enclosureID}/occupancy", occupancyHandler(svc))
	})

	// Mapa del zoo: recintos agrupados por dieta
	r.Get("/map", mapHandler(svc))
}

// createEnclosureRequest es el cuerpo para crear un recinto (solo staff).
type createEnclosureRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	DietType    diet.Diet `json:"diet_type" enums:"herbivore,carnivore,omnivore"`
}

type updateEnclosureRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	DietType    *string `json:"diet_type"`
	Capacity    *int    `json:"capacity"`
}

// enclosureResponse representa un recinto con su ocupación actual.
type enclosureResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Capacity         int       `json:"capacity"`
	DietType         diet.Diet `json:"diet_type"`
	Origin           Origin    `json:"origin"`
	CurrentOccupancy int       `json:"current_occupancy"`
	IsFull           bool      `json:"is_full"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type mapResponse struct {
	Herbivore []enclosureResponse `json:"herbivore"`
	Carnivore []enclosureResponse `json:"carnivore"`
	Omnivore  []enclosureResponse `json:"omnivore"`
}

// listEnclosuresHandler godoc
// @Summary Listar recintos
// @Description Lista todos los recintos con su ocupación actual. Cualquier usuario autenticado.
// @Tags enclosures
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {array} enclosureResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /enclosures [get]
func listEnclosuresHandler(svc *Service) http.HandlerFunc {
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

		out := make([]enclosureResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toEnclosureResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createEnclosureHandler godoc
// @Summary Crear recinto
// @Description Crea un recinto. Solo staff. capacity >= 1; diet_type herbivore|carnivore|omnivore.
// @Tags enclosures
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Staff header string false "Solo en modo dev, true para actuar como staff"
// @Param payload body createEnclosureRequest true "Datos del recinto"
// @Success 201 {object} enclosureResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /enclosures [post]
func createEnclosureHandler(svc *Service) http.HandlerFunc {
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

		var req createEnclosureRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.Create(r.Context(), CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Capacity:    req.Capacity,
			DietType:    string(req.DietType),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEnclosureResponse(View{
			Enclosure: e,
			Occupancy: occupancy.Snapshot{Capacity: e.Capacity},
		}))
	}
}

func getEnclosureHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		v, err := svc.Get(r.Context(), chi.URLParam(r, "enclosureID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEnclosureResponse(v))
	}
}

// updateEnclosureHandler godoc
// @Summary Editar recinto
// @Description Edita nombre, descripción, dieta o capacidad. Solo staff. Bajar la capacidad por debajo de la ocupación actual devuelve 409; cambiar la dieta exige recinto vacío (409).
// @Tags enclosures
// @Accept json
// @Produce json
// @Param enclosureID path string true "ID del recinto"
// @Param payload body updateEnclosureRequest true "Campos a cambiar"
// @Success 200 {object} enclosureResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "enclosure not found"
// @Failure 409 {string} string "capacity below current occupancy / enclosure is not empty"
// @Router /enclosures/{enclosureID} [patch]
func updateEnclosureHandler(svc *Service) http.HandlerFunc {
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

		var req updateEnclosureRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "enclosureID")
		if _, err := svc.Update(r.Context(), id, UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			DietType:    req.DietType,
			Capacity:    req.Capacity,
		}); err != nil {
			writeError(w, err)
			return
		}

		v, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEnclosureResponse(v))
	}
}

func deleteEnclosureHandler(svc *Service) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), chi.URLParam(r, "enclosureID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// occupancyHandler godoc
// @Summary Ocupación de un recinto
// @Tags enclosures
// @Produce json
// @Param enclosureID path string true "ID del recinto"
// @Success 200 {object} occupancy.Snapshot
// @Failure 404 {string} string "enclosure not found"
// @Router /enclosures/{enclosureID}/occupancy [get]
func occupancyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		snap, err := svc.Snapshot(r.Context(), chi.URLParam(r, "enclosureID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func mapHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.Map(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, mapResponse{
			Herbivore: toEnclosureResponses(m.Herbivore),
			Carnivore: toEnclosureResponses(m.Carnivore),
			Omnivore:  toEnclosureResponses(m.Omnivore),
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, occupancy.ErrInvalidCapacity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, occupancy.ErrUnknownEnclosure):
		http.Error(w, "enclosure not found", http.StatusNotFound)
	case errors.Is(err, ErrCapacityBelowOccupancy), errors.Is(err, ErrOccupied), errors.Is(err, ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toEnclosureResponses(views []View) []enclosureResponse {
	out := make([]enclosureResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toEnclosureResponse(v))
	}
	return out
}

func toEnclosureResponse(v View) enclosureResponse {
	return enclosureResponse{
		ID:               v.ID,
		Name:             v.Name,
		Description:      v.Description,
		Capacity:         v.Occupancy.Capacity,
		DietType:         v.DietType,
		Origin:           v.Origin,
		CurrentOccupancy: v.Occupancy.Current,
		IsFull:           v.Occupancy.IsFull,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
