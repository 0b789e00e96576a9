package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"zoo-keeper/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Get("/", listAnimalsHandler(svc))
		ar.Post("/", createAnimalHandler(svc))

		// Dueño o staff
		ar.Get("/{animalID}", getAnimalHandler(svc))
		ar.Patch("/{animalID}", updateAnimalHandler(svc))
		ar.Delete("/{animalID}", deleteAnimalHandler(svc))

		ar.Put("/{animalID}/enclosure", assignHandler(svc))
		ar.Post("/{animalID}/feed", feedHandler(svc))
	})
}

type createAnimalRequest struct {
	Name        string `json:"name"`
	SpeciesID   string `json:"species_id"`
	EnclosureID string `json:"enclosure_id"`
	OwnerUserID string `json:"owner_user_id"` // solo staff
}

type updateAnimalRequest struct {
	// Punteros para PATCH real: nil = no tocar. La especie no se puede cambiar.
	Name        *string `json:"name"`
	EnclosureID *string `json:"enclosure_id"`
}

type assignRequest struct {
	EnclosureID string `json:"enclosure_id"`
}

type animalResponse struct {
	ID           string     `json:"id"`
	OwnerUserID  string     `json:"owner_user_id"`
	Name         string     `json:"name"`
	SpeciesID    string     `json:"species_id"`
	EnclosureID  string     `json:"enclosure_id"`
	LastFedAt    *time.Time `json:"last_fed_at,omitempty"`
	NeedsFeeding bool       `json:"needs_feeding"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// errorResponse acompaña los 409 con el detalle de la regla violada.
type errorResponse struct {
	Error    string `json:"error"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

// listAnimalsHandler godoc
// @Summary Listar animales
// @Description Dueños ven sus animales; staff ve todos. Filtros opcionales: species (id), enclosure (nombre parcial), q (nombre parcial).
// @Tags animals
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param species query string false "ID de especie"
// @Param enclosure query string false "Nombre (parcial) del recinto"
// @Param q query string false "Nombre (parcial) del animal"
// @Success 200 {array} animalResponse
// @Failure 401 {string} string "unauthorized"
// @Router /animals [get]
func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		items, err := svc.List(r.Context(), actorFrom(claims.UserID, claims.IsStaff), ListInput{
			SpeciesID: q.Get("species"),
			Enclosure: q.Get("enclosure"),
			Query:     q.Get("q"),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(svc, a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createAnimalHandler godoc
// @Summary Registrar animal
// @Description Crea un animal ya asignado a un recinto. La dieta de la especie debe coincidir con la del recinto y debe haber lugar.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body createAnimalRequest true "Datos del animal"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "enclosure not found"
// @Failure 409 {object} errorResponse
// @Failure 503 {string} string "persistence failure"
// @Router /animals [post]
func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), actorFrom(claims.UserID, claims.IsStaff), CreateInput{
			Name:        req.Name,
			SpeciesID:   req.SpeciesID,
			EnclosureID: req.EnclosureID,
			OwnerUserID: req.OwnerUserID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAnimalResponse(svc, a))
	}
}

func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.Get(r.Context(), actorFrom(claims.UserID, claims.IsStaff), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(svc, a))
	}
}

func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateAnimalRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Update(r.Context(), actorFrom(claims.UserID, claims.IsStaff), chi.URLParam(r, "animalID"), UpdateInput{
			Name:        req.Name,
			EnclosureID: req.EnclosureID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(svc, a))
	}
}

// assignHandler godoc
// @Summary Asignar recinto
// @Description Mueve el animal a otro recinto. Reasignar al mismo recinto es un no-op exitoso.
// @Tags animals
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body assignRequest true "Recinto destino"
// @Success 200 {object} animalResponse
// @Failure 404 {string} string "not found"
// @Failure 409 {object} errorResponse
// @Failure 503 {string} string "persistence failure"
// @Router /animals/{animalID}/enclosure [put]
func assignHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req assignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Assign(r.Context(), actorFrom(claims.UserID, claims.IsStaff), chi.URLParam(r, "animalID"), req.EnclosureID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(svc, a))
	}
}

func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), actorFrom(claims.UserID, claims.IsStaff), chi.URLParam(r, "animalID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// feedHandler godoc
// @Summary Alimentar ahora
// @Description Registra la hora actual como última comida del animal.
// @Tags animals
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 404 {string} string "not found"
// @Router /animals/{animalID}/feed [post]
func feedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.FeedNow(r.Context(), actorFrom(claims.UserID, claims.IsStaff), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(svc, a))
	}
}

func actorFrom(userID string, isStaff bool) Actor {
	return Actor{UserID: userID, IsStaff: isStaff}
}

func writeError(w http.ResponseWriter, err error) {
	var dietErr *DietMismatchError
	var capErr *CapacityExceededError

	switch {
	case errors.As(err, &dietErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:    "diet_mismatch",
			Expected: string(dietErr.Expected),
			Actual:   string(dietErr.Actual),
		})
	case errors.As(err, &capErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:    "capacity_exceeded",
			Capacity: capErr.Capacity,
		})
	case errors.Is(err, ErrEnclosureBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFoundOrForbidden):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrPersistenceFailure):
		http.Error(w, "persistence failure, retry", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAnimalResponse(svc *Service, a Animal) animalResponse {
	return animalResponse{
		ID:           a.ID,
		OwnerUserID:  a.OwnerUserID,
		Name:         a.Name,
		SpeciesID:    a.SpeciesID,
		EnclosureID:  a.EnclosureID,
		LastFedAt:    a.LastFedAt,
		NeedsFeeding: svc.NeedsFeeding(a),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
