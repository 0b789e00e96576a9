package diet

import (
	"errors"
	"strings"
)

// Diet define el tipo de alimentación de una especie o de un recinto.
// @Enum herbivore, carnivore, omnivore
type Diet string

const (
	Herbivore Diet = "herbivore"
	Carnivore Diet = "carnivore"
	Omnivore  Diet = "omnivore"
)

var ErrInvalidDiet = errors.New("diet must be herbivore, carnivore or omnivore")

// All devuelve las dietas en el orden en que se muestran (mapa, dashboard).
func All() []Diet {
	return []Diet{Herbivore, Carnivore, Omnivore}
}

func Parse(s string) (Diet, error) {
	d := Diet(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", ErrInvalidDiet
	}
	return d, nil
}

func (d Diet) Valid() bool {
	switch d {
	case Herbivore, Carnivore, Omnivore:
		return true
	default:
		return false
	}
}

// Compatible es la única regla de compatibilidad especie/recinto.
// La usan tanto la asignación de animales como el backfill legacy.
func Compatible(speciesDiet, enclosureDiet Diet) bool {
	return speciesDiet == enclosureDiet
}

// Resolve elige la dieta de un grupo de animales:
// una sola dieta distinta => esa; mezcla (o vacío) => omnivore.
func Resolve(diets []Diet) Diet {
	var only Diet
	for _, d := range diets {
		if only == "" {
			only = d
			continue
		}
		if !Compatible(d, only) {
			return Omnivore
		}
	}
	if only == "" {
		return Omnivore
	}
	return only
}
