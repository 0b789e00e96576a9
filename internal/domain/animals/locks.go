package animals

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 256

// animalLocks serializa escrituras sobre un mismo animal (asignar, alimentar,
// borrar). Animales distintos pueden compartir stripe; solo cuesta espera.
type animalLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *animalLocks) lock(animalID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(animalID))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
