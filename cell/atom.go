package cell

import (
	"fmt"
	"sync"
)

// The atom table interns symbol names process-wide: every occurrence of a
// name maps to the same small integer id for the lifetime of the process.
var atomTable = struct {
	sync.RWMutex
	ids    map[string]uint64
	names  map[uint64]string
	nextID uint64
}{
	ids:    make(map[string]uint64),
	names:  make(map[uint64]string),
	nextID: 1,
}

// AtomID returns the id for the atom with the specified name, assigning a
// new id the first time a name is seen.
func AtomID(name string) uint64 {
	atomTable.RLock()
	id, ok := atomTable.ids[name]
	atomTable.RUnlock()
	if ok {
		return id
	}

	atomTable.Lock()
	defer atomTable.Unlock()

	// Re-check: another goroutine may have interned the name meanwhile.
	if id, ok := atomTable.ids[name]; ok {
		return id
	}

	id = atomTable.nextID
	atomTable.nextID++
	atomTable.ids[name] = id
	atomTable.names[id] = name
	return id
}

// AtomName returns the name for the atom with the specified id.
func AtomName(id uint64) string {
	atomTable.RLock()
	defer atomTable.RUnlock()

	if name, ok := atomTable.names[id]; ok {
		return name
	}
	return fmt.Sprintf("##a#%d", id)
}
