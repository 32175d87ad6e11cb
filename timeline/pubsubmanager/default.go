package pubsubmanager

import (
	"sync"
)

// GlobalManagerID is the well-known id of the process-wide default Manager.
const GlobalManagerID = "__pubsub_timeline_manager"

var (
	registryMu sync.Mutex
	registry   = make(map[string]*Manager)
)

// Default returns the process-wide Manager registered under GlobalManagerID,
// creating it on first use. It lives until the process exits.
func Default() *Manager {
	registryMu.Lock()
	defer registryMu.Unlock()

	if m, ok := registry[GlobalManagerID]; ok {
		return m
	}

	m, err := NewManager(WithManagerID(GlobalManagerID))
	if err != nil {
		panic(err)
	}

	registry[GlobalManagerID] = m

	return m
}

// Register makes m reachable through Lookup under its id, replacing any Manager with the same id.
// Registering a Manager with GlobalManagerID replaces the default Manager for later lookups.
func Register(m *Manager) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[m.ID()] = m
}

func Lookup(id string) (*Manager, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()

	m, ok := registry[id]

	return m, ok
}
