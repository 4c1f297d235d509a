package internal

import (
	"sync"
)

// CleanupManager tracks resources and releases them in LIFO order.
type CleanupManager struct {
	mu     sync.Mutex
	funcs  []cleanupFunc
	writer Writer
}

type cleanupFunc struct {
	name string
	fn   func() error
}

// NewCleanupManager creates a cleanup manager that reports failed cleanups as
// warnings on w.
func NewCleanupManager(w Writer) *CleanupManager {
	return &CleanupManager{writer: w}
}

// Add registers a cleanup function. Functions are executed in LIFO order
// (last added, first executed).
func (m *CleanupManager) Add(name string, fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append([]cleanupFunc{{name, fn}}, m.funcs...)
}

// Execute runs all registered cleanups, warning about any that fail. Every
// cleanup runs even if an earlier one failed, and each runs at most once.
func (m *CleanupManager) Execute() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cleanup := range m.funcs {
		if err := cleanup.fn(); err != nil {
			m.writer.Warningf("cleanup failed for %s: %v", cleanup.name, err)
		}
	}
	m.funcs = nil
}
