// Package module keeps the port sets modules expose, by module name, so
// one module can reach another without importing its package at build time
package module

import (
	"fmt"
	"sync"
)

// Module is the part of modkit.Module the registry needs
type Module interface {
	Name() string
	Ports() any
}

var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores m's ports under its name, replacing any earlier set
func Register(m Module) {
	mu.Lock()
	reg[m.Name()] = m.Ports()
	mu.Unlock()
}

// Lookup returns the ports registered under name as T
func Lookup[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	t, ok2 := v.(T)
	return t, ok && ok2
}

// Reset empties the registry
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}

// MustPortsOf returns m's ports as T, panicking when they are something else
func MustPortsOf[T any](m Module) T {
	t, ok := m.Ports().(T)
	if !ok {
		panic(fmt.Sprintf("module: %s ports are %T, not %T", m.Name(), m.Ports(), t))
	}
	return t
}
