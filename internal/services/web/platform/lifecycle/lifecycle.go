// Package lifecycle tracks the effects and cleanups of one page mount.
//
// A mount is a single request render or a single live-view connection. Pages
// register effects keyed by name and dependency identity; an effect runs the
// first time it is seen and again only when its dependency changes. Cleanups
// run in reverse registration order when the mount is unmounted.
package lifecycle

import (
	"reflect"
	"sync"
)

// Mount records the effects registered by one page mount.
type Mount struct {
	mu        sync.Mutex
	effects   map[string]*effect
	order     []string
	cleanups  []func()
	unmounted bool
}

type effect struct {
	deps    any
	cleanup func()
}

// NewMount returns an active mount.
func NewMount() *Mount {
	return &Mount{effects: make(map[string]*effect)}
}

// Effect runs fn when key is first registered or deps differ from the last
// registration. The function fn returns is the effect's cleanup and may be
// nil. It reports whether fn ran.
func (m *Mount) Effect(key string, deps any, fn func() func()) bool {
	if m == nil || fn == nil {
		return false
	}
	m.mu.Lock()
	if m.unmounted {
		m.mu.Unlock()
		return false
	}
	var stale func()
	if current, ok := m.effects[key]; ok {
		if sameDeps(current.deps, deps) {
			m.mu.Unlock()
			return false
		}
		stale = current.cleanup
		current.cleanup = nil
	} else {
		m.order = append(m.order, key)
	}
	m.effects[key] = &effect{deps: deps}
	m.mu.Unlock()

	if stale != nil {
		stale()
	}
	cleanup := fn()

	m.mu.Lock()
	if m.unmounted {
		m.mu.Unlock()
		if cleanup != nil {
			cleanup()
		}
		return true
	}
	m.effects[key].cleanup = cleanup
	m.mu.Unlock()
	return true
}

// OnUnmount registers fn to run when the mount ends. After Unmount, fn runs
// immediately.
func (m *Mount) OnUnmount(fn func()) {
	if m == nil || fn == nil {
		return
	}
	m.mu.Lock()
	if m.unmounted {
		m.mu.Unlock()
		fn()
		return
	}
	m.cleanups = append(m.cleanups, fn)
	m.mu.Unlock()
}

// Unmount runs every effect cleanup and registered callback, newest first.
// Later calls do nothing.
func (m *Mount) Unmount() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.unmounted {
		m.mu.Unlock()
		return
	}
	m.unmounted = true
	var pending []func()
	for _, key := range m.order {
		if cleanup := m.effects[key].cleanup; cleanup != nil {
			pending = append(pending, cleanup)
		}
	}
	pending = append(pending, m.cleanups...)
	m.effects = map[string]*effect{}
	m.order = nil
	m.cleanups = nil
	m.mu.Unlock()

	for idx := len(pending) - 1; idx >= 0; idx-- {
		pending[idx]()
	}
}

// Unmounted reports whether Unmount has run.
func (m *Mount) Unmounted() bool {
	if m == nil {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unmounted
}

// sameDeps compares dependency identity. Incomparable values never match.
func sameDeps(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
