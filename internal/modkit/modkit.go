package modkit

import (
	"fmt"
	"reflect"
	"sync"
)

// Module is the common surface for service modules: a name and a bundle of ports
type Module interface {
	Ports() any
	Name() string
}

var (
	regMu sync.RWMutex
	reg   = map[string]any{}
)

// Register stores a port set under a module name for bootstrap wiring in main
func Register(m Module) {
	regMu.Lock()
	reg[m.Name()] = m.Ports()
	regMu.Unlock()
}

// PortsAs fetches the port set registered under name and asserts it to T
func PortsAs[T any](name string) (T, bool) {
	regMu.RLock()
	v, ok := reg[name]
	regMu.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// ResetRegistry clears the registry (tests)
func ResetRegistry() {
	regMu.Lock()
	reg = map[string]any{}
	regMu.Unlock()
}

// PortOf finds a value implementing T in m.Ports(): either the bundle itself or one of its exported fields
func PortOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortOf is PortOf that panics when the port is missing
func MustPortOf[T any](m Module) T {
	if v, ok := PortOf[T](m); ok {
		return v
	}
	panic(fmt.Sprintf("modkit: module %q has no port of type %T", m.Name(), *new(T)))
}
