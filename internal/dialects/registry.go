package dialects

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnregisteredDialect is matched by every *UnregisteredDialectError.
var ErrUnregisteredDialect = errors.New("dialect not registered")

// UnregisteredDialectError is returned when a dialect is looked up before it was
// registered. It usually means registration was skipped at startup.
type UnregisteredDialectError struct {
	Name string
}

func (e *UnregisteredDialectError) Error() string {
	return fmt.Sprintf("dialect %q is not registered", e.Name)
}

// Is reports whether target is ErrUnregisteredDialect.
func (e *UnregisteredDialectError) Is(target error) bool {
	return target == ErrUnregisteredDialect
}

// Registry maps dialect names to dialects. Names are case-insensitive.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	dialects map[string]Dialect
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{dialects: make(map[string]Dialect)}
}

// Register stores d under its own name.
func (r *Registry) Register(d Dialect) {
	r.RegisterAs(d.Name(), d)
}

// RegisterAs stores d under name. Registering a name again replaces the
// previous dialect, so a name never maps to two dialects.
func (r *Registry) RegisterAs(name string, d Dialect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialects[strings.ToLower(name)] = d
}

// Lookup returns the dialect registered under name.
func (r *Registry) Lookup(name string) (Dialect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.dialects[strings.ToLower(name)]; ok {
		return d, nil
	}
	return nil, &UnregisteredDialectError{Name: name}
}

// MustLookup is like Lookup but panics if the dialect is not registered.
func (r *Registry) MustLookup(name string) Dialect {
	d, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.dialects))
	for n := range r.dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// RegisterDialect registers a database dialect by name in the default registry.
func RegisterDialect(name string, d Dialect) {
	defaultRegistry.RegisterAs(name, d)
}

// GetDialect retrieves a registered dialect from the default registry.
func GetDialect(name string) (Dialect, error) {
	return defaultRegistry.Lookup(name)
}
