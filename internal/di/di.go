// Package di provides a small lazy dependency injection container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves registered services by name.
type ServiceRegistry interface {
	Get(name string) any
	Has(name string) bool
}

// Container is a ServiceRegistry that also accepts registrations.
type Container interface {
	ServiceRegistry
	// Register stores a ready-made value under name.
	Register(name string, value any)
	// RegisterFactory stores a lazily evaluated singleton factory under name.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type entry struct {
	factory  func(ServiceRegistry) any
	value    any
	resolved bool
}

type container struct {
	mu       sync.Mutex
	entries  map[string]*entry
	resolved map[string]bool // names currently being resolved, for cycle detection
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		entries:  make(map[string]*entry),
		resolved: make(map[string]bool),
	}
}

func (c *container) Register(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{value: value, resolved: true}
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{factory: factory}
}

func (c *container) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[name]
	return ok
}

// Get resolves name, running its factory on first use. It panics when the
// name is unknown or when factories depend on each other in a cycle.
func (c *container) Get(name string) any {
	c.mu.Lock()
	e, ok := c.entries[name]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: service %q not registered", name))
	}
	if e.resolved {
		v := e.value
		c.mu.Unlock()
		return v
	}
	if c.resolved[name] {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: dependency cycle while resolving %q", name))
	}
	c.resolved[name] = true
	factory := e.factory
	c.mu.Unlock()

	// Factories may call Get for their own dependencies, so run unlocked.
	v := factory(c)

	c.mu.Lock()
	delete(c.resolved, name)
	e.value = v
	e.resolved = true
	c.mu.Unlock()

	return v
}

// Token is a typed handle for a registered service.
type Token[T any] struct {
	name string
}

// NewToken creates a token for services of type T.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registry key of the token.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a lazily evaluated factory for the token.
func RegisterToken[T any](c Container, t Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(t.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// RegisterValue registers a ready-made value for the token.
func RegisterValue[T any](c Container, t Token[T], value T) {
	c.Register(t.name, value)
}

// GetToken resolves the token and asserts its type.
func GetToken[T any](sr ServiceRegistry, t Token[T]) T {
	v := sr.Get(t.name)
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has type %T", t.name, v))
	}
	return typed
}
