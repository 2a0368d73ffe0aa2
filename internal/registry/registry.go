package registry

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrMissingDependency = errors.New("registry: missing dependency")
	ErrNilInstance       = errors.New("registry: instance is nil")
	ErrEmptyToken        = errors.New("registry: empty token")
)

// Token is a type-level key for one shared service instance.
type Token string

// Provider is implemented by instances that declare their own binding token.
type Provider interface {
	DependencyToken() Token
}

// MissingDependencyError reports the first unresolved token of a resolution
// request, in declaration order.
type MissingDependencyError struct {
	Token Token
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("registry: missing dependency %q", e.Token)
}

func (e *MissingDependencyError) Unwrap() error {
	return ErrMissingDependency
}

// Registry maps each token to exactly one live instance. Writes are expected
// during startup only; resolution happens at script init time.
type Registry struct {
	mu       sync.RWMutex
	bindings map[Token]any
}

// NewRegistry creates an empty binding table.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[Token]any)}
}

// Register binds instance under token. Re-registration replaces the binding
// (last write wins) without re-resolving scripts already initialized against
// the previous instance.
func (r *Registry) Register(token Token, instance any) error {
	if token == "" {
		return ErrEmptyToken
	}
	if instance == nil {
		return ErrNilInstance
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[token] = instance
	return nil
}

// RegisterProvider binds instance under its self-declared token.
func (r *Registry) RegisterProvider(p Provider) error {
	if p == nil {
		return ErrNilInstance
	}
	return r.Register(p.DependencyToken(), p)
}

// Lookup returns the binding for one token.
func (r *Registry) Lookup(token Token) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.bindings[token]
	return instance, ok
}

// Resolve returns a binding for every requested token, or fails with a
// MissingDependencyError naming the first token (in declaration order) that
// has no binding.
func (r *Registry) Resolve(tokens []Token) (map[Token]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resolved := make(map[Token]any, len(tokens))
	for _, token := range tokens {
		instance, ok := r.bindings[token]
		if !ok {
			return nil, &MissingDependencyError{Token: token}
		}
		resolved[token] = instance
	}
	return resolved, nil
}

// Len reports the number of live bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
