package core

import (
	"context"
	"sort"
	"sync"
)

// Factory creates a checker from a package configuration.
type Factory func(cfg Config, creds Credentials) (Checker, error)

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a checker factory under the given type discriminator.
func Register(typ string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[typ] = factory
}

// New creates the checker selected by the "type" key of cfg.
// Construction errors from the checker are returned unchanged.
func New(cfg Config, creds Credentials) (Checker, error) {
	typ, ok := cfg["type"]
	if !ok {
		return nil, &ConfigError{Kind: MissingField, Field: "type", Description: "upstream type"}
	}

	mu.RLock()
	factory, ok := factories[typ]
	mu.RUnlock()

	if !ok {
		return nil, &ConfigError{Kind: UnknownBackend, Field: "type", Description: typ}
	}

	return factory(cfg, creds)
}

// Check creates the checker for cfg and runs it with client.
// If client is nil, DefaultClient() is used.
func Check(ctx context.Context, cfg Config, creds Credentials, client *Client) (string, error) {
	checker, err := New(cfg, creds)
	if err != nil {
		return "", err
	}
	if client == nil {
		client = DefaultClient()
	}
	v, err := checker.Check(ctx, client)
	if err != nil {
		return "", err
	}
	return TrimResult(v), nil
}

// SupportedTypes returns all registered type discriminators, sorted.
func SupportedTypes() []string {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]string, 0, len(factories))
	for typ := range factories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}
