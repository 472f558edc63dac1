package network

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/blogem/microsoft-login/authenticator"
)

// ErrNotConfigured is returned when a network lacks its app credentials
var ErrNotConfigured = errors.New("network is not configured")

// Network is a pluggable identity provider integration
type Network interface {
	// ID is the route identifier, e.g. "microsoft".
	ID() string
	// Name is the human readable network name.
	Name() string
	// SDK builds the provider client, failing with ErrNotConfigured when credentials are missing.
	SDK(ctx context.Context) (authenticator.Provider, error)
	// Endpoints lists the API endpoints collected when a new account is created.
	Endpoints() []Endpoint
}

// Endpoint is an API path whose response is stored under Name
type Endpoint struct {
	Path string
	Name string
}

// ParseEndpoints parses "path|name" entries separated by newlines or semicolons.
// Malformed entries are skipped.
func ParseEndpoints(raw string) []Endpoint {
	var endpoints []Endpoint
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ';'
	})
	for _, field := range fields {
		path, name, ok := strings.Cut(strings.TrimSpace(field), "|")
		path, name = strings.TrimSpace(path), strings.TrimSpace(name)
		if !ok || name == "" || !strings.HasPrefix(path, "/") {
			continue
		}
		endpoints = append(endpoints, Endpoint{Path: path, Name: name})
	}
	return endpoints
}

// Registry holds the available networks keyed by ID
type Registry struct {
	networks map[string]Network
}

// NewRegistry creates a registry with the given networks
func NewRegistry(networks ...Network) *Registry {
	r := &Registry{networks: make(map[string]Network)}
	for _, n := range networks {
		r.Register(n)
	}
	return r
}

// Register adds or replaces a network
func (r *Registry) Register(n Network) {
	r.networks[n.ID()] = n
}

// Get returns the network with the given ID
func (r *Registry) Get(id string) (Network, bool) {
	n, ok := r.networks[id]
	return n, ok
}

// All returns every registered network ordered by ID
func (r *Registry) All() []Network {
	all := make([]Network, 0, len(r.networks))
	for _, n := range r.networks {
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID() < all[j].ID()
	})
	return all
}
