package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-promptforge/internal/apierr"
)

// ErrUnsupportedProvider indicates no adapter is registered for a provider.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// Compile-time interface compliance check.
var _ Dispatcher = (*Router)(nil)

// Router dispatches to the adapter registered for the credential's provider.
type Router struct {
	routes map[Name]Dispatcher
}

// NewRouter creates a Router from a provider to adapter mapping.
// Nil adapters are ignored.
func NewRouter(routes map[Name]Dispatcher) *Router {
	r := &Router{routes: make(map[Name]Dispatcher, len(routes))}
	for name, d := range routes {
		if d != nil {
			r.routes[name] = d
		}
	}
	return r
}

// Dispatch implements Dispatcher.
func (r *Router) Dispatch(ctx context.Context, cred Credential, model, prompt string) (string, error) {
	if cred.Secret == "" {
		return "", fmt.Errorf("%s: %w", cred.Provider, apierr.ErrCredentialMissing)
	}
	d, ok := r.routes[cred.Provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, cred.Provider.String())
	}
	return d.Dispatch(ctx, cred, model, prompt)
}
