package generate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-promptforge/internal/provider"
)

// Compare runs one independent generation per provider concurrently and
// returns the results in the order of providers. A failing provider never
// cancels the others. req.Model is ignored since a model name belongs to
// a single provider; each provider uses its preferred or default model.
func (g *Generator) Compare(ctx context.Context, user string, req Request, providers []provider.Name) []Result {
	results := make([]Result, len(providers))

	// Not WithContext: failures travel in each Result and never cancel siblings.
	var eg errgroup.Group
	for i, p := range providers {
		r := req
		r.Provider = p
		r.Model = ""
		eg.Go(func() error {
			results[i] = g.Generate(ctx, user, r)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}
