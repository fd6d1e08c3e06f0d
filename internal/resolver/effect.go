package resolver

import (
	"context"

	"github.com/psychonautwiki/bifrost/internal/model"
	"github.com/psychonautwiki/bifrost/internal/query"
)

// EffectResolver wraps a {name,url} effect reference; Substances is its
// only non-trivial field, resolved by a live ask query rather than a
// pre-materialized substance list.
type EffectResolver struct {
	r   *Resolver
	ref model.NamedRef
}

func (e *EffectResolver) Name() string { return e.ref.Name }
func (e *EffectResolver) URL() string  { return e.ref.URL }

type effectSubstancesArgs struct {
	Limit int32
}

func (e *EffectResolver) Substances(ctx context.Context, args effectSubstancesArgs) ([]*SubstanceResolver, error) {
	sel := query.SubstanceSelector{Effect: []string{e.ref.Name}, Limit: int(args.Limit)}
	refs, err := e.r.askNamedRefs(ctx, sel.BuildAskQuery())
	if err != nil {
		return nil, err
	}
	return e.r.resolveSubstances(ctx, refs, false)
}
