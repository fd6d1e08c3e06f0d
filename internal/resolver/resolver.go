// Package resolver binds bifrost's GraphQL schema (see Schema) to the
// upstream connector, SMW transformer, property parser, and derivation
// helpers. Every field beyond name/url is resolved lazily: the resolver
// tree for one query holds only {name,url} references until a client
// actually asks for a field that needs the full semantic record, at which
// point one browsebysubject fetch (itself SWR-cached by the connector)
// fills it in and memoizes the result for the rest of that resolver's
// lifetime.
package resolver

import (
	"context"
	"encoding/json"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/psychonautwiki/bifrost/internal/bferrors"
	"github.com/psychonautwiki/bifrost/internal/metrics"
	"github.com/psychonautwiki/bifrost/internal/model"
	"github.com/psychonautwiki/bifrost/internal/parser"
	"github.com/psychonautwiki/bifrost/internal/plebiscite"
	"github.com/psychonautwiki/bifrost/internal/query"
	"github.com/psychonautwiki/bifrost/internal/smw"
)

// Connector is the subset of upstream.Connector the resolver layer needs;
// narrowed to an interface so tests can supply a fake without standing up
// an httptest server for every case.
type Connector interface {
	Fetch(ctx context.Context, params url.Values) (json.RawMessage, error)
}

// Resolver is the GraphQL root object graph-gophers binds Query to.
type Resolver struct {
	conn       Connector
	plebiscite *plebiscite.Client
	metrics    *metrics.Metrics
	cdnURL     string
}

// New builds a root Resolver. pleb may be nil when the Plebiscite feature
// is disabled; the schema served in that case omits the erowid field
// entirely, so Resolver.Erowid is simply never called.
func New(conn Connector, pleb *plebiscite.Client, m *metrics.Metrics, cdnURL string) *Resolver {
	return &Resolver{conn: conn, plebiscite: pleb, metrics: m, cdnURL: cdnURL}
}

func (r *Resolver) wrapRef(ref model.NamedRef) *SubstanceResolver {
	return &SubstanceResolver{r: r, ref: ref}
}

func (r *Resolver) wrapFull(sub *model.Substance) *SubstanceResolver {
	return &SubstanceResolver{r: r, ref: model.NamedRef{Name: sub.Name, URL: sub.URL}, full: sub}
}

func (r *Resolver) wrapStub(name string) *SubstanceResolver {
	return &SubstanceResolver{r: r, ref: model.NamedRef{Name: name}, isStub: true}
}

func (r *Resolver) wrapEffectRef(ref model.NamedRef) *EffectResolver {
	return &EffectResolver{r: r, ref: ref}
}

// doAsk issues action=ask with the given query string.
func (r *Resolver) doAsk(ctx context.Context, q string) (json.RawMessage, error) {
	return r.conn.Fetch(ctx, url.Values{"action": {"ask"}, "query": {q}})
}

func (r *Resolver) askNamedRefs(ctx context.Context, q string) ([]model.NamedRef, error) {
	raw, err := r.doAsk(ctx, q)
	if err != nil {
		return nil, err
	}
	var resp query.AskResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, bferrors.WrapInvalid(err, "resolver", "askNamedRefs", "decode ask response")
	}
	return query.ProjectNamedRefs(resp), nil
}

func (r *Resolver) askEffectsOfSubstance(ctx context.Context, substance string) ([]model.NamedRef, error) {
	raw, err := r.doAsk(ctx, query.BuildEffectsOfSubstanceQuery(substance))
	if err != nil {
		return nil, err
	}
	var resp query.AskResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, bferrors.WrapInvalid(err, "resolver", "askEffectsOfSubstance", "decode ask response")
	}
	return query.ProjectEffectsOfSubstance(resp, substance), nil
}

// fetchSubstanceRecord fetches and parses the full semantic record for one
// substance page, the operation every lazy Substance field beyond
// name/url ultimately triggers.
func (r *Resolver) fetchSubstanceRecord(ctx context.Context, ref model.NamedRef) (*model.Substance, error) {
	raw, err := r.conn.Fetch(ctx, url.Values{"action": {"browsebysubject"}, "subject": {ref.Name}})
	if err != nil {
		return nil, err
	}
	payload, err := smw.DecodeBrowseBySubject(raw)
	if err != nil {
		return nil, bferrors.WrapInvalid(err, "resolver", "fetchSubstanceRecord", "decode browsebysubject")
	}
	_, pairs := smw.Transform(payload)
	return parser.ParseSubstance(ref.Name, ref.URL, pairs), nil
}

// resolveSubstances turns a list of name/url references into
// SubstanceResolvers. When enrich is true (the `query` selector branch),
// each reference's full record is fetched concurrently ahead of time;
// otherwise every field beyond name/url is left to lazy per-field
// resolution, per §4.7's contract for substancesByEffect.
func (r *Resolver) resolveSubstances(ctx context.Context, refs []model.NamedRef, enrich bool) ([]*SubstanceResolver, error) {
	out := make([]*SubstanceResolver, len(refs))
	if !enrich {
		for i, ref := range refs {
			out[i] = r.wrapRef(ref)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			sub, err := r.fetchSubstanceRecord(gctx, ref)
			if err != nil {
				return err
			}
			out[i] = r.wrapFull(sub)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolveInteractions runs a concurrent query(=name, limit=1) lookup per
// raw interaction name, collapsing zero-or-multiple matches to a stub.
func (r *Resolver) resolveInteractions(ctx context.Context, names []string) ([]*SubstanceResolver, error) {
	out := make([]*SubstanceResolver, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			name := name
			sel := query.SubstanceSelector{Query: &name, Limit: 1}
			refs, err := r.askNamedRefs(gctx, sel.BuildAskQuery())
			if err != nil {
				return err
			}
			if len(refs) == 1 {
				out[i] = r.wrapRef(refs[0])
			} else {
				out[i] = r.wrapStub(name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type substancesArgs struct {
	Query             *string
	Effect            *[]string
	ChemicalClass     *string
	PsychoactiveClass *string
	Limit             int32
	Offset            int32
}

// Substances implements Query.substances.
func (r *Resolver) Substances(ctx context.Context, args substancesArgs) ([]*SubstanceResolver, error) {
	effect := []string{}
	if args.Effect != nil {
		effect = *args.Effect
	}
	sel := query.SubstanceSelector{
		Query:             args.Query,
		Effect:            effect,
		ChemicalClass:     args.ChemicalClass,
		PsychoactiveClass: args.PsychoactiveClass,
		Limit:             int(args.Limit),
		Offset:            int(args.Offset),
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	refs, err := r.askNamedRefs(ctx, sel.BuildAskQuery())
	if err != nil {
		return nil, err
	}

	if len(refs) == 0 && args.Query != nil {
		refs, err = r.askNamedRefs(ctx, query.FallbackCommonNameQuery(*args.Query, sel.Limit, sel.Offset))
		if err != nil {
			return nil, err
		}
		if len(refs) == 0 {
			refs, err = r.askNamedRefs(ctx, query.FallbackSystematicNameQuery(*args.Query, sel.Limit, sel.Offset))
			if err != nil {
				return nil, err
			}
		}
	}

	return r.resolveSubstances(ctx, refs, args.Query != nil)
}

type substancesByEffectArgs struct {
	Effect []string
	Limit  int32
	Offset int32
}

// SubstancesByEffect implements Query.substancesByEffect.
func (r *Resolver) SubstancesByEffect(ctx context.Context, args substancesByEffectArgs) ([]*SubstanceResolver, error) {
	sel := query.SubstanceSelector{Effect: args.Effect, Limit: int(args.Limit), Offset: int(args.Offset)}
	refs, err := r.askNamedRefs(ctx, sel.BuildAskQuery())
	if err != nil {
		return nil, err
	}
	return r.resolveSubstances(ctx, refs, false)
}

type effectsBySubstanceArgs struct {
	Substance string
	Limit     int32
	Offset    int32
}

// EffectsBySubstance implements Query.effectsBySubstance.
func (r *Resolver) EffectsBySubstance(ctx context.Context, args effectsBySubstanceArgs) ([]*EffectResolver, error) {
	refs, err := r.askEffectsOfSubstance(ctx, args.Substance)
	if err != nil {
		return nil, err
	}
	out := make([]*EffectResolver, len(refs))
	for i, ref := range refs {
		out[i] = r.wrapEffectRef(ref)
	}
	return out, nil
}

type effectsArgs struct {
	Limit  int32
	Offset int32
}

// Effects implements the vestigial Query.effects: always addressable,
// answered for real, and only empty on an upstream error (per §9).
func (r *Resolver) Effects(ctx context.Context, args effectsArgs) []*EffectResolver {
	refs, err := r.askNamedRefs(ctx, query.BuildEffectQuery(nil, int(args.Limit), int(args.Offset)))
	if err != nil {
		return []*EffectResolver{}
	}
	out := make([]*EffectResolver, len(refs))
	for i, ref := range refs {
		out[i] = r.wrapEffectRef(ref)
	}
	return out
}
