package resolver

import (
	"context"

	"github.com/psychonautwiki/bifrost/internal/bferrors"
	"github.com/psychonautwiki/bifrost/internal/model"
)

// ErowidResolver wraps one Erowid experience-report document read
// verbatim from the Plebiscite MongoDB collection.
type ErowidResolver struct{ doc model.ErowidExperience }

func (e *ErowidResolver) Title() string                          { return e.doc.Title }
func (e *ErowidResolver) Text() string                           { return e.doc.Text }
func (e *ErowidResolver) Meta() *ErowidMetaResolver               { return &ErowidMetaResolver{e.doc.Meta} }
func (e *ErowidResolver) SubstanceInfo() *ErowidSubstanceInfoResolver {
	return &ErowidSubstanceInfoResolver{e.doc.SubstanceInfo}
}

type ErowidMetaResolver struct{ meta model.ErowidMeta }

func (m *ErowidMetaResolver) Published() int32  { return int32(m.meta.Published) }
func (m *ErowidMetaResolver) Author() string    { return m.meta.Author }
func (m *ErowidMetaResolver) Gender() *string   { return m.meta.Gender }
func (m *ErowidMetaResolver) Age() *string      { return m.meta.Age }

type ErowidSubstanceInfoResolver struct{ info model.ErowidSubstanceInfo }

func (i *ErowidSubstanceInfoResolver) Substance() string { return i.info.Substance }

type erowidArgs struct {
	Substance *string
	Limit     int32
	Offset    int32
}

// Erowid implements the optional Query.erowid field, present in the served
// schema only when the Plebiscite feature is enabled. It is never called
// otherwise, since the field is absent from the SDL entirely — see Schema.
func (r *Resolver) Erowid(ctx context.Context, args erowidArgs) (*[]*ErowidResolver, error) {
	if r.plebiscite == nil {
		return nil, bferrors.WrapInvalid(bferrors.ErrFeatureDisabled, "resolver", "Erowid", "check plebiscite enabled")
	}

	limit := int64(args.Limit)
	if limit == 0 {
		limit = 50
	}

	docs, err := r.plebiscite.Query(ctx, args.Substance, limit, int64(args.Offset))
	if err != nil {
		return nil, err
	}

	out := make([]*ErowidResolver, len(docs))
	for i, doc := range docs {
		out[i] = &ErowidResolver{doc: doc}
	}
	return &out, nil
}
