package resolver

import "context"

// ExperienceResolver answers the legacy `experiences` root query. Its two
// fields are populated independently, mirroring the arguments the caller
// supplied; either may end up nil if its triggering argument was absent.
type ExperienceResolver struct {
	substances []*SubstanceResolver
	effects    []*EffectResolver
}

func (e *ExperienceResolver) Substances() *[]*SubstanceResolver {
	if e.substances == nil {
		return nil
	}
	return &e.substances
}

func (e *ExperienceResolver) Effects() *[]*EffectResolver {
	if e.effects == nil {
		return nil
	}
	return &e.effects
}

type experiencesArgs struct {
	Substance          *string
	SubstancesByEffect *[]string
	EffectsBySubstance *string
}

// Experiences implements the vestigial Query.experiences. Field names and
// argument shape follow the legacy schema this gateway replaces: a single
// Experience element is always returned (never an empty list), with
// `substances` populated from substancesByEffect and `effects` populated
// from effectsBySubstance (falling back to the bare `substance` argument
// when effectsBySubstance itself is absent).
func (r *Resolver) Experiences(ctx context.Context, args experiencesArgs) ([]*ExperienceResolver, error) {
	exp := &ExperienceResolver{}

	if args.SubstancesByEffect != nil && len(*args.SubstancesByEffect) > 0 {
		subs, err := r.SubstancesByEffect(ctx, substancesByEffectArgs{Effect: *args.SubstancesByEffect, Limit: 50})
		if err != nil {
			return nil, err
		}
		exp.substances = subs
	}

	substanceName := args.EffectsBySubstance
	if substanceName == nil {
		substanceName = args.Substance
	}
	if substanceName != nil {
		effects, err := r.EffectsBySubstance(ctx, effectsBySubstanceArgs{Substance: *substanceName, Limit: 50})
		if err != nil {
			return nil, err
		}
		exp.effects = effects
	}

	return []*ExperienceResolver{exp}, nil
}
