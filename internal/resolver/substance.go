package resolver

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/psychonautwiki/bifrost/internal/derive"
	"github.com/psychonautwiki/bifrost/internal/model"
)

// SubstanceResolver wraps a substance reference that may or may not have
// had its full semantic record fetched yet. load, summary, and images each
// memoize their own upstream round trip independently, since they come
// from three different MediaWiki API actions.
type SubstanceResolver struct {
	r      *Resolver
	ref    model.NamedRef
	isStub bool

	full     *model.Substance
	fullErr  error
	fullOnce sync.Once

	summary     *string
	summaryOnce sync.Once

	images     []model.SubstanceImages
	imagesOnce sync.Once
}

func (s *SubstanceResolver) load(ctx context.Context) (*model.Substance, error) {
	s.fullOnce.Do(func() {
		switch {
		case s.full != nil:
		case s.isStub:
			s.full = &model.Substance{Name: s.ref.Name}
		default:
			s.full, s.fullErr = s.r.fetchSubstanceRecord(ctx, s.ref)
		}
	})
	return s.full, s.fullErr
}

func (s *SubstanceResolver) Name() string { return s.ref.Name }
func (s *SubstanceResolver) URL() string  { return s.ref.URL }

func (s *SubstanceResolver) Featured(ctx context.Context) (*bool, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return sub.Featured, nil
}

func (s *SubstanceResolver) Class(ctx context.Context) (*SubstanceClassResolver, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &SubstanceClassResolver{sub.Class}, nil
}

func (s *SubstanceResolver) Tolerance(ctx context.Context) (*SubstanceToleranceResolver, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &SubstanceToleranceResolver{sub.Tolerance}, nil
}

func (s *SubstanceResolver) Roas(ctx context.Context) ([]*SubstanceRoaResolver, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*SubstanceRoaResolver, len(sub.Roas))
	for i := range sub.Roas {
		out[i] = &SubstanceRoaResolver{roa: &sub.Roas[i]}
	}
	return out, nil
}

func (s *SubstanceResolver) Roa(ctx context.Context) (*SubstanceRoaTypesResolver, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &SubstanceRoaTypesResolver{roaMap: sub.Roa}, nil
}

func (s *SubstanceResolver) AddictionPotential(ctx context.Context) (*string, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return sub.AddictionPotential, nil
}

func (s *SubstanceResolver) Toxicity(ctx context.Context) ([]string, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return sub.Toxicity, nil
}

func (s *SubstanceResolver) CrossTolerances(ctx context.Context) ([]string, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return sub.CrossTolerances, nil
}

func (s *SubstanceResolver) CommonNames(ctx context.Context) ([]string, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return sub.CommonNames, nil
}

func (s *SubstanceResolver) SystematicName(ctx context.Context) (*string, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return sub.SystematicName, nil
}

func (s *SubstanceResolver) UncertainInteractions(ctx context.Context) ([]*SubstanceResolver, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.r.resolveInteractions(ctx, sub.UncertainInteractions)
}

func (s *SubstanceResolver) UnsafeInteractions(ctx context.Context) ([]*SubstanceResolver, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.r.resolveInteractions(ctx, sub.UnsafeInteractions)
}

func (s *SubstanceResolver) DangerousInteractions(ctx context.Context) ([]*SubstanceResolver, error) {
	sub, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.r.resolveInteractions(ctx, sub.DangerousInteractions)
}

// Summary fetches the derived abstract via action=parse, prop=text. Per
// §4.5, any failure (transport, decode, or no usable paragraph) yields a
// null field rather than a propagated error.
func (s *SubstanceResolver) Summary(ctx context.Context) *string {
	s.summaryOnce.Do(func() {
		if s.isStub {
			return
		}
		s.summary = s.r.fetchAbstract(ctx, s.ref.Name)
	})
	return s.summary
}

// Images fetches derived image URLs via action=parse, prop=images. Per
// §4.5, a missing or non-array upstream images field yields null.
func (s *SubstanceResolver) Images(ctx context.Context) *[]*SubstanceImageResolver {
	s.imagesOnce.Do(func() {
		if s.isStub {
			return
		}
		s.images = s.r.fetchImages(ctx, s.ref.Name)
	})
	if s.images == nil {
		return nil
	}
	out := make([]*SubstanceImageResolver, len(s.images))
	for i := range s.images {
		out[i] = &SubstanceImageResolver{s.images[i]}
	}
	return &out
}

func (s *SubstanceResolver) Effects(ctx context.Context) ([]*EffectResolver, error) {
	if s.isStub {
		return []*EffectResolver{}, nil
	}
	refs, err := s.r.askEffectsOfSubstance(ctx, s.ref.Name)
	if err != nil {
		return nil, err
	}
	out := make([]*EffectResolver, len(refs))
	for i, ref := range refs {
		out[i] = s.r.wrapEffectRef(ref)
	}
	return out, nil
}

// fetchAbstract and fetchImages live on Resolver (not SubstanceResolver)
// since they only need a page name, not any substance state.

func (r *Resolver) fetchAbstract(ctx context.Context, page string) *string {
	raw, err := r.conn.Fetch(ctx, url.Values{
		"action": {"parse"}, "page": {page}, "prop": {"text"}, "section": {"0"},
	})
	if err != nil {
		return nil
	}

	var resp struct {
		Parse struct {
			Text map[string]string `json:"text"`
		} `json:"parse"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}

	html, ok := resp.Parse.Text["*"]
	if !ok {
		return nil
	}
	text, ok := derive.DeriveAbstract(html)
	if !ok {
		return nil
	}
	return &text
}

func (r *Resolver) fetchImages(ctx context.Context, page string) []model.SubstanceImages {
	raw, err := r.conn.Fetch(ctx, url.Values{
		"action": {"parse"}, "page": {page}, "prop": {"images"},
	})
	if err != nil {
		return nil
	}

	var resp struct {
		Parse struct {
			Images []string `json:"images"`
		} `json:"parse"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	if resp.Parse.Images == nil {
		return nil
	}

	urls := derive.DeriveImages(r.cdnURL, resp.Parse.Images)
	out := make([]model.SubstanceImages, len(urls))
	for i, u := range urls {
		out[i] = model.SubstanceImages{Thumb: u.Thumb, Image: u.Image}
	}
	return out
}

// SubstanceClassResolver wraps model.SubstanceClass.
type SubstanceClassResolver struct{ class model.SubstanceClass }

func (c *SubstanceClassResolver) Chemical() []string     { return c.class.Chemical }
func (c *SubstanceClassResolver) Psychoactive() []string { return c.class.Psychoactive }

// SubstanceToleranceResolver wraps model.SubstanceTolerance.
type SubstanceToleranceResolver struct{ tolerance model.SubstanceTolerance }

func (t *SubstanceToleranceResolver) Full() *string { return t.tolerance.Full }
func (t *SubstanceToleranceResolver) Half() *string { return t.tolerance.Half }
func (t *SubstanceToleranceResolver) Zero() *string { return t.tolerance.Zero }

// SubstanceImageResolver wraps one derived {thumb,image} pair.
type SubstanceImageResolver struct{ img model.SubstanceImages }

func (i *SubstanceImageResolver) Thumb() string { return i.img.Thumb }
func (i *SubstanceImageResolver) Image() string { return i.img.Image }

// SubstanceRoaResolver wraps one route of administration's profile.
type SubstanceRoaResolver struct{ roa *model.Roa }

func (r *SubstanceRoaResolver) Name() string { return string(r.roa.Name) }
func (r *SubstanceRoaResolver) Dose() *SubstanceRoaDoseResolver {
	return &SubstanceRoaDoseResolver{r.roa.Dose}
}
func (r *SubstanceRoaResolver) Duration() *SubstanceRoaDurationResolver {
	return &SubstanceRoaDurationResolver{r.roa.Duration}
}
func (r *SubstanceRoaResolver) Bioavailability() *SubstanceRoaRangeResolver {
	return wrapRange(r.roa.Bioavailability)
}

// SubstanceRoaTypesResolver exposes the closed ROA set by name.
type SubstanceRoaTypesResolver struct{ roaMap map[model.ROAName]*model.Roa }

func (t *SubstanceRoaTypesResolver) byName(name model.ROAName) *SubstanceRoaResolver {
	roa, ok := t.roaMap[name]
	if !ok || roa == nil {
		return nil
	}
	return &SubstanceRoaResolver{roa: roa}
}

func (t *SubstanceRoaTypesResolver) Oral() *SubstanceRoaResolver { return t.byName(model.ROAOral) }
func (t *SubstanceRoaTypesResolver) Sublingual() *SubstanceRoaResolver {
	return t.byName(model.ROASublingual)
}
func (t *SubstanceRoaTypesResolver) Buccal() *SubstanceRoaResolver {
	return t.byName(model.ROABuccal)
}
func (t *SubstanceRoaTypesResolver) Insufflated() *SubstanceRoaResolver {
	return t.byName(model.ROAInsufflated)
}
func (t *SubstanceRoaTypesResolver) Rectal() *SubstanceRoaResolver {
	return t.byName(model.ROARectal)
}
func (t *SubstanceRoaTypesResolver) Transdermal() *SubstanceRoaResolver {
	return t.byName(model.ROATransdermal)
}
func (t *SubstanceRoaTypesResolver) Subcutaneous() *SubstanceRoaResolver {
	return t.byName(model.ROASubcutaneous)
}
func (t *SubstanceRoaTypesResolver) Intramuscular() *SubstanceRoaResolver {
	return t.byName(model.ROAIntramuscular)
}
func (t *SubstanceRoaTypesResolver) Intravenous() *SubstanceRoaResolver {
	return t.byName(model.ROAIntravenous)
}
func (t *SubstanceRoaTypesResolver) Smoked() *SubstanceRoaResolver {
	return t.byName(model.ROASmoked)
}

// SubstanceRoaDoseResolver wraps one route's dose-response curve.
type SubstanceRoaDoseResolver struct{ dose model.RoaDose }

func (d *SubstanceRoaDoseResolver) Units() *string     { return d.dose.Units }
func (d *SubstanceRoaDoseResolver) Threshold() *float64 { return d.dose.Threshold }
func (d *SubstanceRoaDoseResolver) Heavy() *float64     { return d.dose.Heavy }
func (d *SubstanceRoaDoseResolver) Light() *SubstanceRoaRangeResolver {
	return wrapRange(d.dose.Light)
}
func (d *SubstanceRoaDoseResolver) Common() *SubstanceRoaRangeResolver {
	return wrapRange(d.dose.Common)
}
func (d *SubstanceRoaDoseResolver) Strong() *SubstanceRoaRangeResolver {
	return wrapRange(d.dose.Strong)
}

// SubstanceRoaRangeResolver wraps an inclusive {min,max} dose range.
type SubstanceRoaRangeResolver struct{ rng model.Range }

func (r *SubstanceRoaRangeResolver) Min() float64 { return r.rng.Min }
func (r *SubstanceRoaRangeResolver) Max() float64 { return r.rng.Max }

func wrapRange(rng *model.Range) *SubstanceRoaRangeResolver {
	if rng == nil {
		return nil
	}
	return &SubstanceRoaRangeResolver{*rng}
}

// SubstanceRoaDurationResolver wraps a route's duration timeline.
type SubstanceRoaDurationResolver struct{ dur model.RoaDuration }

func (d *SubstanceRoaDurationResolver) Onset() *SubstanceRoaDurationRangeResolver {
	return wrapTimeRange(d.dur.Onset)
}
func (d *SubstanceRoaDurationResolver) Comeup() *SubstanceRoaDurationRangeResolver {
	return wrapTimeRange(d.dur.Comeup)
}
func (d *SubstanceRoaDurationResolver) Peak() *SubstanceRoaDurationRangeResolver {
	return wrapTimeRange(d.dur.Peak)
}
func (d *SubstanceRoaDurationResolver) Offset() *SubstanceRoaDurationRangeResolver {
	return wrapTimeRange(d.dur.Offset)
}
func (d *SubstanceRoaDurationResolver) Afterglow() *SubstanceRoaDurationRangeResolver {
	return wrapTimeRange(d.dur.Afterglow)
}
func (d *SubstanceRoaDurationResolver) Total() *SubstanceRoaDurationRangeResolver {
	return wrapTimeRange(d.dur.Total)
}
func (d *SubstanceRoaDurationResolver) Duration() *SubstanceRoaDurationRangeResolver {
	return wrapTimeRange(d.dur.Duration)
}

// SubstanceRoaDurationRangeResolver wraps a {min,max,units} duration figure.
type SubstanceRoaDurationRangeResolver struct{ tr model.TimeRange }

func (r *SubstanceRoaDurationRangeResolver) Min() float64  { return r.tr.Min }
func (r *SubstanceRoaDurationRangeResolver) Max() float64  { return r.tr.Max }
func (r *SubstanceRoaDurationRangeResolver) Units() string { return r.tr.Units }

func wrapTimeRange(tr *model.TimeRange) *SubstanceRoaDurationRangeResolver {
	if tr == nil {
		return nil
	}
	return &SubstanceRoaDurationRangeResolver{*tr}
}
