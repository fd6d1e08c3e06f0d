// Package model defines bifrost's projected GraphQL data model: the
// typed substance record the wikitext/property parser builds and the
// shapes the resolver layer hands to the GraphQL schema.
//
// Entities here are transient per-request values rebuilt from cache hits
// on the upstream payload; there is no process-level substance store.
package model

// ROAName enumerates the closed set of supported routes of administration.
type ROAName string

const (
	ROAOral          ROAName = "oral"
	ROASublingual    ROAName = "sublingual"
	ROABuccal        ROAName = "buccal"
	ROAInsufflated   ROAName = "insufflated"
	ROARectal        ROAName = "rectal"
	ROATransdermal   ROAName = "transdermal"
	ROASubcutaneous  ROAName = "subcutaneous"
	ROAIntramuscular ROAName = "intramuscular"
	ROAIntravenous   ROAName = "intravenous"
	ROASmoked        ROAName = "smoked"
)

// KnownROAs is the closed set of ROA names; unknown ROA keys encountered
// while parsing are dropped rather than added to this set.
var KnownROAs = map[ROAName]bool{
	ROAOral: true, ROASublingual: true, ROABuccal: true, ROAInsufflated: true,
	ROARectal: true, ROATransdermal: true, ROASubcutaneous: true,
	ROAIntramuscular: true, ROAIntravenous: true, ROASmoked: true,
}

// DurationStage is a point in a route's dose-response timeline.
type DurationStage string

const (
	StageOnset     DurationStage = "onset"
	StageComeup    DurationStage = "comeup"
	StagePeak      DurationStage = "peak"
	StageOffset    DurationStage = "offset"
	StageAfterglow DurationStage = "afterglow"
	StageTotal     DurationStage = "total"
	StageDuration  DurationStage = "duration"
)

// DoseIntensity is a named point on a route's dose-response curve.
type DoseIntensity string

const (
	IntensityThreshold DoseIntensity = "threshold"
	IntensityLight     DoseIntensity = "light"
	IntensityCommon    DoseIntensity = "common"
	IntensityStrong    DoseIntensity = "strong"
	IntensityHeavy     DoseIntensity = "heavy"
)

// Range is an inclusive {min,max} pair. A nil Range means "not reported".
type Range struct {
	Min float64
	Max float64
}

// TimeRange carries a Range plus the units the figures are expressed in.
type TimeRange struct {
	Min   float64
	Max   float64
	Units string
}

// Substance is the central entity: a psychoactive substance page projected
// from merged ask/browsebysubject/parse responses.
type Substance struct {
	Name     string
	URL      string
	Featured *bool

	Class     SubstanceClass
	Tolerance SubstanceTolerance

	Roas []Roa
	// Roa exposes the same records keyed by name, for the closed ROA set.
	Roa map[ROAName]*Roa

	AddictionPotential *string
	Toxicity           []string

	CrossTolerances []string
	CommonNames     []string
	SystematicName  *string

	UncertainInteractions []string
	UnsafeInteractions    []string
	DangerousInteractions []string

	Summary *string
	// Images is nil when upstream reported no images (or the fetch failed);
	// an empty-but-non-nil slice never occurs for this field.
	Images []SubstanceImages

	// Effects is not filled by the parser or the resolvers; the GraphQL
	// effects field is answered by the resolver's own ask query.
	Effects []Effect

	// EffectNames holds the raw "effect" property as reported directly on
	// the substance's own browsebysubject payload. It is informational;
	// the authoritative Effects list still comes from the resolver's
	// separate ask query.
	EffectNames []string
}

// SubstanceClass groups the chemical/psychoactive classification tags.
type SubstanceClass struct {
	Chemical     []string
	Psychoactive []string
}

// SubstanceTolerance holds human-readable tolerance-reset durations.
type SubstanceTolerance struct {
	Full *string
	Half *string
	Zero *string
}

// SubstanceImages is the derived thumbnail/full-image URL pair.
type SubstanceImages struct {
	Thumb string
	Image string
}

// Roa is one route of administration's dosing and duration profile.
type Roa struct {
	Name     ROAName
	Dose     RoaDose
	Duration RoaDuration
	// Bioavailability is nil when upstream reported neither bound.
	Bioavailability *Range
}

// RoaDose is a route's dose-response curve.
type RoaDose struct {
	Units     *string
	Threshold *float64
	Heavy     *float64
	Light     *Range
	Common    *Range
	Strong    *Range
}

// RoaDuration is a route's timeline, stage by stage.
type RoaDuration struct {
	Onset     *TimeRange
	Comeup    *TimeRange
	Peak      *TimeRange
	Offset    *TimeRange
	Afterglow *TimeRange
	Total     *TimeRange
	Duration  *TimeRange
}

// Effect is a named psychoactive effect page.
type Effect struct {
	Name string
	URL  string
	// Substances is resolved lazily by a separate ask query, not eagerly
	// attached by the parser.
	Substances []Substance
}

// NamedRef is the minimal {name,url} shape the query composer / result
// projector emits before any enrichment takes place.
type NamedRef struct {
	Name string
	URL  string
}
