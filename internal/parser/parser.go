// Package parser implements the wikitext/property parser: it dispatches
// SMW property names, via a closed set of regex patterns, into a
// structured substance record, and sanitizes wikitext markup along the
// way. This is the hardest component in bifrost; see the dispatch table
// below for its full contract.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/psychonautwiki/bifrost/internal/model"
	"github.com/psychonautwiki/bifrost/internal/smw"
)

var (
	reTimeBound     = regexp.MustCompile(`(?i)^(.+?)_(.+?)_(.+?)_time$`)
	reDoseBound     = regexp.MustCompile(`(?i)^(.+?)_(.+?)_(.+?)_dose$`)
	reDoseIntensity = regexp.MustCompile(`(?i)^(.+?)_(.+?)_dose$`)
	reBioavail      = regexp.MustCompile(`(?i)^(.+?)_(.+?)_bioavailability$`)
	reDoseUnits     = regexp.MustCompile(`(?i)^(.+?)_dose_units$`)
	reTimeUnits     = regexp.MustCompile(`(?i)^(.+?)_(.+?)_time_units$`)
	reTolerance     = regexp.MustCompile(`(?i)^Time_to_(.+?)_tolerance$`)

	reLinkLabel = regexp.MustCompile(`\[\[([^\]|]+)\|([^\]]+)\]\]`)
	reLink      = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	reSub       = regexp.MustCompile(`(?s)<sub>(.*?)</sub>`)
	reSup       = regexp.MustCompile(`(?s)<sup>(.*?)</sup>`)
)

// ParseSubstance turns the transformer's (property, value) pairs into a
// structured substance record. It is idempotent: the same pairs always
// yield structurally equal records, since dispatch is a pure function of
// the input and carries no package-level mutable state (notably, no
// stateful global-flag regex is used anywhere in this package).
func ParseSubstance(name, url string, pairs []smw.Pair) *model.Substance {
	b := newBuilder(name, url)
	for _, pair := range pairs {
		b.dispatch(pair)
	}
	return b.finalize()
}

// Sanitize applies the wikitext sanitizer to v if it is a string; any
// other type passes through unchanged.
func Sanitize(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return SanitizeString(s)
}

// SanitizeString strips wikitext markup: [[target|label]] becomes label,
// [[link]] becomes link, and <sub>/<sup> wrappers are removed while their
// inner text is kept. A string containing none of these constructs is
// returned unchanged.
func SanitizeString(s string) string {
	s = reLinkLabel.ReplaceAllString(s, "$2")
	s = reLink.ReplaceAllString(s, "$1")
	s = reSub.ReplaceAllString(s, "$1")
	s = reSup.ReplaceAllString(s, "$1")
	return s
}

type builder struct {
	sub      *model.Substance
	roas     map[model.ROAName]*model.Roa
	roaOrder []model.ROAName
}

func newBuilder(name, url string) *builder {
	return &builder{
		sub:  &model.Substance{Name: name, URL: url},
		roas: make(map[model.ROAName]*model.Roa),
	}
}

func (b *builder) roa(name string) *model.Roa {
	key := model.ROAName(strings.ToLower(name))
	if !model.KnownROAs[key] {
		return nil
	}
	r, ok := b.roas[key]
	if !ok {
		r = &model.Roa{Name: key}
		b.roas[key] = r
		b.roaOrder = append(b.roaOrder, key)
	}
	return r
}

func (b *builder) durationStage(roa *model.Roa, stage string) *model.TimeRange {
	var field **model.TimeRange
	switch model.DurationStage(strings.ToLower(stage)) {
	case model.StageOnset:
		field = &roa.Duration.Onset
	case model.StageComeup:
		field = &roa.Duration.Comeup
	case model.StagePeak:
		field = &roa.Duration.Peak
	case model.StageOffset:
		field = &roa.Duration.Offset
	case model.StageAfterglow:
		field = &roa.Duration.Afterglow
	case model.StageTotal:
		field = &roa.Duration.Total
	case model.StageDuration:
		field = &roa.Duration.Duration
	default:
		return nil
	}
	if *field == nil {
		*field = &model.TimeRange{}
	}
	return *field
}

func (b *builder) doseRange(roa *model.Roa, intensity string) *model.Range {
	var field **model.Range
	switch model.DoseIntensity(strings.ToLower(intensity)) {
	case model.IntensityLight:
		field = &roa.Dose.Light
	case model.IntensityCommon:
		field = &roa.Dose.Common
	case model.IntensityStrong:
		field = &roa.Dose.Strong
	default:
		return nil
	}
	if *field == nil {
		*field = &model.Range{}
	}
	return *field
}

func (b *builder) dispatch(pair smw.Pair) {
	prop := pair.Property

	switch {
	case reTimeBound.MatchString(prop):
		m := reTimeBound.FindStringSubmatch(prop)
		b.handleTimeBound(m[1], m[2], m[3], pair.Value)
	case reDoseBound.MatchString(prop):
		m := reDoseBound.FindStringSubmatch(prop)
		b.handleDoseBound(m[1], m[2], m[3], pair.Value)
	case reDoseIntensity.MatchString(prop):
		m := reDoseIntensity.FindStringSubmatch(prop)
		b.handleDoseIntensity(m[1], m[2], pair.Value)
	case reBioavail.MatchString(prop):
		m := reBioavail.FindStringSubmatch(prop)
		b.handleBioavailability(m[1], m[2], pair.Value)
	case reDoseUnits.MatchString(prop):
		m := reDoseUnits.FindStringSubmatch(prop)
		b.handleDoseUnits(m[1], pair.Value)
	case reTimeUnits.MatchString(prop):
		m := reTimeUnits.FindStringSubmatch(prop)
		b.handleTimeUnits(m[1], m[2], pair.Value)
	case reTolerance.MatchString(prop):
		m := reTolerance.FindStringSubmatch(prop)
		b.handleTolerance(m[1], pair.Value)
	}

	// Flat and mapped meta-properties are independent of the regex
	// dispatch above and may additionally apply to the same property.
	b.dispatchMeta(prop, pair.Value)
}

func (b *builder) handleTimeBound(roaRaw, stageRaw, boundRaw string, val any) {
	roa := b.roa(roaRaw)
	if roa == nil {
		return
	}
	tr := b.durationStage(roa, stageRaw)
	if tr == nil {
		return
	}
	f, ok := toFloat(val)
	if !ok {
		return
	}
	setBound(boundRaw, &tr.Min, &tr.Max, f)
}

func (b *builder) handleDoseBound(roaRaw, intensityRaw, boundRaw string, val any) {
	roa := b.roa(roaRaw)
	if roa == nil {
		return
	}
	rng := b.doseRange(roa, intensityRaw)
	if rng == nil {
		return
	}
	f, ok := toFloat(val)
	if !ok {
		return
	}
	setBound(boundRaw, &rng.Min, &rng.Max, f)
}

func (b *builder) handleDoseIntensity(roaRaw, intensityRaw string, val any) {
	roa := b.roa(roaRaw)
	if roa == nil {
		return
	}
	f, ok := toFloat(val)
	if !ok {
		return
	}
	switch model.DoseIntensity(strings.ToLower(intensityRaw)) {
	case model.IntensityThreshold:
		roa.Dose.Threshold = &f
	case model.IntensityHeavy:
		roa.Dose.Heavy = &f
	}
}

func (b *builder) handleBioavailability(roaRaw, boundRaw string, val any) {
	roa := b.roa(roaRaw)
	if roa == nil {
		return
	}
	f, ok := toFloat(val)
	if !ok {
		return
	}
	if roa.Bioavailability == nil {
		roa.Bioavailability = &model.Range{}
	}
	setBound(boundRaw, &roa.Bioavailability.Min, &roa.Bioavailability.Max, f)
}

func (b *builder) handleDoseUnits(roaRaw string, val any) {
	roa := b.roa(roaRaw)
	if roa == nil {
		return
	}
	s := toStr(val)
	roa.Dose.Units = &s
}

func (b *builder) handleTimeUnits(roaRaw, stageRaw string, val any) {
	roa := b.roa(roaRaw)
	if roa == nil {
		return
	}
	tr := b.durationStage(roa, stageRaw)
	if tr == nil {
		return
	}
	tr.Units = toStr(val)
}

func (b *builder) handleTolerance(tierRaw string, val any) {
	s := SanitizeString(toStr(val))
	switch strings.ToLower(tierRaw) {
	case "full":
		b.sub.Tolerance.Full = &s
	case "half":
		b.sub.Tolerance.Half = &s
	case "zero":
		b.sub.Tolerance.Zero = &s
	}
}

func (b *builder) dispatchMeta(prop string, val any) {
	switch strings.ToLower(prop) {
	case "addiction_potential":
		s := SanitizeString(toStr(val))
		b.sub.AddictionPotential = &s
	case "uncertaininteraction":
		b.sub.UncertainInteractions = forceArray(val)
	case "unsafeinteraction":
		b.sub.UnsafeInteractions = forceArray(val)
	case "dangerousinteraction":
		b.sub.DangerousInteractions = forceArray(val)
	case "effect":
		b.sub.EffectNames = forceArray(val)
	case "common_name":
		b.sub.CommonNames = cleanTagArray(forceArray(val))
	case "systematic_name":
		s := SanitizeString(toStr(val))
		b.sub.SystematicName = &s
	case "cross-tolerance":
		b.sub.CrossTolerances = extractCrossTolerances(val)
	case "featured":
		f := strings.EqualFold(toStr(val), "t")
		b.sub.Featured = &f
	case "toxicity":
		arr := forceArray(val)
		for i, s := range arr {
			arr[i] = SanitizeString(s)
		}
		b.sub.Toxicity = arr
	case "psychoactive_class":
		b.sub.Class.Psychoactive = cleanTagArray(forceArray(val))
	case "chemical_class":
		b.sub.Class.Chemical = cleanTagArray(forceArray(val))
	}
}

func (b *builder) finalize() *model.Substance {
	b.sub.Roa = b.roas

	roas := make([]model.Roa, 0, len(b.roaOrder))
	for _, key := range b.roaOrder {
		roas = append(roas, *b.roas[key])
	}
	b.sub.Roas = roas

	if b.sub.Toxicity == nil {
		b.sub.Toxicity = []string{}
	}
	if b.sub.CommonNames == nil {
		b.sub.CommonNames = []string{}
	}
	if b.sub.CrossTolerances == nil {
		b.sub.CrossTolerances = []string{}
	}
	if b.sub.UncertainInteractions == nil {
		b.sub.UncertainInteractions = []string{}
	}
	if b.sub.UnsafeInteractions == nil {
		b.sub.UnsafeInteractions = []string{}
	}
	if b.sub.DangerousInteractions == nil {
		b.sub.DangerousInteractions = []string{}
	}

	return b.sub
}

func setBound(bound string, min, max *float64, val float64) {
	switch strings.ToLower(bound) {
	case "min":
		*min = val
	case "max":
		*max = val
	}
}

func cleanTagArray(arr []string) []string {
	out := make([]string, len(arr))
	for i, s := range arr {
		out[i] = cleanTag(s)
	}
	return out
}

func cleanTag(s string) string {
	s = strings.TrimSuffix(s, "#")
	return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
}

func extractCrossTolerances(val any) []string {
	out := []string{}
	process := func(s string) {
		for _, m := range reLink.FindAllStringSubmatch(s, -1) {
			out = append(out, m[1])
		}
	}
	switch t := val.(type) {
	case string:
		process(t)
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				process(s)
			}
		}
	}
	return out
}

func forceArray(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, toStr(e))
		}
		return out
	default:
		return []string{toStr(t)}
	}
}

func toStr(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
