// Package query builds the small family of SMW "ask" query strings the
// upstream API supports, and projects their JSON results into the
// {name,url} shape the resolver layer enriches further.
package query

import (
	"fmt"
	"strings"

	"github.com/psychonautwiki/bifrost/internal/bferrors"
)

// SubstanceSelector carries the four mutually exclusive substance search
// axes plus pagination. At most one of Query, Effect, ChemicalClass, and
// PsychoactiveClass may be set.
type SubstanceSelector struct {
	Query             *string
	Effect            []string
	ChemicalClass     *string
	PsychoactiveClass *string
	Limit             int
	Offset            int
}

// Validate enforces mutual exclusivity of the search axes. It issues no
// upstream calls itself; callers must check this before building a query.
func (s SubstanceSelector) Validate() error {
	set := 0
	if s.Query != nil {
		set++
	}
	if len(s.Effect) > 0 {
		set++
	}
	if s.ChemicalClass != nil {
		set++
	}
	if s.PsychoactiveClass != nil {
		set++
	}
	if set > 1 {
		return bferrors.WrapInvalid(bferrors.ErrMutuallyExclusiveArgs, "query", "Validate", "check substance selector")
	}
	return nil
}

// BuildAskQuery returns the "query" parameter for action=ask corresponding
// to whichever selector axis is set, defaulting to the full substance
// listing when none is.
func (s SubstanceSelector) BuildAskQuery() string {
	switch {
	case s.Query != nil:
		return appendPagination(fmt.Sprintf("[[:%s]]", *s.Query), s.Limit, s.Offset)
	case s.ChemicalClass != nil:
		return appendPagination(fmt.Sprintf("[[Chemical class::%s]]|[[Category:Psychoactive substance]]", *s.ChemicalClass), s.Limit, s.Offset)
	case s.PsychoactiveClass != nil:
		return appendPagination(fmt.Sprintf("[[Psychoactive class::%s]]|[[Category:Psychoactive substance]]", *s.PsychoactiveClass), s.Limit, s.Offset)
	case len(s.Effect) > 0:
		parts := make([]string, len(s.Effect))
		for i, e := range s.Effect {
			parts[i] = fmt.Sprintf("[[Effect::%s]]", e)
		}
		return appendPagination(strings.Join(parts, "|")+"|[[Category:Psychoactive substance]]", s.Limit, s.Offset)
	default:
		return appendPagination("[[Category:Psychoactive substance]]", s.Limit, s.Offset)
	}
}

// FallbackCommonNameQuery is the first of two alternate lookups the
// composer must try when a by-title substance query returns no result.
func FallbackCommonNameQuery(name string, limit, offset int) string {
	return appendPagination(fmt.Sprintf("[[common_name::%s]]|[[Category:psychoactive_substance]]", name), limit, offset)
}

// FallbackSystematicNameQuery is the second alternate lookup, tried only
// after FallbackCommonNameQuery also yields nothing.
func FallbackSystematicNameQuery(name string, limit, offset int) string {
	return appendPagination(fmt.Sprintf("[[systematic_name::%s]]|[[Category:psychoactive_substance]]", name), limit, offset)
}

// BuildEffectsOfSubstanceQuery asks for the Effect printout of a single
// substance page.
func BuildEffectsOfSubstanceQuery(substance string) string {
	return fmt.Sprintf("[[:%s]]|?Effect", substance)
}

// BuildEffectQuery returns the default effect listing, or an effect-name
// search when search is non-nil.
func BuildEffectQuery(search *string, limit, offset int) string {
	if search != nil {
		return appendPagination(fmt.Sprintf("[[Effect::%s]]", *search), limit, offset)
	}
	return appendPagination("[[Category:Effect]]", limit, offset)
}

// appendPagination appends |limit=N and |offset=M only when the values
// are non-zero (the upstream ask syntax treats a zero value as absent).
func appendPagination(q string, limit, offset int) string {
	if limit != 0 {
		q += fmt.Sprintf("|limit=%d", limit)
	}
	if offset != 0 {
		q += fmt.Sprintf("|offset=%d", offset)
	}
	return q
}
