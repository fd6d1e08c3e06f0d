package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSubstanceSelector_MutualExclusion(t *testing.T) {
	sel := SubstanceSelector{Query: strPtr("LSD"), ChemicalClass: strPtr("Lysergamide")}
	err := sel.Validate()
	require.Error(t, err)
}

func TestSubstanceSelector_SingleAxisIsValid(t *testing.T) {
	sel := SubstanceSelector{Query: strPtr("LSD")}
	assert.NoError(t, sel.Validate())
}

func TestSubstanceSelector_BuildAskQuery_ByTitle(t *testing.T) {
	sel := SubstanceSelector{Query: strPtr("LSD"), Limit: 1}
	assert.Equal(t, "[[:LSD]]|limit=1", sel.BuildAskQuery())
}

func TestSubstanceSelector_BuildAskQuery_Default(t *testing.T) {
	sel := SubstanceSelector{Limit: 10, Offset: 20}
	assert.Equal(t, "[[Category:Psychoactive substance]]|limit=10|offset=20", sel.BuildAskQuery())
}

func TestSubstanceSelector_BuildAskQuery_ByEffect(t *testing.T) {
	sel := SubstanceSelector{Effect: []string{"Euphoria", "Stimulation"}}
	assert.Equal(t, "[[Effect::Euphoria]]|[[Effect::Stimulation]]|[[Category:Psychoactive substance]]", sel.BuildAskQuery())
}

func TestBuildEffectsOfSubstanceQuery(t *testing.T) {
	assert.Equal(t, "[[:LSD]]|?Effect", BuildEffectsOfSubstanceQuery("LSD"))
}

func TestFallbackQueries(t *testing.T) {
	assert.Equal(t, "[[common_name::acid]]|[[Category:psychoactive_substance]]", FallbackCommonNameQuery("acid", 0, 0))
	assert.Equal(t, "[[systematic_name::LSD-25]]|[[Category:psychoactive_substance]]", FallbackSystematicNameQuery("LSD-25", 0, 0))
}

func TestProjectNamedRefs_SortedDeterministic(t *testing.T) {
	resp := AskResponse{}
	resp.Query.Results = map[string]AskResultEntry{
		"b": {FullText: "Bromide", FullURL: "https://x/Bromide"},
		"a": {FullText: "Alcohol", FullURL: "https://x/Alcohol"},
	}
	refs := ProjectNamedRefs(resp)
	require.Len(t, refs, 2)
	assert.Equal(t, "Alcohol", refs[0].Name)
	assert.Equal(t, "Bromide", refs[1].Name)
}

func TestProjectEffectsOfSubstance(t *testing.T) {
	resp := AskResponse{}
	resp.Query.Results = map[string]AskResultEntry{
		"LSD": {
			Printouts: map[string]any{
				"Effect": []any{
					map[string]any{"fulltext": "Euphoria", "fullurl": "https://x/Euphoria"},
				},
			},
		},
	}
	refs := ProjectEffectsOfSubstance(resp, "LSD")
	require.Len(t, refs, 1)
	assert.Equal(t, "Euphoria", refs[0].Name)
}
