package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psychonautwiki/bifrost/internal/smw"
)

func scenarioPairs() []smw.Pair {
	return []smw.Pair{
		{Property: "oral_common_min_dose", Value: 10.0},
		{Property: "oral_common_max_dose", Value: 20.0},
		{Property: "oral_dose_units", Value: "mg"},
		{Property: "Time_to_half_tolerance", Value: "3 days"},
		{Property: "psychoactive_class", Value: "stimulant_"},
		{Property: "dangerousinteraction", Value: []any{"Alcohol", "Cocaine"}},
	}
}

func TestParseSubstance_SpecScenario4(t *testing.T) {
	sub := ParseSubstance("Example", "https://example/Example", scenarioPairs())

	require.NotNil(t, sub.Roa["oral"])
	require.NotNil(t, sub.Roa["oral"].Dose.Common)
	assert.Equal(t, 10.0, sub.Roa["oral"].Dose.Common.Min)
	assert.Equal(t, 20.0, sub.Roa["oral"].Dose.Common.Max)
	require.NotNil(t, sub.Roa["oral"].Dose.Units)
	assert.Equal(t, "mg", *sub.Roa["oral"].Dose.Units)

	require.NotNil(t, sub.Tolerance.Half)
	assert.Equal(t, "3 days", *sub.Tolerance.Half)

	assert.Equal(t, []string{"stimulant"}, sub.Class.Psychoactive)
	assert.Equal(t, []string{"Alcohol", "Cocaine"}, sub.DangerousInteractions)

	require.Len(t, sub.Roas, 1)
	assert.Equal(t, "oral", string(sub.Roas[0].Name))
}

func TestParseSubstance_RoaMapMatchesRoasList(t *testing.T) {
	sub := ParseSubstance("Example", "url", scenarioPairs())
	for key, roa := range sub.Roa {
		found := false
		for _, r := range sub.Roas {
			if r.Name == key {
				assert.Equal(t, key, r.Name)
				found = true
			}
		}
		assert.True(t, found, "every key in Roa must appear in Roas with matching name")
		_ = roa
	}
}

func TestParseSubstance_Idempotent(t *testing.T) {
	pairs := scenarioPairs()
	a := ParseSubstance("Example", "url", pairs)
	b := ParseSubstance("Example", "url", pairs)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("parser is not idempotent (-first +second):\n%s", diff)
	}
}

func TestParseSubstance_UnknownROADropped(t *testing.T) {
	sub := ParseSubstance("Example", "url", []smw.Pair{
		{Property: "unknownroa_common_min_dose", Value: 5.0},
	})
	assert.Empty(t, sub.Roas)
	assert.Empty(t, sub.Roa)
}

func TestParseSubstance_BioavailabilityAndThresholdHeavy(t *testing.T) {
	sub := ParseSubstance("Example", "url", []smw.Pair{
		{Property: "oral_min_bioavailability", Value: 10.0},
		{Property: "oral_max_bioavailability", Value: 30.0},
		{Property: "oral_threshold_dose", Value: 5.0},
		{Property: "oral_heavy_dose", Value: 50.0},
	})

	require.NotNil(t, sub.Roa["oral"].Bioavailability)
	assert.Equal(t, 10.0, sub.Roa["oral"].Bioavailability.Min)
	assert.Equal(t, 30.0, sub.Roa["oral"].Bioavailability.Max)
	require.NotNil(t, sub.Roa["oral"].Dose.Threshold)
	assert.Equal(t, 5.0, *sub.Roa["oral"].Dose.Threshold)
	require.NotNil(t, sub.Roa["oral"].Dose.Heavy)
	assert.Equal(t, 50.0, *sub.Roa["oral"].Dose.Heavy)
}

func TestSanitizeString_FixedPointOnPlainText(t *testing.T) {
	plain := "this is plain prose with no markup at all"
	assert.Equal(t, plain, SanitizeString(plain))
}

func TestSanitizeString_LinkAndLabel(t *testing.T) {
	assert.Equal(t, "display text", SanitizeString("[[Target Page|display text]]"))
	assert.Equal(t, "Target Page", SanitizeString("[[Target Page]]"))
}

func TestSanitizeString_SubSup(t *testing.T) {
	assert.Equal(t, "H2O", SanitizeString("H<sub>2</sub>O"))
	assert.Equal(t, "x2", SanitizeString("x<sup>2</sup>"))
}

func TestSanitize_PassthroughNonString(t *testing.T) {
	assert.Equal(t, 42.0, Sanitize(42.0))
}

func TestCleanTag(t *testing.T) {
	assert.Equal(t, "serotonin syndrome", cleanTag("serotonin_syndrome#"))
}

func TestParseSubstance_CrossToleranceKeepsFullLinkText(t *testing.T) {
	sub := ParseSubstance("Example", "url", []smw.Pair{
		{Property: "cross-tolerance", Value: "[[Dextromethorphan|DXM]] and [[Ketamine]]"},
	})
	assert.Equal(t, []string{"Dextromethorphan|DXM", "Ketamine"}, sub.CrossTolerances)
}
