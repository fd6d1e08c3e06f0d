package smw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransform_StripsSubjectPrefix(t *testing.T) {
	subject, _ := Transform(Payload{Subject: "Alcohol#0#"})
	assert.Equal(t, "Alcohol", subject)

	subject, _ = Transform(Payload{Subject: "Dimethyltryptamine#0#"})
	assert.Equal(t, "Dimethyltryptamine", subject)
}

func TestTransform_StripsSubjectPrefixWithSubobject(t *testing.T) {
	subject, _ := Transform(Payload{Subject: "Alcohol#0#IW#Subobject"})
	assert.Equal(t, "Alcohol", subject)
}

func TestTransform_SkipsInternalProperties(t *testing.T) {
	_, pairs := Transform(Payload{
		Data: []Property{
			{Property: "_SKEY", DataItems: []DataItem{{Type: 2, Item: "x"}}},
			{Property: "oral_common_min_dose", DataItems: []DataItem{{Type: 1, Item: "10"}}},
		},
	})
	assert.Len(t, pairs, 1)
	assert.Equal(t, "oral_common_min_dose", pairs[0].Property)
}

func TestTransform_ArityNormalization(t *testing.T) {
	_, pairs := Transform(Payload{
		Data: []Property{
			{Property: "empty", DataItems: nil},
			{Property: "single", DataItems: []DataItem{{Type: 2, Item: "a"}}},
			{Property: "multi", DataItems: []DataItem{
				{Type: 2, Item: "a"},
				{Type: 2, Item: "b"},
			}},
		},
	})

	byName := map[string]any{}
	for _, p := range pairs {
		byName[p.Property] = p.Value
	}

	assert.Nil(t, byName["empty"])
	assert.Equal(t, "a", byName["single"])
	assert.Equal(t, []any{"a", "b"}, byName["multi"])
}

func TestTransform_TypeDispatch(t *testing.T) {
	_, pairs := Transform(Payload{
		Data: []Property{
			{Property: "num", DataItems: []DataItem{{Type: 1, Item: "3.5"}}},
			{Property: "prop", DataItems: []DataItem{{Type: 9, Item: "Alcohol#0#"}}},
			{Property: "raw", DataItems: []DataItem{{Type: 2, Item: "hello"}}},
		},
	})

	byName := map[string]any{}
	for _, p := range pairs {
		byName[p.Property] = p.Value
	}

	assert.Equal(t, 3.5, byName["num"])
	assert.Equal(t, "Alcohol", byName["prop"])
	assert.Equal(t, "hello", byName["raw"])
}
