package plebiscite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilter_NilSubstanceMeansNoFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, buildFilter(nil))
}

func TestBuildFilter_SubstanceSet(t *testing.T) {
	substance := "LSD"
	assert.Equal(t, bson.M{"substanceInfo.substance": "LSD"}, buildFilter(&substance))
}
