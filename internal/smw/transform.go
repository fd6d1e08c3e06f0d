// Package smw normalizes the upstream Semantic MediaWiki "browsebysubject"
// payload into (property name, typed value) pairs, the raw material the
// wikitext/property parser dispatches on.
package smw

import (
	"strconv"
	"strings"
)

// DataItem is one raw {type, item} entry from a browsebysubject property's
// dataitem list.
type DataItem struct {
	Type int
	Item string
}

// Property is one raw property entry from the upstream payload.
type Property struct {
	Property  string
	DataItems []DataItem
}

// Payload is the decoded shape of action=browsebysubject's query object.
type Payload struct {
	Subject string
	Data    []Property
}

// Pair is a normalized (property name, typed value) pair. Value is one of
// nil, float64, string, or []any when the property carried more than one
// dataitem.
type Pair struct {
	Property string
	Value    any
}

// Transform strips the SMW subject prefix, skips internal properties
// (names beginning with "_"), types each dataitem by its integer tag, and
// normalizes arity: a single dataitem yields a scalar, more than one
// yields a slice, and none yields nil.
func Transform(p Payload) (subject string, pairs []Pair) {
	subject = stripPrefix(p.Subject)

	pairs = make([]Pair, 0, len(p.Data))
	for _, prop := range p.Data {
		if len(prop.Property) > 0 && prop.Property[0] == '_' {
			continue
		}

		values := make([]any, 0, len(prop.DataItems))
		for _, item := range prop.DataItems {
			values = append(values, typeItem(item))
		}

		pairs = append(pairs, Pair{
			Property: prop.Property,
			Value:    collapse(values),
		})
	}

	return subject, pairs
}

func collapse(values []any) any {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}

// typeItem converts one dataitem into its Go-typed value per its integer
// tag: 1 is a number (parsed as float64), 9 is a property reference
// (prefix-stripped string), and 2 plus any unrecognized tag is passed
// through as a raw string.
func typeItem(item DataItem) any {
	switch item.Type {
	case 1:
		f, err := strconv.ParseFloat(item.Item, 64)
		if err != nil {
			return item.Item
		}
		return f
	case 9:
		return stripPrefix(item.Item)
	default:
		return item.Item
	}
}

// stripPrefix strips SMW's DIWikiPage serialization down to its DBKEY,
// discarding the trailing "#NS#" (and any "#IW#SUBOBJECT" beyond it), e.g.
// "Alcohol#0#" becomes "Alcohol".
func stripPrefix(s string) string {
	return strings.SplitN(s, "#", 2)[0]
}
