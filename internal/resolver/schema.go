package resolver

import "strings"

// queryTypeTemplate leaves a placeholder for the erowid field, which is
// present only when the Plebiscite feature is enabled — so that querying
// `erowid` while the feature is disabled fails GraphQL schema validation
// ("field does not exist") rather than hitting a runtime nil-resolver
// branch, matching the Feature-disabled error kind's contract.
const queryTypeTemplate = `
type Query {
	substances(query: String, effect: [String!], chemicalClass: String, psychoactiveClass: String, limit: Int = 10, offset: Int = 0): [Substance!]!
	substancesByEffect(effect: [String!]!, limit: Int = 50, offset: Int = 0): [Substance!]!
	effectsBySubstance(substance: String!, limit: Int = 50, offset: Int = 0): [Effect!]!
	effects(limit: Int = 50, offset: Int = 0): [Effect!]!
	experiences(substance: String, substancesByEffect: [String!], effectsBySubstance: String): [Experience!]!
	%s
}
`

const erowidQueryField = `erowid(substance: String, limit: Int = 50, offset: Int = 0): [Erowid!]`

const restOfSchema = `
schema {
	query: Query
}

type Substance {
	name: String!
	url: String!
	featured: Boolean
	class: SubstanceClass!
	tolerance: SubstanceTolerance!
	roas: [SubstanceRoa!]!
	roa: SubstanceRoaTypes!
	addictionPotential: String
	toxicity: [String!]!
	crossTolerances: [String!]!
	commonNames: [String!]!
	systematicName: String
	uncertainInteractions: [Substance!]!
	unsafeInteractions: [Substance!]!
	dangerousInteractions: [Substance!]!
	summary: String
	images: [SubstanceImage!]
	effects: [Effect!]!
}

type SubstanceClass {
	chemical: [String!]!
	psychoactive: [String!]!
}

type SubstanceTolerance {
	full: String
	half: String
	zero: String
}

type SubstanceRoa {
	name: String!
	dose: SubstanceRoaDose!
	duration: SubstanceRoaDuration!
	bioavailability: SubstanceRoaRange
}

type SubstanceRoaTypes {
	oral: SubstanceRoa
	sublingual: SubstanceRoa
	buccal: SubstanceRoa
	insufflated: SubstanceRoa
	rectal: SubstanceRoa
	transdermal: SubstanceRoa
	subcutaneous: SubstanceRoa
	intramuscular: SubstanceRoa
	intravenous: SubstanceRoa
	smoked: SubstanceRoa
}

type SubstanceRoaDose {
	units: String
	threshold: Float
	heavy: Float
	light: SubstanceRoaRange
	common: SubstanceRoaRange
	strong: SubstanceRoaRange
}

type SubstanceRoaRange {
	min: Float!
	max: Float!
}

type SubstanceRoaDuration {
	onset: SubstanceRoaDurationRange
	comeup: SubstanceRoaDurationRange
	peak: SubstanceRoaDurationRange
	offset: SubstanceRoaDurationRange
	afterglow: SubstanceRoaDurationRange
	total: SubstanceRoaDurationRange
	duration: SubstanceRoaDurationRange
}

type SubstanceRoaDurationRange {
	min: Float!
	max: Float!
	units: String!
}

type SubstanceImage {
	thumb: String!
	image: String!
}

type Effect {
	name: String!
	url: String!
	substances(limit: Int = 50): [Substance!]!
}

type Experience {
	substances: [Substance!]
	effects: [Effect!]
}
`

const erowidTypes = `
type Erowid {
	title: String!
	text: String!
	meta: ErowidMeta!
	substanceInfo: ErowidSubstanceInfo!
}

type ErowidMeta {
	published: Int!
	author: String!
	gender: String
	age: String
}

type ErowidSubstanceInfo {
	substance: String!
}
`

// Schema returns the full GraphQL SDL for this deployment: the Query
// type (with the erowid field present only when enabled) plus the rest
// of the type system, with the erowid types appended when enabled.
func Schema(plebisciteEnabled bool) string {
	erowidField := ""
	erowidExtra := ""
	if plebisciteEnabled {
		erowidField = erowidQueryField
		erowidExtra = erowidTypes
	}

	var sb strings.Builder
	sb.WriteString(strings.Replace(queryTypeTemplate, "%s", erowidField, 1))
	sb.WriteString(restOfSchema)
	sb.WriteString(erowidExtra)
	return sb.String()
}
