package model

// ErowidExperience is one Erowid experience-report document, as stored by
// the external Plebiscite MongoDB collection and surfaced, unmodified,
// through the optional `erowid` root query.
type ErowidExperience struct {
	Title         string              `bson:"title"`
	Text          string              `bson:"text"`
	Meta          ErowidMeta          `bson:"meta"`
	SubstanceInfo ErowidSubstanceInfo `bson:"substanceInfo"`
}

// ErowidMeta carries the report's publication metadata; documents are
// sorted by Published descending.
type ErowidMeta struct {
	Published int64   `bson:"published"`
	Author    string  `bson:"author"`
	Gender    *string `bson:"gender,omitempty"`
	Age       *string `bson:"age,omitempty"`
}

// ErowidSubstanceInfo names the substance(s) the report discusses.
type ErowidSubstanceInfo struct {
	Substance string `bson:"substance"`
}
