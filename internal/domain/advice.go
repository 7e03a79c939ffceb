package domain

// MatchResult is a pairing proposed by the language model. It is never
// persisted, and its IDs are untrusted until resolved against known posts.
type MatchResult struct {
	DemandID        string  `json:"demandId"`
	RentalID        string  `json:"rentalId"`
	Reasoning       string  `json:"reasoning"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// Match is a MatchResult whose references resolved to real posts.
type Match struct {
	Demand          DemandPost `json:"demand"`
	Rental          RentalPost `json:"rental"`
	Reasoning       string     `json:"reasoning"`
	ConfidenceScore float64    `json:"confidence_score"`
}

// SourceKind identifies where a grounding citation came from.
type SourceKind string

const (
	SourceKindWeb  SourceKind = "web"
	SourceKindMaps SourceKind = "maps"
)

// GroundingSource is a citation attached by the upstream model to a generated answer.
type GroundingSource struct {
	Kind  SourceKind `json:"kind"`
	Title string     `json:"title"`
	URI   string     `json:"uri"`
}

// IdeaReport is the Markdown business-idea analysis for a location.
// Sources may be empty; that is a valid report.
type IdeaReport struct {
	Markdown    string            `json:"markdown"`
	Sources     []GroundingSource `json:"sources"`
	DeepDive    bool              `json:"deep_dive"`
	DemandCount int               `json:"demand_count"`
}
