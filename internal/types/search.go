package types

// SearchRequest is the body of a relevance search call
type SearchRequest struct {
	Query     string         `json:"query"`
	Condition string         `json:"condition,omitempty"`
	UserType  UserType       `json:"userType,omitempty"`
	Location  string         `json:"location,omitempty"`
	Filters   map[string]any `json:"filters,omitempty"` // accepted for forwards-compatibility, unused
}

// ScoredItem is a single relevance judgement from the scoring oracle
type ScoredItem struct {
	ID     string `json:"id"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Candidate is any record the pipeline can score and enrich
type Candidate interface {
	CandidateID() string
}

// EnrichedTrial is a trial annotated with its relevance judgement
type EnrichedTrial struct {
	Trial
	MatchScore  int    `json:"matchScore"`
	MatchReason string `json:"matchReason"`
}

// EnrichedResearcher is a researcher profile annotated with its relevance judgement
type EnrichedResearcher struct {
	ResearcherProfile
	MatchScore  int    `json:"matchScore"`
	MatchReason string `json:"matchReason"`
}

// EnrichedQuestion is a forum question annotated with its relevance judgement
type EnrichedQuestion struct {
	ForumQuestion
	MatchScore  int    `json:"matchScore"`
	MatchReason string `json:"matchReason"`
}

// EnrichedPublication is a publication annotated with its relevance judgement
type EnrichedPublication struct {
	Publication
	MatchScore  int    `json:"matchScore"`
	MatchReason string `json:"matchReason"`
}

// SearchResponse holds the four enriched result collections, each sorted by
// match score descending
type SearchResponse struct {
	Trials       []EnrichedTrial       `json:"trials"`
	Researchers  []EnrichedResearcher  `json:"researchers"`
	Questions    []EnrichedQuestion    `json:"questions"`
	Publications []EnrichedPublication `json:"publications"`
}
