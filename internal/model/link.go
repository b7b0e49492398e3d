package model

// CandidateLink is a URL discovered on a page together with the relevance
// score assigned by the prioritizer. Candidates are immutable once scored;
// the score is the ordering key for scheduling (descending, stable on ties).
type CandidateLink struct {
	// URL is the absolute candidate URL as discovered.
	URL string `json:"url"`

	// Score is the heuristic relevance score. Negative scores are valid
	// and simply sort last; they do not exclude the link from crawling.
	Score int `json:"score"`
}
