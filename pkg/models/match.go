package models

// Span is one regex match: byte offsets into the decoded text plus its capture groups
type Span struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Line     int      `json:"line"` // 1-based line of Start
	Text     string   `json:"text"`
	Captures []string `json:"captures,omitempty"`
}

// MatchResult is the content annotation produced for a decoded file
type MatchResult struct {
	KeywordFound     bool     `json:"keyword_found"`
	KeywordPositions []int    `json:"keyword_positions,omitempty"`
	RegexMatches     []Span   `json:"regex_matches,omitempty"`
	Sensitive        []string `json:"sensitive,omitempty"` // Sorted ids of matched heuristics
	Truncated        bool     `json:"truncated,omitempty"` // Keyword or regex hits beyond the recording cap
}

// RegexMatched reports whether the user pattern produced at least one span
func (m MatchResult) RegexMatched() bool {
	return len(m.RegexMatches) > 0
}
