// Package signatures implements content annotation: keyword and regex matching
// plus the fixed table of sensitive-content heuristics.
package signatures

import (
	"regexp"
	"sort"
	"strings"

	"github.com/FarhamAghdasi/send-ai/internal/filter"
	"github.com/FarhamAghdasi/send-ai/pkg/models"
)

// MaxRecordedMatches caps keyword positions and regex spans kept per file
const MaxRecordedMatches = 256

// Matcher evaluates decoded file text. It holds no mutable state and is safe
// for concurrent use.
type Matcher struct {
	db              *models.SignatureDatabase
	keyword         string
	keywordRequired bool
	regex           *regexp.Regexp
	regexRequired   bool
}

// NewMatcher creates a matcher for the keyword and regex of cfg and the given
// heuristics table
func NewMatcher(db *models.SignatureDatabase, cfg *filter.Config) *Matcher {
	return &Matcher{
		db:              db,
		keyword:         cfg.Keyword(),
		keywordRequired: cfg.KeywordRequired(),
		regex:           cfg.Regex(),
		regexRequired:   cfg.RegexRequired(),
	}
}

// Match annotates text. Keyword matching is a case-sensitive substring test.
// Sensitive heuristics always run, independent of keyword and regex.
func (m *Matcher) Match(text string) models.MatchResult {
	var res models.MatchResult

	if m.keyword != "" {
		res.KeywordPositions, res.Truncated = keywordPositions(text, m.keyword)
		res.KeywordFound = len(res.KeywordPositions) > 0
	}

	if m.regex != nil {
		spans, truncated := regexSpans(text, m.regex)
		res.RegexMatches = spans
		res.Truncated = res.Truncated || truncated
	}

	if m.db != nil {
		res.Sensitive = m.sensitive(text)
	}

	return res
}

// Admits applies the inclusion policies to a match result. The reason is empty
// when the file is admitted.
func (m *Matcher) Admits(res models.MatchResult) (bool, string) {
	if m.keywordRequired && !res.KeywordFound {
		return false, "keyword " + quote(m.keyword) + " not found"
	}
	if m.regexRequired && !res.RegexMatched() {
		return false, "pattern " + quote(m.regex.String()) + " did not match"
	}
	return true, ""
}

// sensitive returns the sorted ids of all heuristics that match
func (m *Matcher) sensitive(text string) []string {
	var ids []string
	for _, sig := range m.db.Signatures {
		if matchSignature(sig, text) {
			ids = append(ids, sig.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

func matchSignature(sig *models.Signature, text string) bool {
	if sig.MinEntropy <= 0 {
		return sig.CompiledRe.MatchString(text)
	}

	// Entropy-gated signatures need the literal in capture group 1
	for _, idx := range sig.CompiledRe.FindAllStringSubmatchIndex(text, -1) {
		if len(idx) < 4 || idx[2] < 0 {
			continue
		}
		if CalculateEntropy(text[idx[2]:idx[3]]) >= sig.MinEntropy {
			return true
		}
	}
	return false
}

func keywordPositions(text, keyword string) ([]int, bool) {
	var positions []int
	offset := 0
	for {
		i := strings.Index(text[offset:], keyword)
		if i < 0 {
			return positions, false
		}
		if len(positions) == MaxRecordedMatches {
			return positions, true
		}
		positions = append(positions, offset+i)
		offset += i + len(keyword)
	}
}

func regexSpans(text string, re *regexp.Regexp) ([]models.Span, bool) {
	all := re.FindAllStringSubmatchIndex(text, MaxRecordedMatches+1)
	truncated := len(all) > MaxRecordedMatches
	if truncated {
		all = all[:MaxRecordedMatches]
	}

	spans := make([]models.Span, 0, len(all))
	line, lineOffset := 1, 0
	for _, idx := range all {
		// Matches arrive in order, so line counting resumes from the previous span
		line += strings.Count(text[lineOffset:idx[0]], "\n")
		lineOffset = idx[0]

		span := models.Span{
			Start: idx[0],
			End:   idx[1],
			Line:  line,
			Text:  text[idx[0]:idx[1]],
		}
		for g := 2; g+1 < len(idx); g += 2 {
			if idx[g] < 0 {
				span.Captures = append(span.Captures, "")
				continue
			}
			span.Captures = append(span.Captures, text[idx[g]:idx[g+1]])
		}
		spans = append(spans, span)
	}
	return spans, truncated
}

func quote(s string) string {
	return `"` + s + `"`
}
