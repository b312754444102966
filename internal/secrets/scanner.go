// Package secrets detects and redacts sensitive content before it is
// persisted or transmitted.
package secrets

import (
	"strings"
	"unicode"
)

// Match is one retained detection.
type Match struct {
	// Type is the classification tag (TypeAPIKey, TypePassword, ...).
	Type string `json:"type"`

	// Value is the matched substring.
	Value string `json:"value"`

	// Line is the 1-based line number of the match.
	Line int `json:"line"`

	// Column is the 1-based byte column of the match within its line.
	Column int `json:"column"`

	// Pattern is the human description of the pattern that fired.
	Pattern string `json:"pattern"`

	// HighConfidence reports whether the firing pattern is precise
	// enough to treat the match as a real credential rather than an
	// advisory heuristic hit.
	HighConfidence bool `json:"high_confidence"`
}

// Result aggregates the matches of one scan. RedactedText is only
// populated by Redact.
type Result struct {
	HasSecrets   bool    `json:"has_secrets"`
	Matches      []Match `json:"matches"`
	RedactedText string  `json:"redacted_text,omitempty"`
}

// HighConfidenceMatches returns the subset of matches from patterns
// precise enough to block persistence outright.
func (r *Result) HighConfidenceMatches() []Match {
	var out []Match
	for _, m := range r.Matches {
		if m.HighConfidence {
			out = append(out, m)
		}
	}
	return out
}

// Scanner applies an ordered pattern list line by line, filtering raw
// matches through a false-positive filter before recording them.
type Scanner struct {
	patterns []Pattern
}

// NewScanner creates a scanner with the default pattern set.
func NewScanner() *Scanner {
	return &Scanner{patterns: DefaultPatterns()}
}

// NewScannerWithPatterns creates a scanner with a custom pattern set.
func NewScannerWithPatterns(patterns []Pattern) *Scanner {
	return &Scanner{patterns: patterns}
}

// Scan detects secrets in text. Matches are ordered top-to-bottom,
// left-to-right.
func (s *Scanner) Scan(text string) *Result {
	result := &Result{}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		result.Matches = append(result.Matches, s.scanLine(line, i+1)...)
	}

	result.HasSecrets = len(result.Matches) > 0
	return result
}

// Redact detects secrets and replaces each retained match with a token
// naming its classification, e.g. [REDACTED_PASSWORD]. Replacements are
// applied bottom-to-top, right-to-left so earlier replacements never
// shift the offsets of later ones. The line count is preserved.
func (s *Scanner) Redact(text string) *Result {
	result := s.Scan(text)

	lines := strings.Split(text, "\n")
	for i := len(result.Matches) - 1; i >= 0; i-- {
		m := result.Matches[i]
		line := lines[m.Line-1]
		start := m.Column - 1
		end := start + len(m.Value)
		if start < 0 || end > len(line) {
			continue
		}
		lines[m.Line-1] = line[:start] + redactionToken(m.Type) + line[end:]
	}

	result.RedactedText = strings.Join(lines, "\n")
	return result
}

// scanLine applies each pattern in order. A span already claimed by an
// earlier pattern is not reported again.
func (s *Scanner) scanLine(line string, lineNum int) []Match {
	var matches []Match
	type span struct{ start, end int }
	var claimed []span

	overlaps := func(start, end int) bool {
		for _, c := range claimed {
			if start < c.end && end > c.start {
				return true
			}
		}
		return false
	}

	for _, pattern := range s.patterns {
		for _, loc := range pattern.Regex.FindAllStringIndex(line, -1) {
			start, end := loc[0], loc[1]
			if overlaps(start, end) {
				continue
			}
			value := line[start:end]
			if isFalsePositive(pattern, value) {
				continue
			}
			claimed = append(claimed, span{start, end})
			matches = append(matches, Match{
				Type:           pattern.Type,
				Value:          value,
				Line:           lineNum,
				Column:         start + 1,
				Pattern:        pattern.Description,
				HighConfidence: pattern.HighConfidence,
			})
		}
	}

	// Patterns run in priority order, so re-sort matches into document
	// order for the redaction pass.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j-1].Column > matches[j].Column; j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}

	return matches
}

// Known placeholder strings that are never real secrets.
var placeholders = map[string]bool{
	"example.com":       true,
	"test@test.com":     true,
	"your_api_key_here": true,
}

// isFalsePositive drops placeholder and documentation values.
func isFalsePositive(pattern Pattern, value string) bool {
	lower := strings.ToLower(value)

	if placeholders[lower] {
		return true
	}
	for _, marker := range []string{"example", "placeholder", "your_", "xxx"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	if pattern.MinLength > 0 && len(value) < pattern.MinLength {
		return true
	}
	if pattern.RequireDigitAndLetter && !hasDigitAndLetter(value) {
		return true
	}

	return false
}

func hasDigitAndLetter(s string) bool {
	var digit, letter bool
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
		}
	}
	return digit && letter
}

func redactionToken(matchType string) string {
	return "[REDACTED_" + strings.ToUpper(matchType) + "]"
}
