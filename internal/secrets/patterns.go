package secrets

import "regexp"

// Match types reported by the scanner.
const (
	TypeAPIKey       = "api_key"
	TypeAWSAccessKey = "aws_access_key"
	TypePrivateKey   = "private_key"
	TypePassword     = "password"
	TypeGithubToken  = "github_token"
	TypeEmail        = "email"
	TypeCreditCard   = "credit_card"
)

// Pattern defines one named detection with a classification type and a
// human description. Patterns are applied in order; an earlier pattern
// claims its span on the line before later ones run.
type Pattern struct {
	Name        string
	Type        string
	Regex       *regexp.Regexp
	Description string

	// MinLength drops matches shorter than this many bytes. Used by the
	// generic key pattern to cut down on identifier noise.
	MinLength int

	// RequireDigitAndLetter drops matches that are not a mix of letters
	// and digits, another identifier-noise heuristic.
	RequireDigitAndLetter bool

	// HighConfidence marks patterns precise enough that a match is
	// almost certainly a real credential. Low-confidence patterns
	// (emails, card-shaped digit runs, long alphanumeric runs) are
	// advisory: they show up in scan reports and get redacted, but they
	// do not block a write on their own, since commit hashes, base64
	// digests and author emails are everyday file content.
	HighConfidence bool
}

// DefaultPatterns returns the ordered default detection set.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:           "private_key_marker",
			Type:           TypePrivateKey,
			Regex:          regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),
			Description:    "PEM private key marker",
			HighConfidence: true,
		},
		{
			Name:           "aws_access_key",
			Type:           TypeAWSAccessKey,
			Regex:          regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
			Description:    "AWS access key ID",
			HighConfidence: true,
		},
		{
			Name:           "github_token",
			Type:           TypeGithubToken,
			Regex:          regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36}\b`),
			Description:    "GitHub personal access token",
			HighConfidence: true,
		},
		{
			Name:           "password_assignment",
			Type:           TypePassword,
			Regex:          regexp.MustCompile(`(?i)\b(password|passwd|pwd)["']?\s*[:=]\s*["']?[^\s"']{4,}`),
			Description:    "password key/value assignment",
			HighConfidence: true,
		},
		{
			Name:           "api_key_assignment",
			Type:           TypeAPIKey,
			Regex:          regexp.MustCompile(`(?i)\b(api[_-]?key|apikey|secret|token)["']?\s*[:=]\s*["']?[A-Za-z0-9_\-.]{8,}`),
			Description:    "api key / secret / token assignment",
			HighConfidence: true,
		},
		{
			Name:        "email",
			Type:        TypeEmail,
			Regex:       regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
			Description: "email address",
		},
		{
			Name:        "credit_card",
			Type:        TypeCreditCard,
			Regex:       regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}\b`),
			Description: "16-digit card number",
		},
		{
			Name:                  "generic_api_key",
			Type:                  TypeAPIKey,
			Regex:                 regexp.MustCompile(`\b[A-Za-z0-9_\-]{20,}\b`),
			Description:           "long alphanumeric run",
			MinLength:             20,
			RequireDigitAndLetter: true,
		},
	}
}
