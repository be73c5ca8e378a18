// Package threatscan scores plaintext for patterns resembling sensitive data
// before submission. It is advisory only: stateless, no I/O, cheap enough to
// run on every content change. False positives and negatives are acceptable.
package threatscan

import (
	"regexp"
	"strings"

	"github.com/m-yakovlev/sealnote/internal/model"
)

// maskCap limits the length of an asterisk run in the masked preview.
const maskCap = 12

// maskThreshold is the score at which a masked preview is produced.
const maskThreshold = 70

// Rule is one independent detection pattern. Rules are evaluated uniformly
// in registry order; order only decides which alert is listed first.
type Rule struct {
	Pattern  *regexp.Regexp
	Severity model.Severity
	Category string
	Message  string
}

// rules is the default registry. Extend by appending; no rule is special-cased.
var rules = []Rule{
	{
		Pattern:  regexp.MustCompile(`\b(?:\d[ -]?){13,18}\d\b`),
		Severity: model.SeverityCritical,
		Category: "payment",
		Message:  "looks like a payment card number; sharing it in a note is risky even encrypted",
	},
	{
		Pattern:  regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH |DSA |PGP )?PRIVATE KEY(?: BLOCK)?-----`),
		Severity: model.SeverityCritical,
		Category: "credentials",
		Message:  "private key material detected; prefer a dedicated secrets channel",
	},
	{
		Pattern:  regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		Severity: model.SeverityCritical,
		Category: "credentials",
		Message:  "AWS access key id detected; rotate it if it has been shared",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\s*[:=]\s*\S+`),
		Severity: model.SeverityHigh,
		Category: "credentials",
		Message:  "plaintext password assignment detected",
	},
	{
		Pattern:  regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\b`),
		Severity: model.SeverityHigh,
		Category: "credentials",
		Message:  "bearer token (JWT) detected; tokens grant access until they expire",
	},
	{
		Pattern:  regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		Severity: model.SeverityHigh,
		Category: "identifier",
		Message:  "US social security number pattern detected",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)\b(?:api[_-]?key|secret[_-]?key|access[_-]?token)\s*[:=]\s*\S+`),
		Severity: model.SeverityMedium,
		Category: "credentials",
		Message:  "API key or token assignment detected",
	},
	{
		Pattern:  regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Severity: model.SeverityMedium,
		Category: "identifier",
		Message:  "email address detected",
	},
	{
		Pattern:  regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		Severity: model.SeverityLow,
		Category: "identifier",
		Message:  "IP address detected",
	},
	{
		Pattern:  regexp.MustCompile(`\+?\d{1,3}[ -]?\(?\d{3}\)?[ -]?\d{3}[ -]?\d{2}[ -]?\d{2}\b`),
		Severity: model.SeverityLow,
		Category: "identifier",
		Message:  "phone number pattern detected",
	},
}

// Analyze applies every rule to text and aggregates the result. The score is
// the maximum of matched severities, not a sum: one critical match dominates.
func Analyze(text string) model.ThreatAnalysis {
	var out model.ThreatAnalysis
	for _, r := range rules {
		m := r.Pattern.FindString(text)
		if m == "" {
			continue
		}
		out.Alerts = append(out.Alerts, model.ThreatAlert{
			Category: r.Category,
			Severity: r.Severity,
			Message:  r.Message,
			Match:    m,
		})
		if s := r.Severity.Score(); s > out.Score {
			out.Score = s
		}
	}
	out.Level = levelFor(out.Score)
	if out.Score >= maskThreshold {
		out.Masked = mask(text, out.Alerts)
	}
	return out
}

// levelFor re-derives the overall level from the numeric score.
func levelFor(score int) model.Severity {
	switch {
	case score >= 90:
		return model.SeverityCritical
	case score >= 70:
		return model.SeverityHigh
	case score >= 40:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// mask replaces every occurrence of each high-or-critical matched substring
// with an asterisk run capped at maskCap characters.
func mask(text string, alerts []model.ThreatAlert) string {
	for _, a := range alerts {
		if a.Severity < model.SeverityHigh || a.Match == "" {
			continue
		}
		n := len(a.Match)
		if n > maskCap {
			n = maskCap
		}
		text = strings.ReplaceAll(text, a.Match, strings.Repeat("*", n))
	}
	return text
}
