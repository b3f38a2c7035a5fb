package rag

import (
	"regexp"
	"strings"
)

// MaskedFlag replaces every redacted marker.
const MaskedFlag = "flag{****}"

var flagPattern = regexp.MustCompile(`(?i)flag\{[^}]+\}`)

// Redactor masks secret markers in generated text. It runs regardless of
// whether the model obeyed its instructions.
type Redactor struct {
	marker string
}

// NewRedactor returns a Redactor that masks flag{...} shapes and, when set,
// every literal occurrence of marker.
func NewRedactor(marker string) *Redactor {
	return &Redactor{marker: marker}
}

// Redact replaces each case-insensitive flag{...} match with MaskedFlag.
func (r *Redactor) Redact(text string) string {
	masked := 0
	text = flagPattern.ReplaceAllStringFunc(text, func(match string) string {
		if match != MaskedFlag {
			masked++
		}
		return MaskedFlag
	})
	if r.marker != "" && r.marker != MaskedFlag {
		if n := strings.Count(text, r.marker); n > 0 {
			masked += n
			text = strings.ReplaceAll(text, r.marker, MaskedFlag)
		}
	}
	if masked > 0 {
		RedactionsTotal.Add(float64(masked))
	}
	return text
}
