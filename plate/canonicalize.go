// Package plate validates and normalizes raw OCR output against a strict
// license plate grammar, correcting commonly confused glyphs per position.
package plate

import "strings"

// Class is the character class a grammar position expects
type Class int

const (
	// Letter positions accept A-Z
	Letter Class = iota
	// Digit positions accept 0-9
	Digit
)

// CanonicalizerParams defines the struct containing the plate grammar and
// glyph confusion tables used for canonicalization.  Both are configuration
// data so regional plate formats are a configuration change, not a rewrite.
type CanonicalizerParams struct {
	// Grammar lists the expected character class at each plate position,
	// its length is the required plate length
	Grammar []Class
	// DigitToLetter maps digit-shaped glyphs misread in letter positions
	// to the letter they usually stand for
	DigitToLetter map[rune]rune
	// LetterToDigit maps letter-shaped glyphs misread in digit positions
	// to the digit they usually stand for
	LetterToDigit map[rune]rune
}

// DefaultParams returns parameters for the UK style seven character format
// of two letters, two digits and three letters with the stock confusion
// tables used to train against noisy OCR output
func DefaultParams() CanonicalizerParams {
	return CanonicalizerParams{
		Grammar: []Class{Letter, Letter, Digit, Digit, Letter, Letter, Letter},
		DigitToLetter: map[rune]rune{
			'0': 'O',
			'1': 'I',
			'2': 'Z',
			'5': 'S',
			'6': 'G',
			'8': 'B',
		},
		LetterToDigit: map[rune]rune{
			'O': '0',
			'Q': '0',
			'D': '0',
			'I': '1',
			'L': '1',
			'J': '1',
			'Z': '2',
			'S': '5',
			'G': '6',
			'B': '8',
		},
	}
}

// Canonicalizer validates raw recognized strings against the configured
// grammar and corrects per-position character class confusions
type Canonicalizer struct {
	Params CanonicalizerParams
}

// NewCanonicalizer returns a Canonicalizer instance for the given
// parameters
func NewCanonicalizer(p CanonicalizerParams) *Canonicalizer {
	return &Canonicalizer{
		Params: p,
	}
}

// Canonicalize validates a raw recognized string and returns the corrected
// plate number, uppercased with no separators.  The input is stripped of
// separators and case first, then must match the grammar length exactly.
// Each position either already satisfies its character class or is mapped
// through the confusion table for that direction; any position satisfying
// neither rejects the whole string.  Rejection is a routine filtering
// outcome, not an error, so the second return value reports acceptance.
func (c *Canonicalizer) Canonicalize(raw string) (string, bool) {
	text := normalize(raw)

	if len(text) != len(c.Params.Grammar) {
		return "", false
	}

	out := make([]rune, 0, len(text))

	for i, r := range text {
		switch c.Params.Grammar[i] {
		case Letter:
			if r >= 'A' && r <= 'Z' {
				out = append(out, r)
				continue
			}

			if sub, ok := c.Params.DigitToLetter[r]; ok {
				out = append(out, sub)
				continue
			}

			return "", false

		case Digit:
			if r >= '0' && r <= '9' {
				out = append(out, r)
				continue
			}

			if sub, ok := c.Params.LetterToDigit[r]; ok {
				out = append(out, sub)
				continue
			}

			return "", false
		}
	}

	return string(out), true
}

// normalize uppercases the raw string and strips the separator and
// punctuation noise OCR tends to pick up around plate characters
func normalize(raw string) string {
	raw = strings.ToUpper(raw)

	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}
