package pii

import (
	"context"
	"regexp"
)

// PhoneSource is the detector id attached to heuristic phone matches.
const PhoneSource = "phone_heuristic"

// phoneConfidence is fixed: the rules are structural, no probabilistic
// score is computed.
const phoneConfidence = 0.9

// Pattern order matters: specific Singapore formats before generic
// digit runs. Overlapping matches from different patterns are kept and
// collapsed later by the ensemble merge.
var phonePatterns = []*regexp.Regexp{
	// Singapore mobile (8 digits starting with 8 or 9)
	regexp.MustCompile(`\b[89]\d{7}\b`),
	// Singapore landline (8 digits starting with 6)
	regexp.MustCompile(`\b6\d{7}\b`),
	// International formats
	regexp.MustCompile(`\+65\s?[689]\d{7}`),
	regexp.MustCompile(`\(\+65\)\s?[689]\d{7}`),
	// US numbers (10 digits)
	regexp.MustCompile(`\b\d{10}\b`),
	// Generic 8-digit runs
	regexp.MustCompile(`\b\d{8}\b`),
	// 11-digit 65-prefixed without the plus
	regexp.MustCompile(`\b65[689]\d{7}\b`),
}

// PhoneDetector finds phone numbers in continuous digit streams using
// regex candidates re-validated by length and leading-digit rules.
type PhoneDetector struct{}

func NewPhoneDetector() PhoneDetector { return PhoneDetector{} }

func (PhoneDetector) Name() string { return PhoneSource }

func (PhoneDetector) Detect(_ context.Context, text string) ([]Entity, error) {
	var out []Entity
	for _, pat := range phonePatterns {
		for _, loc := range pat.FindAllStringIndex(text, -1) {
			num := text[loc[0]:loc[1]]
			if !validPhone(num) {
				continue
			}
			out = append(out, Entity{
				Kind:       "PHONE_NUMBER",
				Text:       num,
				Confidence: phoneConfidence,
				Start:      loc[0],
				End:        loc[1],
				Source:     PhoneSource,
			})
		}
	}
	return out, nil
}

// validPhone applies the structural rules the patterns alone cannot
// express. Candidates with a +65 prefix fail here on length; the bare
// digit run inside them is caught by the generic patterns instead.
func validPhone(num string) bool {
	switch {
	case len(num) == 8:
		return num[0] == '6' || num[0] == '8' || num[0] == '9'
	case len(num) == 10 && num[0] == '6' && num[1] == '5':
		return num[2] == '6' || num[2] == '8' || num[2] == '9'
	case len(num) == 10:
		// US format
		return true
	}
	return false
}
