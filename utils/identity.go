package utils

import (
	"regexp"
	"strings"

	"github.com/labguard/labguard-backend/dto"
)

// How many lines below a label may hold its value when the value is not on
// the label line itself (multi-column layouts flatten that way).
const identityLookahead = 5

var (
	nameLabelRE    = regexp.MustCompile(`(?i)ime\s+i\s+prezime`)
	nameSameLineRE = regexp.MustCompile(`(?i)ime\s+i\s+prezime:\s*([^0-9\n]+?)(?:\s+lab\s+broj|$)`)

	dobLabelRE    = regexp.MustCompile(`(?i)datum\s+ro[đd]enja`)
	dobSameLineRE = regexp.MustCompile(`(?i)datum\s+ro[đd]enja:\s*(\d{2}\.\d{2}\.\d{4}\.?)`)

	sexLabelRE    = regexp.MustCompile(`(?i)pol:`)
	sexSameLineRE = regexp.MustCompile(`(?i)pol:\s*([mžzf])(?:[\s.,;]|$)`)
	sexBareRE     = regexp.MustCompile(`(?i)^([mžzf])(?:[\s.,;]|$)`)

	// Labels that must not be captured as a name during lookahead.
	labNumberRE      = regexp.MustCompile(`(?i)lab\s+broj`)
	sexLabelPrefixRE = regexp.MustCompile(`(?i)^pol:`)
	reportTitleRE    = regexp.MustCompile(`(?i)laboratorijski\s+nalaz`)

	hasDigitRE    = regexp.MustCompile(`\d`)
	multiSpacesRE = regexp.MustCompile(`\s+`)
)

// ExtractIdentity recovers patient name, date of birth and sex from
// normalized report text. Each field is label-anchored: same-line capture
// first, then up to identityLookahead subsequent lines, skipping lines that
// are themselves other known labels. First successful match per field wins;
// an unmatched document yields an all-empty identity, never an error.
func ExtractIdentity(text string) dto.PersonIdentity {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(l); s != "" {
			lines = append(lines, s)
		}
	}

	var id dto.PersonIdentity

	for i, line := range lines {
		if id.Name == "" && nameLabelRE.MatchString(line) {
			if m := nameSameLineRE.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
				id.Name = strings.TrimSpace(m[1])
			} else {
				id.Name = lookaheadName(lines, i)
			}
		}

		if id.DateOfBirth == "" && dobLabelRE.MatchString(line) {
			if m := dobSameLineRE.FindStringSubmatch(line); m != nil {
				id.DateOfBirth = strings.TrimSuffix(strings.TrimSpace(m[1]), ".")
			} else {
				id.DateOfBirth = lookaheadDate(lines, i)
			}
		}

		if id.Sex == "" && sexLabelRE.MatchString(line) {
			if m := sexSameLineRE.FindStringSubmatch(line); m != nil {
				id.Sex = strings.ToUpper(m[1])
			} else {
				id.Sex = lookaheadSex(lines, i)
			}
		}
	}

	return id
}

func lookaheadName(lines []string, labelIdx int) string {
	for j := labelIdx + 1; j < min(labelIdx+1+identityLookahead, len(lines)); j++ {
		cand := lines[j]
		if labNumberRE.MatchString(cand) || dobLabelRE.MatchString(cand) ||
			sexLabelPrefixRE.MatchString(cand) || reportTitleRE.MatchString(cand) {
			continue
		}
		if !hasDigitRE.MatchString(cand) && !strings.Contains(cand, ":") {
			return cand
		}
	}
	return ""
}

func lookaheadDate(lines []string, labelIdx int) string {
	for j := labelIdx + 1; j < min(labelIdx+1+identityLookahead, len(lines)); j++ {
		if m := bareDateRE.FindStringSubmatch(lines[j]); m != nil {
			return m[1]
		}
	}
	return ""
}

func lookaheadSex(lines []string, labelIdx int) string {
	for j := labelIdx + 1; j < min(labelIdx+1+identityLookahead, len(lines)); j++ {
		if m := sexBareRE.FindStringSubmatch(lines[j]); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// IdentitiesCompatible applies the owner-matching rule: for name and date
// of birth, a missing side is compatible with anything; present sides must
// be equal (name case/whitespace-insensitively, DOB exactly). Sex is
// deliberately excluded — its abbreviation varies too much between labs to
// reject on. A completely empty identity therefore matches everyone; that
// leniency is intentional.
func IdentitiesCompatible(a, b dto.PersonIdentity) bool {
	sameName := a.Name == "" || b.Name == "" || normalizeName(a.Name) == normalizeName(b.Name)
	sameDob := a.DateOfBirth == "" || b.DateOfBirth == "" || a.DateOfBirth == b.DateOfBirth
	return sameName && sameDob
}

// MergeIdentity fills absent fields of base from other. Callers must check
// IdentitiesCompatible first.
func MergeIdentity(base, other dto.PersonIdentity) dto.PersonIdentity {
	if base.Name == "" {
		base.Name = other.Name
	}
	if base.DateOfBirth == "" {
		base.DateOfBirth = other.DateOfBirth
	}
	if base.Sex == "" {
		base.Sex = other.Sex
	}
	return base
}

func normalizeName(s string) string {
	return multiSpacesRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}
