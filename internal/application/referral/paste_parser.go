package referral

import (
	"regexp"
	"strings"
)

// ParsedRow is one line of pasted text resolved into a referral candidate
type ParsedRow struct {
	Name  string
	Phone string // raw, not yet normalized
}

var (
	// trailingPhonePattern matches a phone-looking run of digits and phone
	// punctuation at the end of a line.
	trailingPhonePattern = regexp.MustCompile(`([(+]?\d[\d\s().+-]{6,}\d)\s*$`)

	// phoneLikePattern matches a field that is mostly a phone number
	phoneLikePattern = regexp.MustCompile(`^\+?[\d\s().+-]{7,}$`)

	fieldDelimiters = regexp.MustCompile(`[,\t|]`)
)

// ParsePastedText splits pasted free text into referral candidates, one per
// line. Blank lines are dropped. Each line is resolved by the first heuristic
// that applies:
//  1. a trailing phone-number pattern, with everything before it as the name;
//  2. comma, tab, or pipe delimited fields, taking the first phone-looking
//     field as the phone and the first other field as the name;
//  3. a "name - phone" dash convention;
//  4. the whole line as a name with an empty phone.
func ParsePastedText(text string) []ParsedRow {
	var rows []ParsedRow
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, parseLine(line))
	}
	return rows
}

func parseLine(line string) ParsedRow {
	if loc := trailingPhonePattern.FindStringIndex(line); loc != nil {
		name := trimFieldJunk(line[:loc[0]])
		phone := strings.TrimSpace(line[loc[0]:loc[1]])
		if name != "" {
			return ParsedRow{Name: name, Phone: phone}
		}
		// a line that is only a phone number still needs a name holder
		return ParsedRow{Name: phone, Phone: phone}
	}

	if fieldDelimiters.MatchString(line) {
		var name, phone string
		for _, field := range fieldDelimiters.Split(line, -1) {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			if phone == "" && phoneLikePattern.MatchString(field) {
				phone = field
				continue
			}
			if name == "" {
				name = field
			}
		}
		if name == "" {
			name = phone
		}
		return ParsedRow{Name: name, Phone: phone}
	}

	if before, after, found := strings.Cut(line, " - "); found {
		return ParsedRow{Name: strings.TrimSpace(before), Phone: strings.TrimSpace(after)}
	}

	return ParsedRow{Name: line}
}

// trimFieldJunk strips delimiter leftovers between a name and the phone that
// followed it, like "Maria Lopez -" or "Juan,".
func trimFieldJunk(s string) string {
	return strings.Trim(strings.TrimSpace(s), "-,|(\t ")
}
