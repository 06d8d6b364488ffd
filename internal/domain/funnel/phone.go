package funnel

import "strings"

// PhoneDigitLength is the canonical length of a normalized phone number
const PhoneDigitLength = 10

// NormalizePhone reduces a free-form phone number to its canonical digit form.
// All non-digit characters are stripped and a leading country-code "1" is
// removed when present. The result is valid only at exactly ten digits.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == PhoneDigitLength+1 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits, len(digits) == PhoneDigitLength
}
