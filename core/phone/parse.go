package phone

import (
	apperrors "github.com/FocuswithJustin/GlobalPhone/core/errors"
	"github.com/FocuswithJustin/GlobalPhone/core/metadata"
)

// maxCallingCodeLength is the longest calling code tried when reading an
// international number.
const maxCallingCodeLength = 3

// normalize keeps only ASCII digits of text and reports whether a '+'
// appears before the first digit.
func normalize(text string) (digits string, international bool) {
	buf := make([]byte, 0, len(text))
	seenDigit := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9':
			buf = append(buf, c)
			seenDigit = true
		case c == '+' && !seenDigit:
			international = true
		}
	}
	return string(buf), international
}

func (db *Database) parse(text string, region *metadata.Region, territory *metadata.Territory) (*Number, error) {
	digits, plus := normalize(text)
	if digits == "" {
		return nil, apperrors.NewParseNumber(text, "no digits")
	}

	if plus {
		return db.parseInternational(text, digits)
	}
	if rest, ok := region.StripInternationalPrefix(digits); ok {
		return db.parseInternational(text, rest)
	}

	nsn := region.StripNationalPrefix(territory, digits)
	return newNumber(text, region, territory, nsn), nil
}

// parseInternational reads the calling code at the start of digits and
// picks the territory within that region.
func (db *Database) parseInternational(text, digits string) (*Number, error) {
	for n := 1; n <= maxCallingCodeLength && n <= len(digits); n++ {
		region, ok := db.RegionByCallingCode(digits[:n])
		if !ok {
			continue
		}
		rest := digits[n:]
		if rest == "" {
			return nil, apperrors.NewParseNumber(text, "no digits after calling code")
		}
		territory := region.TerritoryFor(rest)
		if territory == nil {
			return nil, apperrors.NewParseNumber(text, "calling code has no territories")
		}
		if !territory.IsValid(rest) {
			if stripped, ok := region.TrimNationalPrefix(territory, rest); ok {
				if alt := region.TerritoryFor(stripped); alt != nil && alt.IsValid(stripped) {
					rest, territory = stripped, alt
				}
			}
		}
		return newNumber(text, region, territory, rest), nil
	}
	return nil, apperrors.NewParseNumber(text, "unknown calling code")
}
