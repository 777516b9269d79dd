package phone

import "github.com/FocuswithJustin/GlobalPhone/core/metadata"

// Number is the result of parsing. It is immutable.
type Number struct {
	raw           string
	region        *metadata.Region
	territory     *metadata.Territory
	nsn           string
	valid         bool
	possible      bool
	national      string
	international string
}

func newNumber(raw string, region *metadata.Region, territory *metadata.Territory, nsn string) *Number {
	n := &Number{
		raw:       raw,
		region:    region,
		territory: territory,
		nsn:       nsn,
		valid:     territory.IsValid(nsn),
		possible:  territory.IsPossible(nsn),
	}

	cc := region.CountryCode()
	if f, groups, ok := region.FormatFor(nsn); ok {
		n.national = f.FormatNational(groups, territory.FormattingRule(), region.EffectiveNationalPrefix(territory))
		n.international = f.FormatInternational(groups, cc)
	} else {
		n.national = nsn
		n.international = "+" + cc + " " + nsn
	}
	return n
}

// Raw returns the text that was parsed.
func (n *Number) Raw() string { return n.raw }

// Region returns the region the number belongs to.
func (n *Number) Region() *metadata.Region { return n.region }

// Territory returns the territory the number belongs to.
func (n *Number) Territory() *metadata.Territory { return n.territory }

// CountryCode returns the calling code.
func (n *Number) CountryCode() string { return n.region.CountryCode() }

// NationalNumber returns the national significant number.
func (n *Number) NationalNumber() string { return n.nsn }

// IsValid reports whether the national number matches the territory's
// national-number pattern.
func (n *Number) IsValid() bool { return n.valid }

// IsPossible reports whether the national number has a possible shape for
// the territory.
func (n *Number) IsPossible() bool { return n.possible }

// NationalString returns the number formatted for dialling within the
// territory.
func (n *Number) NationalString() string { return n.national }

// InternationalString returns the number formatted with its calling code.
func (n *Number) InternationalString() string { return n.international }

// E164 returns "+" followed by the calling code and national number.
func (n *Number) E164() string { return "+" + n.region.CountryCode() + n.nsn }

// String returns the international form.
func (n *Number) String() string { return n.international }
