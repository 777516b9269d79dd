package metadata

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/GlobalPhone/core/errors"
	"github.com/FocuswithJustin/GlobalPhone/core/record"
)

// Region is the rule set of one calling code. Its first territory is the
// main territory for the code.
type Region struct {
	countryCode    string
	territories    []*Territory
	formats        []*Format
	interPrefix    *regexp.Regexp
	interSource    string
	nationalPrefix string
	prefixParse    *regexp.Regexp
	transformRule  string
}

// NewRegion decodes a region record together with its territories and
// formats. Patterns are compiled here, so a bad pattern fails the load.
func NewRegion(data any) (*Region, error) {
	r, err := record.New(data)
	if err != nil {
		return nil, err
	}

	g := &Region{}
	if g.countryCode, err = record.Field(r, RegionCountryCode, ""); err != nil {
		return nil, err
	}
	if g.formats, err = record.FieldArray(r, RegionFormats, NewFormat); err != nil {
		return nil, err
	}
	newTerritory := func(v any) (*Territory, error) {
		return NewTerritory(v, g.countryCode)
	}
	if g.territories, err = record.FieldArray(r, RegionTerritories, newTerritory); err != nil {
		return nil, err
	}
	if g.interSource, err = record.Field(r, RegionInterPrefix, ""); err != nil {
		return nil, err
	}
	if g.interPrefix, err = record.FieldFunc(r, RegionInterPrefix, compilePrefix); err != nil {
		return nil, err
	}
	if g.nationalPrefix, err = record.Field(r, RegionPrefix, ""); err != nil {
		return nil, err
	}
	if g.prefixParse, err = record.FieldFunc(r, RegionPrefixParse, compilePrefix); err != nil {
		return nil, err
	}
	rule, err := record.Field(r, RegionPrefixTRule, "")
	if err != nil {
		return nil, err
	}
	g.transformRule = replacementTemplate(rule)
	return g, nil
}

// CountryCode returns the calling code, e.g. "44".
func (g *Region) CountryCode() string {
	return g.countryCode
}

// Territories returns the territories in compiled order, main first.
func (g *Region) Territories() []*Territory {
	return g.territories
}

// MainTerritory returns the main territory, or nil for a region without
// territories.
func (g *Region) MainTerritory() *Territory {
	if len(g.territories) == 0 {
		return nil
	}
	return g.territories[0]
}

// Territory returns the territory named name, compared case-insensitively.
func (g *Region) Territory(name string) (*Territory, bool) {
	for _, t := range g.territories {
		if strings.EqualFold(t.name, name) {
			return t, true
		}
	}
	return nil, false
}

// HasTerritory reports whether the region declares name.
func (g *Region) HasTerritory(name string) bool {
	_, ok := g.Territory(name)
	return ok
}

// TerritoryFor returns the first territory whose national-number pattern
// fully matches nsn, else the main territory.
func (g *Region) TerritoryFor(nsn string) *Territory {
	for _, t := range g.territories {
		if t.IsValid(nsn) {
			return t
		}
	}
	return g.MainTerritory()
}

// Formats returns the formats in evaluation order.
func (g *Region) Formats() []*Format {
	return g.formats
}

// FormatFor returns the first format matching nsn with its submatches.
func (g *Region) FormatFor(nsn string) (*Format, []string, bool) {
	for _, f := range g.formats {
		if groups, ok := f.Match(nsn); ok {
			return f, groups, true
		}
	}
	return nil, nil, false
}

// InternationalPrefix returns the source of the international dialling
// prefix pattern.
func (g *Region) InternationalPrefix() string {
	return g.interSource
}

// StripInternationalPrefix removes the international dialling prefix from
// the start of digits.
func (g *Region) StripInternationalPrefix(digits string) (string, bool) {
	if g.interPrefix == nil {
		return digits, false
	}
	loc := g.interPrefix.FindStringIndex(digits)
	if loc == nil || loc[1] == 0 {
		return digits, false
	}
	return digits[loc[1]:], true
}

// NationalPrefix returns the region's national prefix.
func (g *Region) NationalPrefix() string {
	return g.nationalPrefix
}

// EffectiveNationalPrefix returns t's override, else the region's prefix.
func (g *Region) EffectiveNationalPrefix(t *Territory) string {
	if t != nil {
		if p, ok := t.NationalPrefix(); ok {
			return p
		}
	}
	return g.nationalPrefix
}

// NationalPrefixForParsing returns the pattern matched against the start of
// national digits: the region's parsing pattern, else the quoted effective
// national prefix. It returns nil when neither exists.
func (g *Region) NationalPrefixForParsing(t *Territory) *regexp.Regexp {
	if g.prefixParse != nil {
		return g.prefixParse
	}
	prefix := g.EffectiveNationalPrefix(t)
	if prefix == "" {
		return nil
	}
	re, err := compilePrefix(regexp.QuoteMeta(prefix))
	if err != nil {
		return nil
	}
	return re
}

// TransformRule returns the national prefix transform rule in
// regexp.Expand form, or "".
func (g *Region) TransformRule() string {
	return g.transformRule
}

// TrimNationalPrefix removes the national prefix from digits for t. When
// a transform rule exists and the last capturing group took part in the
// match, the match is replaced by the rule; otherwise it is dropped. It
// reports false when nothing was removed. The result is not validated.
func (g *Region) TrimNationalPrefix(t *Territory, digits string) (string, bool) {
	re := g.NationalPrefixForParsing(t)
	if re == nil {
		return digits, false
	}
	loc := re.FindStringSubmatchIndex(digits)
	if loc == nil {
		return digits, false
	}

	rest := digits[loc[1]:]
	stripped := rest
	last := len(loc)/2 - 1
	if g.transformRule != "" && last > 0 && loc[2*last] >= 0 {
		stripped = string(re.ExpandString(nil, g.transformRule, digits, loc)) + rest
	}
	return stripped, stripped != digits
}

// StripNationalPrefix is TrimNationalPrefix keeping the stripped form only
// if it is valid for t.
func (g *Region) StripNationalPrefix(t *Territory, digits string) string {
	stripped, ok := g.TrimNationalPrefix(t, digits)
	if !ok || t == nil || !t.IsValid(stripped) {
		return digits
	}
	return stripped
}

// NewRegions decodes every record of a database in order.
func NewRegions(records []any) ([]*Region, error) {
	out := make([]*Region, 0, len(records))
	for i, data := range records {
		g, err := NewRegion(data)
		if err != nil {
			return nil, errors.Wrapf(err, "region %d", i)
		}
		out = append(out, g)
	}
	return out, nil
}
