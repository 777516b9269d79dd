package metadata

import (
	"regexp"

	"github.com/FocuswithJustin/GlobalPhone/core/record"
	"github.com/FocuswithJustin/GlobalPhone/core/template"
)

// Territory is one jurisdiction under a region. It refers back to its region
// by calling code only.
type Territory struct {
	name              string
	countryCode       string
	possible          *regexp.Regexp
	national          *regexp.Regexp
	nationalSource    string
	formattingRule    *template.Template
	nationalPrefix    string
	hasNationalPrefix bool
	prefixOptional    bool
}

// NewTerritory decodes a territory record belonging to countryCode.
func NewTerritory(data any, countryCode string) (*Territory, error) {
	r, err := record.New(data)
	if err != nil {
		return nil, err
	}

	t := &Territory{countryCode: countryCode}
	if t.name, err = record.Field(r, TerritoryName, ""); err != nil {
		return nil, err
	}
	if t.nationalSource, err = record.Field(r, TerritoryNationalNumber, ""); err != nil {
		return nil, err
	}
	if t.national, err = record.FieldFunc(r, TerritoryNationalNumber, compileFull); err != nil {
		return nil, err
	}
	if t.national == nil {
		t.national, _ = compileFull("")
	}
	if t.possible, err = record.FieldFunc(r, TerritoryPossibleNumber, compileFull); err != nil {
		return nil, err
	}
	if t.formattingRule, err = record.FieldFunc(r, TerritoryFormattingRule, template.Parse); err != nil {
		return nil, err
	}
	if t.nationalPrefix, err = record.Field(r, TerritoryNationalPrefix, ""); err != nil {
		return nil, err
	}
	_, t.hasNationalPrefix = r.Lookup(TerritoryNationalPrefix)
	if t.prefixOptional, err = record.Field(r, TerritoryNationalPrefixOptional, false); err != nil {
		return nil, err
	}
	return t, nil
}

// Name returns the territory's name, e.g. "GB".
func (t *Territory) Name() string {
	return t.name
}

// CountryCode returns the calling code of the owning region.
func (t *Territory) CountryCode() string {
	return t.countryCode
}

// NationalPattern returns the source of the national-number pattern.
func (t *Territory) NationalPattern() string {
	return t.nationalSource
}

// IsValid reports whether nsn fully matches the national-number pattern.
func (t *Territory) IsValid(nsn string) bool {
	return t.national.MatchString(nsn)
}

// IsPossible reports whether nsn fully matches the possible-number pattern.
// Territories without one fall back to the national-number pattern.
func (t *Territory) IsPossible(nsn string) bool {
	if t.possible == nil {
		return t.IsValid(nsn)
	}
	return t.possible.MatchString(nsn)
}

// NationalPrefix returns the territory's own national prefix override.
func (t *Territory) NationalPrefix() (string, bool) {
	return t.nationalPrefix, t.hasNationalPrefix
}

// FormattingRule returns the territory's national formatting rule, or nil.
func (t *Territory) FormattingRule() *template.Template {
	return t.formattingRule
}

// NationalPrefixOptionalWhenFormatting reports whether the national prefix
// may be left out of national output.
func (t *Territory) NationalPrefixOptionalWhenFormatting() bool {
	return t.prefixOptional
}
