package metadata

import "github.com/FocuswithJustin/GlobalPhone/core/record"

// Region record fields.
var (
	RegionCountryCode = record.Key{Index: 0, Name: "countryCode"}
	RegionFormats     = record.Key{Index: 1, Name: "formats"}
	RegionTerritories = record.Key{Index: 2, Name: "territories"}
	RegionInterPrefix = record.Key{Index: 3, Name: "interPrefix"}
	RegionPrefix      = record.Key{Index: 4, Name: "prefix"}
	RegionPrefixParse = record.Key{Index: 5, Name: "prefixParse"}
	RegionPrefixTRule = record.Key{Index: 6, Name: "prefixTRule"}
)

// Territory record fields.
var (
	TerritoryName                   = record.Key{Index: 0, Name: "name"}
	TerritoryPossibleNumber         = record.Key{Index: 1, Name: "possibleNumber"}
	TerritoryNationalNumber         = record.Key{Index: 2, Name: "nationalNumber"}
	TerritoryFormattingRule         = record.Key{Index: 3, Name: "formattingRule"}
	TerritoryNationalPrefix         = record.Key{Index: 4, Name: "nationalPrefix"}
	TerritoryNationalPrefixOptional = record.Key{Index: 5, Name: "nationalPrefixOptionalWhenFormatting"}
)

// Format record fields.
var (
	FormatPattern       = record.Key{Index: 0, Name: "pattern"}
	FormatTemplate      = record.Key{Index: 1, Name: "format"}
	FormatLeadingDigits = record.Key{Index: 2, Name: "leadingDigits"}
	FormatRule          = record.Key{Index: 3, Name: "formatRule"}
	FormatIntlTemplate  = record.Key{Index: 4, Name: "intlFormat"}
)

// Field lists in positional order, used when encoding records.
var (
	RegionKeys = []record.Key{
		RegionCountryCode, RegionFormats, RegionTerritories, RegionInterPrefix,
		RegionPrefix, RegionPrefixParse, RegionPrefixTRule,
	}
	TerritoryKeys = []record.Key{
		TerritoryName, TerritoryPossibleNumber, TerritoryNationalNumber,
		TerritoryFormattingRule, TerritoryNationalPrefix, TerritoryNationalPrefixOptional,
	}
	FormatKeys = []record.Key{
		FormatPattern, FormatTemplate, FormatLeadingDigits, FormatRule, FormatIntlTemplate,
	}
)
