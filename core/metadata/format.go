package metadata

import (
	"regexp"

	"github.com/FocuswithJustin/GlobalPhone/core/record"
	"github.com/FocuswithJustin/GlobalPhone/core/template"
)

// notInternational is the intlFormat value for formats that must not be
// used in international output.
const notInternational = "NA"

// Format is one output-formatting rule of a region.
type Format struct {
	pattern       *regexp.Regexp
	source        string
	template      *template.Template
	leadingDigits []*regexp.Regexp
	rule          *template.Template
	intl          *template.Template
	intlNA        bool
}

// NewFormat decodes a format record.
func NewFormat(data any) (*Format, error) {
	r, err := record.New(data)
	if err != nil {
		return nil, err
	}

	f := &Format{}
	if f.source, err = record.Field(r, FormatPattern, ""); err != nil {
		return nil, err
	}
	if f.pattern, err = record.FieldFunc(r, FormatPattern, compileFull); err != nil {
		return nil, err
	}
	if f.pattern == nil {
		f.pattern, _ = compileFull("")
	}
	if f.template, err = record.FieldFunc(r, FormatTemplate, template.Parse); err != nil {
		return nil, err
	}
	if f.template == nil {
		f.template = &template.Template{}
	}
	if f.leadingDigits, err = record.FieldArray(r, FormatLeadingDigits, compilePrefix); err != nil {
		return nil, err
	}
	if f.rule, err = record.FieldFunc(r, FormatRule, template.Parse); err != nil {
		return nil, err
	}

	intl, err := record.Field(r, FormatIntlTemplate, "")
	if err != nil {
		return nil, err
	}
	switch intl {
	case "":
	case notInternational:
		f.intlNA = true
	default:
		if f.intl, err = record.FieldFunc(r, FormatIntlTemplate, template.Parse); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Pattern returns the source of the full-match pattern.
func (f *Format) Pattern() string {
	return f.source
}

// Template returns the national formatting template.
func (f *Format) Template() *template.Template {
	return f.template
}

// Rule returns the formatting rule override, or nil.
func (f *Format) Rule() *template.Template {
	return f.rule
}

// International reports whether the format may be used for international
// output.
func (f *Format) International() bool {
	return !f.intlNA
}

// MatchesLeadingDigits reports whether nsn passes the leading-digits
// discriminators. A format without discriminators accepts everything.
func (f *Format) MatchesLeadingDigits(nsn string) bool {
	if len(f.leadingDigits) == 0 {
		return true
	}
	for _, re := range f.leadingDigits {
		if re.MatchString(nsn) {
			return true
		}
	}
	return false
}

// Match returns the submatches of nsn when both the leading digits and the
// full pattern match.
func (f *Format) Match(nsn string) ([]string, bool) {
	if !f.MatchesLeadingDigits(nsn) {
		return nil, false
	}
	groups := f.pattern.FindStringSubmatch(nsn)
	return groups, groups != nil
}

// FormatNational renders the national form of matched groups. rule is the
// territory's rule, used when the format has no override of its own.
func (f *Format) FormatNational(groups []string, rule *template.Template, nationalPrefix string) string {
	if f.rule != nil {
		rule = f.rule
	}
	return f.template.Embed(rule).Expand(groups, nationalPrefix)
}

// FormatInternational renders "+cc " followed by the international form of
// matched groups.
func (f *Format) FormatInternational(groups []string, countryCode string) string {
	if f.intlNA {
		return "+" + countryCode + " " + groups[0]
	}
	tmpl := f.template
	if f.intl != nil {
		tmpl = f.intl
	}
	return "+" + countryCode + " " + tmpl.Expand(groups, "")
}
