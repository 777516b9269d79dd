// Package template parses the substitution templates used by number formats:
// "$1 $2-$3" style group references plus the "$NP" (national prefix) and
// "$FG" (first group) placeholders of formatting rules.
package template

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/GlobalPhone/core/errors"
)

// Template is a parsed substitution template.
type Template struct {
	Parts []*Part `parser:"@@*"`
}

// Part is one token of a template. Exactly one field is set.
type Part struct {
	NationalPrefix bool    `parser:"  @NP"`
	FirstGroup     bool    `parser:"| @FG"`
	Group          *string `parser:"| @Group"`
	Text           *string `parser:"| @(Text | Dollar)"`
}

var templateLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "NP", Pattern: `\$NP`},
	{Name: "FG", Pattern: `\$FG`},
	{Name: "Group", Pattern: `\$\d`},
	{Name: "Text", Pattern: `[^$]+`},
	{Name: "Dollar", Pattern: `\$`},
})

var templateParser = participle.MustBuild[Template](
	participle.Lexer(templateLexer),
)

// Parse parses a template string. The empty string is a template with no
// parts.
func Parse(s string) (*Template, error) {
	if s == "" {
		return &Template{}, nil
	}
	t, err := templateParser.ParseString("", s)
	if err != nil {
		pe := errors.NewParse("template", "", s)
		pe.Err = err
		return nil, pe
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Template {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// groupIndex returns the numeric group a Group part refers to.
func (p *Part) groupIndex() int {
	n, _ := strconv.Atoi(strings.TrimPrefix(*p.Group, "$"))
	return n
}

// FirstGroup returns the index of the first group reference.
func (t *Template) FirstGroup() (int, bool) {
	if t == nil {
		return 0, false
	}
	for _, p := range t.Parts {
		if p.Group != nil {
			return p.groupIndex(), true
		}
	}
	return 0, false
}

// Embed returns a copy of t whose first group reference is replaced by rule.
// Inside rule, $FG becomes that group reference; $NP is left for Expand.
// A nil or empty rule, or a template without groups, returns t unchanged.
func (t *Template) Embed(rule *Template) *Template {
	if t == nil || rule == nil || len(rule.Parts) == 0 {
		return t
	}
	out := &Template{Parts: make([]*Part, 0, len(t.Parts)+len(rule.Parts))}
	embedded := false
	for _, p := range t.Parts {
		if embedded || p.Group == nil {
			out.Parts = append(out.Parts, p)
			continue
		}
		for _, rp := range rule.Parts {
			if rp.FirstGroup {
				out.Parts = append(out.Parts, p)
			} else {
				out.Parts = append(out.Parts, rp)
			}
		}
		embedded = true
	}
	if !embedded {
		return t
	}
	return out
}

// Expand renders the template. groups is a submatch slice as returned by
// regexp.FindStringSubmatch (index 0 is the whole match); references to
// groups that do not exist render as empty. $FG outside an embedded rule
// renders group 1.
func (t *Template) Expand(groups []string, nationalPrefix string) string {
	if t == nil {
		return ""
	}
	group := func(i int) string {
		if i < len(groups) {
			return groups[i]
		}
		return ""
	}

	var sb strings.Builder
	for _, p := range t.Parts {
		switch {
		case p.NationalPrefix:
			sb.WriteString(nationalPrefix)
		case p.FirstGroup:
			sb.WriteString(group(1))
		case p.Group != nil:
			sb.WriteString(group(p.groupIndex()))
		case p.Text != nil:
			sb.WriteString(*p.Text)
		}
	}
	return sb.String()
}

// String renders the template back to its source form.
func (t *Template) String() string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range t.Parts {
		switch {
		case p.NationalPrefix:
			sb.WriteString("$NP")
		case p.FirstGroup:
			sb.WriteString("$FG")
		case p.Group != nil:
			sb.WriteString(*p.Group)
		case p.Text != nil:
			sb.WriteString(*p.Text)
		}
	}
	return sb.String()
}
