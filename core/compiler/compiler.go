// Package compiler turns libphonenumber's PhoneNumberMetadata.xml into the
// compact region records served by the phone package.
package compiler

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/FocuswithJustin/GlobalPhone/core/dbfile"
	"github.com/FocuswithJustin/GlobalPhone/core/errors"
	"github.com/FocuswithJustin/GlobalPhone/core/metadata"
	"github.com/FocuswithJustin/GlobalPhone/core/record"
	"github.com/FocuswithJustin/GlobalPhone/core/xml"
	"github.com/FocuswithJustin/GlobalPhone/internal/logging"
)

// Encoding selects the physical shape of compiled records.
type Encoding string

const (
	EncodingNamed      Encoding = "named"
	EncodingPositional Encoding = "positional"
)

// ParseEncoding maps a flag value to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch Encoding(strings.ToLower(name)) {
	case EncodingNamed:
		return EncodingNamed, nil
	case EncodingPositional, "":
		return EncodingPositional, nil
	}
	return "", errors.NewValidation("encoding", fmt.Sprintf("unknown encoding %q, want named or positional", name))
}

// Territory ids without example numbers of their own.
const nonGeographic = "001"

// Example is one example number and the territory it belongs to.
type Example struct {
	Number    string `json:"number"`
	Territory string `json:"territory"`
}

// exampleSelector finds example numbers under every number-type branch of a
// territory except emergency and short codes.
const exampleSelector = "./*[not(self::emergency or self::shortCode)]/exampleNumber"

// Generator compiles one parsed metadata document. Results are memoised and
// the generator is safe for concurrent use.
type Generator struct {
	doc *xml.Document

	mu       sync.Mutex
	records  map[Encoding][]any
	examples []Example
}

// Load parses metadata XML text.
func Load(text string) (*Generator, error) {
	return LoadReader(strings.NewReader(text))
}

// LoadReader parses metadata XML from r.
func LoadReader(r io.Reader) (*Generator, error) {
	doc, err := xml.ParseReader(r)
	if err != nil {
		return nil, errors.WrapParse("XML", "", err)
	}
	return &Generator{doc: doc, records: make(map[Encoding][]any)}, nil
}

// LoadFile parses a metadata XML file, which may be xz or gzip compressed.
func LoadFile(path string) (*Generator, error) {
	data, _, err := dbfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := LoadReader(bytes.NewReader(data))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return g, nil
}

func (g *Generator) territoryNodes() ([]*xml.Node, error) {
	return g.doc.XPath("//territory")
}

// RecordData returns one compiled record per calling code, in order of first
// appearance in the document.
func (g *Generator) RecordData(enc Encoding) ([]any, error) {
	if enc != EncodingNamed && enc != EncodingPositional {
		return nil, errors.NewValidation("encoding", fmt.Sprintf("unknown encoding %q", enc))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if records, ok := g.records[enc]; ok {
		return records, nil
	}

	nodes, err := g.territoryNodes()
	if err != nil {
		return nil, err
	}

	c := &regionCompiler{positional: enc == EncodingPositional}
	var order []string
	groups := make(map[string][]*xml.Node)
	for _, node := range nodes {
		code := node.Attr("countryCode")
		if _, seen := groups[code]; !seen {
			order = append(order, code)
		}
		groups[code] = append(groups[code], node)
	}

	records := make([]any, 0, len(order))
	for _, code := range order {
		rec, err := c.region(code, groups[code])
		if err != nil {
			return nil, errors.Wrapf(err, "region %s", code)
		}
		records = append(records, rec)
	}

	g.records[enc] = records
	return records, nil
}

// ExampleNumbers returns every example number in the document paired with
// its territory. The non-geographic territory is skipped.
func (g *Generator) ExampleNumbers() ([]Example, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.examples != nil {
		return g.examples, nil
	}

	nodes, err := g.territoryNodes()
	if err != nil {
		return nil, err
	}
	examples := []Example{}
	for _, node := range nodes {
		name := node.Attr("id")
		if name == nonGeographic {
			continue
		}
		texts, err := node.Texts(exampleSelector)
		if err != nil {
			return nil, err
		}
		for _, text := range texts {
			examples = append(examples, Example{Number: strings.TrimSpace(text), Territory: name})
		}
	}
	g.examples = examples
	return examples, nil
}

// regionCompiler builds records of one encoding.
type regionCompiler struct {
	positional bool
}

func (c *regionCompiler) encode(keys []record.Key, values ...any) any {
	return record.Encode(keys, values, c.positional)
}

// isMain reports whether node carries a mainCountryForCode flag other than
// "false".
func isMain(node *xml.Node) bool {
	v, ok := node.LookupAttr("mainCountryForCode")
	return ok && strings.TrimSpace(v) != "false"
}

// region compiles one calling-code group. Each flagged territory is moved to
// the front as it is met, so the last flagged one ends up first and supplies
// the region-level prefixes.
func (c *regionCompiler) region(code string, nodes []*xml.Node) (any, error) {
	mainNode := nodes[0]

	territories := make([]any, 0, len(nodes))
	for _, node := range nodes {
		t, err := c.territory(node)
		if err != nil {
			return nil, err
		}
		if isMain(node) {
			mainNode = node
			territories = append([]any{t}, territories...)
		} else {
			territories = append(territories, t)
		}
	}

	formats := []any{}
	for _, node := range nodes {
		formatNodes, err := node.XPath("./availableFormats/numberFormat")
		if err != nil {
			return nil, err
		}
		for _, fn := range formatNodes {
			f, err := c.format(fn)
			if err != nil {
				return nil, err
			}
			formats = append(formats, f)
		}
	}

	logging.RegionCompiled(code, len(territories), len(formats))
	return c.encode(metadata.RegionKeys,
		code,
		formats,
		territories,
		optionalAttr(mainNode, "internationalPrefix", squish),
		optionalAttr(mainNode, "nationalPrefix", squish),
		optionalAttr(mainNode, "nationalPrefixForParsing", squish),
		optionalAttr(mainNode, "nationalPrefixTransformRule", squish),
	), nil
}

func (c *regionCompiler) territory(node *xml.Node) (any, error) {
	possible, err := firstPattern(node, "./generalDesc//possibleNumberPattern")
	if err != nil {
		return nil, err
	}
	if possible == "" {
		lengths, err := node.XPathFirst("./generalDesc/possibleLengths")
		if err != nil {
			return nil, err
		}
		possible = lengthPattern(lengths.Attr("national"))
	}
	national, err := firstPattern(node, "./generalDesc//nationalNumberPattern")
	if err != nil {
		return nil, err
	}

	var optional any
	if squish(node.Attr("nationalPrefixOptionalWhenFormatting")) == "true" {
		optional = true
	}

	return c.encode(metadata.TerritoryKeys,
		node.Attr("id"),
		nonEmpty(possible),
		national,
		optionalAttr(node, "nationalPrefixFormattingRule", squish),
		optionalAttr(node, "nationalPrefix", squish),
		optional,
	), nil
}

func (c *regionCompiler) format(node *xml.Node) (any, error) {
	template, err := node.Texts("./format")
	if err != nil {
		return nil, err
	}
	intl, err := node.Texts("./intlFormat")
	if err != nil {
		return nil, err
	}
	leading, err := node.Texts("./leadingDigits")
	if err != nil {
		return nil, err
	}

	var discriminators []any
	for _, ld := range leading {
		if p := squish(ld); p != "" {
			discriminators = append(discriminators, p)
		}
	}
	var leadingDigits any
	switch {
	case len(discriminators) == 0:
	case len(discriminators) == 1 && c.positional:
		leadingDigits = discriminators[0]
	default:
		leadingDigits = discriminators
	}

	format := strings.TrimSpace(first(template))
	var intlFormat any
	if len(intl) > 0 {
		if f := strings.TrimSpace(intl[0]); f != format {
			intlFormat = f
		}
	}

	return c.encode(metadata.FormatKeys,
		squish(node.Attr("pattern")),
		format,
		leadingDigits,
		optionalAttr(node, "nationalPrefixFormattingRule", squish),
		intlFormat,
	), nil
}

// firstPattern returns the first non-empty squished text matching expr.
func firstPattern(node *xml.Node, expr string) (string, error) {
	texts, err := node.Texts(expr)
	if err != nil {
		return "", err
	}
	for _, t := range texts {
		if p := squish(t); p != "" {
			return p, nil
		}
	}
	return "", nil
}

// optionalAttr returns the cleaned attribute value, or nil when the attribute
// is absent.
func optionalAttr(node *xml.Node, name string, clean func(string) string) any {
	v, ok := node.LookupAttr(name)
	if !ok {
		return nil
	}
	return clean(v)
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func first(texts []string) string {
	if len(texts) == 0 {
		return ""
	}
	return texts[0]
}

// squish removes every whitespace character from s.
func squish(s string) string {
	return strings.Join(strings.Fields(s), "")
}

var lengthRange = regexp.MustCompile(`^\[(\d+)-(\d+)\]$`)
var lengthSingle = regexp.MustCompile(`^\d+$`)

// lengthPattern converts a possibleLengths list such as "[7-9],11" into a
// digit pattern such as `\d{7,9}|\d{11}`. Unrecognised entries are skipped.
func lengthPattern(lengths string) string {
	var alternatives []string
	for _, part := range strings.Split(squish(lengths), ",") {
		switch {
		case lengthSingle.MatchString(part):
			alternatives = append(alternatives, `\d{`+part+`}`)
		case lengthRange.MatchString(part):
			m := lengthRange.FindStringSubmatch(part)
			alternatives = append(alternatives, `\d{`+m[1]+`,`+m[2]+`}`)
		}
	}
	return strings.Join(alternatives, "|")
}
