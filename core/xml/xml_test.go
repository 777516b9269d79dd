package xml

import (
	"strings"
	"testing"
)

const sampleMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<phoneNumberMetadata>
  <territories>
    <territory id="GB" countryCode="44" mainCountryForCode="true" nationalPrefix="0">
      <generalDesc>
        <nationalNumberPattern>
          [1-357-9]\d{9}
        </nationalNumberPattern>
      </generalDesc>
      <fixedLine><exampleNumber>1212345678</exampleNumber></fixedLine>
      <emergency><exampleNumber>999</exampleNumber></emergency>
    </territory>
    <territory id="GG" countryCode="44" nationalPrefix="">
      <generalDesc/>
    </territory>
  </territories>
</phoneNumberMetadata>`

func mustParse(t *testing.T, data string) *Document {
	t.Helper()
	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

// TestParseValidXML verifies parsing of well-formed XML.
func TestParseValidXML(t *testing.T) {
	doc := mustParse(t, sampleMetadata)
	root, err := doc.XPathFirst("/*")
	if err != nil || root.Name() != "phoneNumberMetadata" {
		t.Fatalf("XPathFirst(/*) = %v, %v; want phoneNumberMetadata", root, err)
	}
}

// TestParseInvalidXML verifies error handling for malformed XML.
func TestParseInvalidXML(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"unclosed tag", "<root><element></root>"},
		{"mismatched tags", "<root></other>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.xml)); err == nil {
				t.Error("Parse should fail for invalid XML")
			}
		})
	}
}

// TestParseReader verifies parsing from a stream.
func TestParseReader(t *testing.T) {
	doc, err := ParseReader(strings.NewReader(sampleMetadata))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	nodes, err := doc.XPath("//territory")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("got %d territories, want 2", len(nodes))
	}
}

// TestNodeRelativeXPath verifies queries scoped to a node.
func TestNodeRelativeXPath(t *testing.T) {
	doc := mustParse(t, sampleMetadata)
	gb, err := doc.XPathFirst("//territory[@id='GB']")
	if err != nil || gb == nil {
		t.Fatalf("XPathFirst(GB) = %v, %v", gb, err)
	}

	texts, err := gb.Texts("generalDesc/nationalNumberPattern")
	if err != nil {
		t.Fatalf("Texts failed: %v", err)
	}
	if len(texts) != 1 || !strings.Contains(texts[0], `[1-357-9]\d{9}`) {
		t.Errorf("Texts() = %q", texts)
	}

	examples, err := gb.Texts("./*[not(self::emergency or self::shortCode)]/exampleNumber")
	if err != nil {
		t.Fatalf("Texts failed: %v", err)
	}
	if len(examples) != 1 || examples[0] != "1212345678" {
		t.Errorf("example numbers = %q, want [1212345678]", examples)
	}
}

// TestXPathInvalidExpression verifies compile errors are reported.
func TestXPathInvalidExpression(t *testing.T) {
	doc := mustParse(t, sampleMetadata)
	if _, err := doc.XPath("//territory["); err == nil {
		t.Error("XPath should fail for invalid expression")
	}
	gb, _ := doc.XPathFirst("//territory[@id='GB']")
	if _, err := gb.XPathFirst("[[["); err == nil {
		t.Error("XPathFirst should fail for invalid expression")
	}
}

// TestXPathFirstNotFound verifies nil is returned without error for no match.
func TestXPathFirstNotFound(t *testing.T) {
	doc := mustParse(t, sampleMetadata)
	n, err := doc.XPathFirst("//missing")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	if n != nil {
		t.Errorf("XPathFirst() = %v, want nil", n)
	}
}

// TestLookupAttr verifies present-but-empty attributes differ from missing ones.
func TestLookupAttr(t *testing.T) {
	doc := mustParse(t, sampleMetadata)
	gg, _ := doc.XPathFirst("//territory[@id='GG']")

	if v, ok := gg.LookupAttr("nationalPrefix"); !ok || v != "" {
		t.Errorf("LookupAttr(nationalPrefix) = %q, %v; want \"\", true", v, ok)
	}
	if _, ok := gg.LookupAttr("mainCountryForCode"); ok {
		t.Error("LookupAttr(mainCountryForCode) should report absent")
	}
	if got := gg.Attr("countryCode"); got != "44" {
		t.Errorf("Attr(countryCode) = %q, want 44", got)
	}
}

// TestNodeChildElements verifies relative queries see element children only.
func TestNodeChildElements(t *testing.T) {
	doc := mustParse(t, sampleMetadata)
	gb, _ := doc.XPathFirst("//territory[@id='GB']")
	children, err := gb.XPath("./*")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	var names []string
	for _, c := range children {
		names = append(names, c.Name())
	}
	if got := strings.Join(names, ","); got != "generalDesc,fixedLine,emergency" {
		t.Errorf("children = %s", got)
	}
}

// TestNilReceivers verifies nil nodes and documents are inert.
func TestNilReceivers(t *testing.T) {
	var n *Node
	if n.Name() != "" || n.Text() != "" || n.Attr("x") != "" {
		t.Error("nil node should return empty strings")
	}
	if _, ok := n.LookupAttr("x"); ok {
		t.Error("nil node should have no attributes")
	}
	if nodes, err := n.XPath("//x"); nodes != nil || err != nil {
		t.Error("nil node XPath should return nil, nil")
	}
	var d *Document
	if first, err := d.XPathFirst("//x"); first != nil || err != nil {
		t.Error("nil document XPathFirst should return nil, nil")
	}
	if nodes, err := d.XPath("//x"); nodes != nil || err != nil {
		t.Error("nil document XPath should return nil, nil")
	}
}
