package importer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Excel 2003 XML namespaces.
const (
	nsSpreadsheet = "urn:schemas-microsoft-com:office:spreadsheet"
	nsOffice      = "urn:schemas-microsoft-com:office:office"
	nsExcel       = "urn:schemas-microsoft-com:office:excel"
	nsHTML        = "http://www.w3.org/TR/REC-html40"
)

// conventionalPrefixes resolves the dialect's usual prefixes when a document
// uses them without declaring them.
var conventionalPrefixes = map[string]string{
	"ss":   nsSpreadsheet,
	"o":    nsOffice,
	"x":    nsExcel,
	"html": nsHTML,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SpreadsheetMLParser parses Excel 2003 XML (SpreadsheetML) ledger exports.
type SpreadsheetMLParser struct{}

// Format returns the parser name.
func (p *SpreadsheetMLParser) Format() string { return "spreadsheetml" }

// Extensions returns the file extensions this parser reads.
func (p *SpreadsheetMLParser) Extensions() []string { return []string{".xml"} }

// Parse reads the first worksheet's table and classifies its rows.
func (p *SpreadsheetMLParser) Parse(r io.Reader) (*Result, error) {
	rows, err := p.ReadRows(r)
	if err != nil {
		return nil, err
	}
	return classifyRows(rows, ParseISODate), nil
}

// ReadRows decodes the document into raw rows without classifying them.
func (p *SpreadsheetMLParser) ReadRows(r io.Reader) ([]RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	doc, err := decodeTree(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		return nil, &StructureError{Format: p.Format(), Reason: ErrMalformed, Cause: err}
	}

	worksheet := doc.find("Worksheet")
	if worksheet == nil {
		return nil, &StructureError{Format: p.Format(), Reason: ErrNoWorksheet}
	}
	table := worksheet.find("Table")
	if table == nil {
		return nil, &StructureError{Format: p.Format(), Reason: ErrNoTable}
	}

	var rows []RawRow
	for _, row := range table.findAll("Row") {
		cells := row.findAll("Cell")
		raw := make(RawRow, len(cells))
		for i, cell := range cells {
			if d := cell.find("Data"); d != nil {
				raw[i] = d.innerText()
			}
		}
		rows = append(rows, raw)
	}
	return rows, nil
}

// node is an element of the decoded document, or a text node when name is empty.
type node struct {
	name     xml.Name
	text     string
	children []*node
}

// decodeTree decodes data and returns its root element.
func decodeTree(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader

	doc := &node{}
	stack := []*node{doc}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			if top == doc && hasElement(doc) {
				return nil, errors.New("junk after document element")
			}
			n := &node{name: t.Name}
			top.children = append(top.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.children = append(top.children, &node{text: string(t)})
		}
	}

	for _, c := range doc.children {
		if c.isElement() {
			return c, nil
		}
	}
	return nil, errors.New("no root element")
}

func hasElement(n *node) bool {
	for _, c := range n.children {
		if c.isElement() {
			return true
		}
	}
	return false
}

func (n *node) isElement() bool { return n.name.Local != "" }

// is reports whether n is the spreadsheet-namespace element local.
func (n *node) is(local string) bool {
	if n.name.Local != local {
		return false
	}
	space := n.name.Space
	if uri, ok := conventionalPrefixes[space]; ok {
		space = uri
	}
	return space == nsSpreadsheet
}

// find returns the first descendant spreadsheet element named local, in document order.
func (n *node) find(local string) *node {
	for _, c := range n.children {
		if !c.isElement() {
			continue
		}
		if c.is(local) {
			return c
		}
		if found := c.find(local); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant spreadsheet element named local, in document order.
func (n *node) findAll(local string) []*node {
	var out []*node
	var walk func(*node)
	walk = func(p *node) {
		for _, c := range p.children {
			if !c.isElement() {
				continue
			}
			if c.is(local) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// innerText concatenates all text below n, including rich-text runs.
func (n *node) innerText() string {
	var b strings.Builder
	var walk func(*node)
	walk = func(p *node) {
		for _, c := range p.children {
			if c.isElement() {
				walk(c)
			} else {
				b.WriteString(c.text)
			}
		}
	}
	walk(n)
	return b.String()
}

// charsetReader decodes the single-byte encodings spreadsheet exports declare.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1", "l1":
		enc = charmap.ISO8859_1
	case "iso-8859-15", "iso8859-15", "latin9", "latin-9":
		enc = charmap.ISO8859_15
	case "windows-1252", "cp1252", "x-cp1252":
		enc = charmap.Windows1252
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
