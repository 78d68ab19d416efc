// Package docx decodes the WordprocessingML body of a .docx main
// document part and renders it as an HTML fragment.
//
// Only the parts of the tree the renderer needs are decoded: paragraphs
// (style id, numbering, runs of text with bold/italic/underline) and
// tables of paragraphs. Everything else in the body is kept as a
// KindOther element and skipped at render time.
package docx

import (
	"encoding/xml"
	"fmt"
	"io"
)

// NamespaceW is the WordprocessingML main namespace. Elements are
// matched by local name, so documents with unusual prefixes still decode.
const NamespaceW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// ElementKind tags a BodyElement.
type ElementKind int

const (
	KindOther ElementKind = iota
	KindParagraph
	KindTable
)

func (k ElementKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	default:
		return "other"
	}
}

// Document is the root <w:document> element.
type Document struct {
	XMLName xml.Name `xml:"document"`
	Body    *Body    `xml:"body"`
}

// Body holds the top-level content of the document in order.
type Body struct {
	Elements []BodyElement
}

// BodyElement is one child of <w:body>. Exactly one of Paragraph or
// Table is set for KindParagraph and KindTable; KindOther only carries
// the element name.
type BodyElement struct {
	Kind      ElementKind
	Paragraph *Paragraph
	Table     *Table
	Name      string
}

// UnmarshalXML decodes body children in document order. <w:p> and
// <w:tbl> are decoded; any other child is recorded and skipped.
func (b *Body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p Paragraph
				if err := d.DecodeElement(&p, &t); err != nil {
					return fmt.Errorf("decode paragraph: %w", err)
				}
				b.Elements = append(b.Elements, BodyElement{Kind: KindParagraph, Paragraph: &p, Name: t.Name.Local})
			case "tbl":
				var tbl Table
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return fmt.Errorf("decode table: %w", err)
				}
				b.Elements = append(b.Elements, BodyElement{Kind: KindTable, Table: &tbl, Name: t.Name.Local})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
				b.Elements = append(b.Elements, BodyElement{Kind: KindOther, Name: t.Name.Local})
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Paragraph is a <w:p>.
type Paragraph struct {
	Props *ParagraphProps `xml:"pPr"`
	Runs  []Run           `xml:"r"`
}

// ParagraphProps is <w:pPr>.
type ParagraphProps struct {
	Style     *StyleRef       `xml:"pStyle"`
	Numbering *NumberingProps `xml:"numPr"`
}

// StyleRef is <w:pStyle w:val="Heading1"/>.
type StyleRef struct {
	Val string `xml:"val,attr"`
}

// NumberingProps is <w:numPr>; its presence marks a list item.
type NumberingProps struct {
	Level *StyleRef `xml:"ilvl"`
	NumID *StyleRef `xml:"numId"`
}

// Run is a <w:r>, a span of text sharing one formatting set.
type Run struct {
	Props *RunProps `xml:"rPr"`
	Texts []Text    `xml:"t"`
}

// RunProps is <w:rPr>. A non-nil toggle means the property is present.
type RunProps struct {
	Bold      *Toggle `xml:"b"`
	Italic    *Toggle `xml:"i"`
	Underline *Toggle `xml:"u"`
}

// Toggle is an on/off formatting element such as <w:b/> or <w:u w:val="single"/>.
type Toggle struct {
	Val string `xml:"val,attr"`
}

// Text is <w:t>.
type Text struct {
	Value string `xml:",chardata"`
}

// Table is a <w:tbl>.
type Table struct {
	Rows []TableRow `xml:"tr"`
}

// TableRow is a <w:tr>.
type TableRow struct {
	Cells []TableCell `xml:"tc"`
}

// TableCell is a <w:tc>.
type TableCell struct {
	Paragraphs []Paragraph `xml:"p"`
}

// DecodeDocument decodes a main document part (word/document.xml).
// A document without <w:body> decodes successfully with a nil Body.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("docx: parse document xml: %w", err)
	}
	return &doc, nil
}
