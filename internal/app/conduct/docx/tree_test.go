package docx

import (
	"strings"
	"testing"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Code of Conduct</w:t></w:r>
    </w:p>
    <w:p>
      <w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>
      <w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Arrive </w:t></w:r>
      <w:r><w:t>early</w:t></w:r>
    </w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Day</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Sunday</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr>
  </w:body>
</w:document>`

func TestDecodeDocument_KeepsOrderAndKinds(t *testing.T) {
	doc, err := DecodeDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("DecodeDocument failed: %v", err)
	}
	if doc.Body == nil {
		t.Fatal("expected body")
	}

	wantKinds := []ElementKind{KindParagraph, KindParagraph, KindTable, KindOther}
	if len(doc.Body.Elements) != len(wantKinds) {
		t.Fatalf("got %d elements, want %d", len(doc.Body.Elements), len(wantKinds))
	}
	for i, k := range wantKinds {
		if doc.Body.Elements[i].Kind != k {
			t.Errorf("element %d kind = %v, want %v", i, doc.Body.Elements[i].Kind, k)
		}
	}

	first := doc.Body.Elements[0].Paragraph
	if first.Props == nil || first.Props.Style == nil || first.Props.Style.Val != "Heading1" {
		t.Errorf("expected Heading1 style, got %+v", first.Props)
	}
	second := doc.Body.Elements[1].Paragraph
	if second.Props == nil || second.Props.Numbering == nil {
		t.Error("expected numbering properties on list paragraph")
	}
	if second.Runs[0].Props == nil || second.Runs[0].Props.Bold == nil {
		t.Error("expected bold run")
	}
	if second.Runs[0].Texts[0].Value != "Arrive " {
		t.Errorf("expected preserved whitespace, got %q", second.Runs[0].Texts[0].Value)
	}
}

func TestDecodeDocument_RendersEndToEnd(t *testing.T) {
	doc, err := DecodeDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("DecodeDocument failed: %v", err)
	}

	html, words := RenderBody(doc.Body.Elements)
	for _, want := range []string{
		"<h1>Code of Conduct</h1>",
		`<p>• <span style="font-weight: bold;">Arrive </span>early</p>`,
		"<td><p>Sunday</p></td>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output:\n%s", want, html)
		}
	}
	if words != 7 {
		t.Errorf("words = %d, want 7", words)
	}
}

func TestDecodeDocument_NoBody(t *testing.T) {
	doc, err := DecodeDocument(strings.NewReader(`<w:document xmlns:w="` + NamespaceW + `"></w:document>`))
	if err != nil {
		t.Fatalf("DecodeDocument failed: %v", err)
	}
	if doc.Body != nil {
		t.Error("expected nil body")
	}
}

func TestDecodeDocument_Malformed(t *testing.T) {
	if _, err := DecodeDocument(strings.NewReader(`<w:document><w:body><w:p>`)); err == nil {
		t.Fatal("expected error for truncated xml")
	}
}
