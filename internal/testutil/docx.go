package testutil

import (
	"archive/zip"
	"bytes"
	"testing"
)

// CoreProps fills docProps/core.xml. Leave it nil to build a package
// without core properties.
type CoreProps struct {
	Title    string
	Creator  string
	Modified string
}

// Para is the XML for a plain <w:p> holding text.
func Para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// DocumentXML wraps body children in a complete word/document.xml.
func DocumentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`
}

// BuildDocx returns a minimal but well-formed .docx whose body holds
// bodyXML.
func BuildDocx(t *testing.T, bodyXML string, props *CoreProps) []byte {
	t.Helper()
	parts := map[string]string{
		"word/document.xml": DocumentXML(bodyXML),
	}
	rels := `<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>`
	if props != nil {
		parts["docProps/core.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
			`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">` +
			`<dc:title>` + props.Title + `</dc:title>` +
			`<dc:creator>` + props.Creator + `</dc:creator>` +
			`<dcterms:modified>` + props.Modified + `</dcterms:modified>` +
			`</cp:coreProperties>`
		rels += `<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>`
	}
	parts["_rels/.rels"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + rels + `</Relationships>`

	return BuildZip(t, parts)
}

// BuildZip writes parts into a zip archive.
func BuildZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}
