package convert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

const (
	relsPart         = "_rels/.rels"
	defaultMainPart  = "word/document.xml"
	defaultCorePart  = "docProps/core.xml"
	relTypeOfficeDoc = "/officeDocument"
	relTypeCoreProps = "/core-properties"
	maxPartSize      = 64 << 20
)

var (
	errNoMainPart = errors.New("invalid document: missing main document part")
	errNoBody     = errors.New("invalid document: missing document body")
)

// wordPackage is a .docx opened read-only.
type wordPackage struct {
	files map[string]*zip.File
	rels  []relationship
}

type relationships struct {
	Items []relationship `xml:"Relationship"`
}

type relationship struct {
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// coreProperties is docProps/core.xml (dc:title, dc:creator, dcterms:modified).
type coreProperties struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Modified string `xml:"modified"`
}

func openPackage(data []byte) (*wordPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	pkg := &wordPackage{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		pkg.files[strings.TrimPrefix(f.Name, "/")] = f
	}

	if raw, ok, err := pkg.read(relsPart); err != nil {
		return nil, err
	} else if ok {
		var rels relationships
		if err := xml.Unmarshal(raw, &rels); err != nil {
			return nil, fmt.Errorf("parse %s: %w", relsPart, err)
		}
		pkg.rels = rels.Items
	}
	return pkg, nil
}

// partName resolves a package-level relationship by type suffix. Packages
// without a relationships part fall back to the conventional name.
func (p *wordPackage) partName(typeSuffix, fallback string) (string, bool) {
	if p.rels == nil {
		return fallback, true
	}
	for _, r := range p.rels {
		if strings.HasSuffix(r.Type, typeSuffix) {
			return path.Clean(strings.TrimPrefix(r.Target, "/")), true
		}
	}
	return "", false
}

// mainPart returns the main document part reader, or errNoMainPart.
func (p *wordPackage) mainPart() (io.ReadCloser, error) {
	name, ok := p.partName(relTypeOfficeDoc, defaultMainPart)
	if !ok {
		return nil, errNoMainPart
	}
	f, ok := p.files[name]
	if !ok {
		return nil, errNoMainPart
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return rc, nil
}

// coreProperties returns the package properties; a package without them
// yields empty values.
func (p *wordPackage) coreProperties() (coreProperties, error) {
	var props coreProperties
	name, ok := p.partName(relTypeCoreProps, defaultCorePart)
	if !ok {
		return props, nil
	}
	raw, found, err := p.read(name)
	if err != nil || !found {
		return props, err
	}
	if err := xml.Unmarshal(raw, &props); err != nil {
		return props, fmt.Errorf("parse %s: %w", name, err)
	}
	props.Title = strings.TrimSpace(props.Title)
	props.Creator = strings.TrimSpace(props.Creator)
	props.Modified = normalizeModified(props.Modified)
	return props, nil
}

func (p *wordPackage) read(name string) ([]byte, bool, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, true, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
	if err != nil {
		return nil, true, fmt.Errorf("read %s: %w", name, err)
	}
	return raw, true, nil
}

// normalizeModified renders W3CDTF timestamps as RFC 3339 UTC and passes
// anything else through trimmed.
func normalizeModified(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return s
}
