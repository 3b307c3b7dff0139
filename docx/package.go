package docx

import (
	"bytes"
	"errors"
	"fmt"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/container"
	"github.com/tsawler/docflip/internal/logging"
	"github.com/tsawler/docflip/model"
)

var (
	// ErrMissingDocumentXML is returned when the package has no main
	// document part.
	ErrMissingDocumentXML = errors.New("docx: missing main document part")

	// ErrParse is returned when a part is not well-formed XML. The message
	// of the underlying decoder error is preserved.
	ErrParse = errors.New("docx: parse error")
)

// Package provides access to the parts of an opened DOCX archive.
type Package struct {
	zip       *container.Reader
	mainPart  string
	rels      *Relationships
	numbering *Numbering
	styles    *StyleSheet
	warnings  []string
	log       logrus.FieldLogger
}

// Option configures Open.
type Option func(*Package)

// WithLogger sets the logger used while opening and parsing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Package) {
		if log != nil {
			p.log = log
		}
	}
}

// Open reads the archive structure of a DOCX package held in memory.
// Archive errors are returned as reported by the container package; a
// package without a main document part fails with ErrMissingDocumentXML.
func Open(data []byte, opts ...Option) (*Package, error) {
	zr, err := container.Open(data)
	if err != nil {
		return nil, err
	}

	pkg := &Package{zip: zr, log: logging.Discard()}
	for _, opt := range opts {
		opt(pkg)
	}

	if !zr.Has(partContentTypes) {
		pkg.warn("package has no [Content_Types].xml")
	}

	pkg.mainPart = pkg.findMainPart()
	if !zr.Has(pkg.mainPart) {
		return nil, fmt.Errorf("%w: %s", ErrMissingDocumentXML, pkg.mainPart)
	}

	if err := pkg.loadParts(); err != nil {
		return nil, err
	}

	pkg.log.WithFields(logrus.Fields{
		"entries":       len(zr.Entries()),
		"main_part":     pkg.mainPart,
		"relationships": pkg.rels.Len(),
	}).Debug("opened docx package")

	return pkg, nil
}

// findMainPart follows the officeDocument relationship of the package,
// falling back to word/document.xml.
func (p *Package) findMainPart() string {
	data, err := p.zip.Read(partPackageRels)
	if err != nil {
		return partDocument
	}
	rels, err := ParseRelationships(data, "")
	if err != nil {
		p.warn("package relationships could not be parsed")
		return partDocument
	}
	rel, ok := rels.FirstOfType("/officeDocument")
	if !ok || rel.External {
		return partDocument
	}
	name, _ := rels.PartName(rel.ID)
	return name
}

// loadParts reads the main part's relationships and the optional numbering
// and styles parts. Only a malformed relationships part is fatal.
func (p *Package) loadParts() error {
	base := dir(p.mainPart)

	if data, err := p.zip.Read(relsPartFor(p.mainPart)); err == nil {
		rels, err := ParseRelationships(data, base)
		if err != nil {
			return err
		}
		p.rels = rels
	} else if !errors.Is(err, container.ErrEntryNotFound) {
		p.warn(fmt.Sprintf("document relationships unreadable: %v", err))
	}

	if rel, ok := p.rels.FirstOfType("/numbering"); ok {
		if data, ok := p.optionalPart(rel.ID); ok {
			if n, err := ParseNumbering(data); err == nil {
				p.numbering = n
			} else {
				p.warn("numbering definitions could not be parsed; lists use bullets")
			}
		}
	}

	if rel, ok := p.rels.FirstOfType("/styles"); ok {
		if data, ok := p.optionalPart(rel.ID); ok {
			if s, err := ParseStyles(data); err == nil {
				p.styles = s
			} else {
				p.warn("styles could not be parsed; only built-in heading styles are recognized")
			}
		}
	}

	return nil
}

// optionalPart reads a related part, recording a warning when it exists but
// cannot be extracted.
func (p *Package) optionalPart(relID string) ([]byte, bool) {
	name, ok := p.rels.PartName(relID)
	if !ok {
		return nil, false
	}
	data, err := p.zip.Read(name)
	if err != nil {
		if !errors.Is(err, container.ErrEntryNotFound) {
			p.warn(fmt.Sprintf("part %s skipped: %v", name, err))
		}
		return nil, false
	}
	return data, true
}

func (p *Package) warn(msg string) {
	for _, w := range p.warnings {
		if w == msg {
			return
		}
	}
	p.warnings = append(p.warnings, msg)
}

// MainPart returns the archive name of the main document part
func (p *Package) MainPart() string {
	return p.mainPart
}

// Relationships returns the main part's relationships; it may be nil.
func (p *Package) Relationships() *Relationships {
	return p.rels
}

// Document parses the main document part. The returned warnings include
// those recorded while opening the package.
func (p *Package) Document() (*model.Document, []string, error) {
	data, err := p.zip.Read(p.mainPart)
	if err != nil {
		if errors.Is(err, container.ErrUnsupportedMethod) {
			return nil, nil, fmt.Errorf("%w: %v", ErrMissingDocumentXML, err)
		}
		return nil, nil, err
	}

	doc, parseWarnings, err := Parse(bytes.NewReader(data), p.rels,
		WithNumbering(p.numbering), WithStyles(p.styles))
	warnings := append(append([]string(nil), p.warnings...), parseWarnings...)
	if err != nil {
		return nil, warnings, err
	}

	p.log.WithFields(logrus.Fields{
		"elements": doc.Len(),
		"warnings": len(warnings),
	}).Debug("parsed main document part")

	return doc, warnings, nil
}

// Media returns the bytes of the part an image relationship points to.
func (p *Package) Media(relID string) ([]byte, error) {
	name, ok := p.rels.PartName(relID)
	if !ok {
		return nil, fmt.Errorf("%w: relationship %s", container.ErrEntryNotFound, relID)
	}
	return p.zip.Read(name)
}

// dir returns the directory of an archive entry name, "" at the root
func dir(name string) string {
	d := path.Dir(name)
	if d == "." || d == "/" {
		return ""
	}
	return d
}
