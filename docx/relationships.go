package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html/charset"
)

// Relationship is one entry of a relationships part.
type Relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

// Relationships maps relationship ids to targets for one source part.
type Relationships struct {
	// base is the directory of the source part; internal targets are
	// relative to it.
	base  string
	byID  map[string]Relationship
	order []string
}

// ParseRelationships parses a relationships part. base is the directory of
// the part the relationships belong to ("word" for word/_rels/document.xml.rels,
// "" for the package relationships).
func ParseRelationships(data []byte, base string) (*Relationships, error) {
	var doc relationshipsXML
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: relationships: %v", ErrParse, err)
	}

	rels := &Relationships{
		base: base,
		byID: make(map[string]Relationship, len(doc.Relationships)),
	}
	for _, r := range doc.Relationships {
		if r.ID == "" {
			continue
		}
		if _, dup := rels.byID[r.ID]; dup {
			continue
		}
		rels.byID[r.ID] = Relationship{
			ID:       r.ID,
			Type:     r.Type,
			Target:   r.Target,
			External: strings.EqualFold(r.TargetMode, "External"),
		}
		rels.order = append(rels.order, r.ID)
	}

	return rels, nil
}

// Len returns the number of relationships
func (r *Relationships) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Get returns the relationship with the given id
func (r *Relationships) Get(id string) (Relationship, bool) {
	if r == nil {
		return Relationship{}, false
	}
	rel, ok := r.byID[id]
	return rel, ok
}

// Target returns the raw target of a relationship
func (r *Relationships) Target(id string) (string, bool) {
	rel, ok := r.Get(id)
	if !ok {
		return "", false
	}
	return rel.Target, true
}

// PartName resolves an internal relationship to an archive entry name.
// External relationships have no part name.
func (r *Relationships) PartName(id string) (string, bool) {
	rel, ok := r.Get(id)
	if !ok || rel.External {
		return "", false
	}
	return r.resolve(rel.Target), true
}

// FirstOfType returns the first relationship, in document order, whose type
// ends with the given suffix, e.g. "/officeDocument". Matching on the suffix
// accepts both the transitional and the strict namespace spelling.
func (r *Relationships) FirstOfType(suffix string) (Relationship, bool) {
	if r == nil {
		return Relationship{}, false
	}
	for _, id := range r.order {
		rel := r.byID[id]
		if strings.HasSuffix(rel.Type, suffix) {
			return rel, true
		}
	}
	return Relationship{}, false
}

// resolve turns a target into an archive entry name
func (r *Relationships) resolve(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	name := path.Clean(path.Join(r.base, target))
	return strings.TrimPrefix(name, "/")
}

// relsPartFor returns the relationships part name of a source part, e.g.
// word/document.xml -> word/_rels/document.xml.rels.
func relsPartFor(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}
