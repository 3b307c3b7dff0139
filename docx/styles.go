package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// headingStylePattern matches built-in heading style ids and names such as
// "Heading1", "heading 2" or "Heading3Char".
var headingStylePattern = regexp.MustCompile(`^(?i:heading)\s*([1-9])`)

// stylesXML keeps the parts of word/styles.xml that can make a paragraph
// style a heading.
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

type styleDefXML struct {
	StyleID string `xml:"styleId,attr"`
	Name    valXML `xml:"name"`
	BasedOn valXML `xml:"basedOn"`
	PPr     struct {
		OutlineLvl valXML `xml:"outlineLvl"`
	} `xml:"pPr"`
}

// StyleSheet answers heading questions about paragraph styles. Other style
// properties are not resolved. A nil *StyleSheet falls back to the built-in
// style ids.
type StyleSheet struct {
	styles map[string]*styleDefXML
}

// ParseStyles parses a styles part.
func ParseStyles(data []byte) (*StyleSheet, error) {
	var doc stylesXML
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: styles: %v", ErrParse, err)
	}

	ss := &StyleSheet{styles: make(map[string]*styleDefXML, len(doc.Styles))}
	for i := range doc.Styles {
		def := &doc.Styles[i]
		ss.styles[def.StyleID] = def
	}
	return ss, nil
}

// HeadingLevel returns the heading level (1..6) of a paragraph style, or 0.
// The style id is checked first, then the style's name and outline level
// along its basedOn chain.
func (ss *StyleSheet) HeadingLevel(styleID string) int {
	if styleID == "" {
		return 0
	}
	if level := builtInHeadingLevel(styleID); level > 0 {
		return level
	}
	if ss == nil {
		return 0
	}

	visited := make(map[string]bool)
	for current := styleID; current != "" && !visited[current]; {
		visited[current] = true
		def, ok := ss.styles[current]
		if !ok {
			break
		}
		if level := builtInHeadingLevel(def.Name.Val); level > 0 {
			return level
		}
		if level := outlineHeadingLevel(def.PPr.OutlineLvl.Val); level > 0 {
			return level
		}
		current = def.BasedOn.Val
	}

	return 0
}

// builtInHeadingLevel recognizes Heading1..Heading9 and Title. Levels past 6
// are clamped.
func builtInHeadingLevel(styleID string) int {
	if strings.EqualFold(styleID, "Title") {
		return 1
	}
	m := headingStylePattern.FindStringSubmatch(styleID)
	if m == nil {
		return 0
	}
	level := int(m[1][0] - '0')
	return min(level, 6)
}

// outlineHeadingLevel converts a 0-based w:outlineLvl value to a heading
// level. Level 9 marks body text.
func outlineHeadingLevel(val string) int {
	if val == "" {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 || n > 8 {
		return 0
	}
	return min(n+1, 6)
}
