package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/tsawler/docflip/model"
	"golang.org/x/net/html/charset"
)

// maxListLevel is the number of list levels WordprocessingML defines.
const maxListLevel = 9

// numberingXML is the decoded form of word/numbering.xml. Only the level
// format and start value are kept.
type numberingXML struct {
	XMLName      xml.Name         `xml:"numbering"`
	AbstractNums []abstractNumXML `xml:"abstractNum"`
	Nums         []numXML         `xml:"num"`
}

type abstractNumXML struct {
	AbstractNumID string `xml:"abstractNumId,attr"`
	Levels        []struct {
		ILvl   string `xml:"ilvl,attr"`
		Start  valXML `xml:"start"`
		NumFmt valXML `xml:"numFmt"`
	} `xml:"lvl"`
}

type numXML struct {
	NumID         string `xml:"numId,attr"`
	AbstractNumID valXML `xml:"abstractNumId"`
}

// Numbering resolves list definitions from numbering.xml. A nil *Numbering
// is valid and resolves every list to a bullet list starting at 1.
type Numbering struct {
	abstractNums map[string]*abstractNumXML // abstractNumId -> definition
	numMappings  map[string]string          // numId -> abstractNumId
}

// ParseNumbering parses a numbering part.
func ParseNumbering(data []byte) (*Numbering, error) {
	var doc numberingXML
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: numbering: %v", ErrParse, err)
	}

	n := &Numbering{
		abstractNums: make(map[string]*abstractNumXML),
		numMappings:  make(map[string]string),
	}

	for i := range doc.AbstractNums {
		an := &doc.AbstractNums[i]
		n.abstractNums[an.AbstractNumID] = an
	}
	for _, num := range doc.Nums {
		n.numMappings[num.NumID] = num.AbstractNumID.Val
	}

	return n, nil
}

// Resolve returns the list kind and start value for a numbering instance at
// a 0-based level. Unknown instances and levels degrade to a bullet list.
func (n *Numbering) Resolve(numID string, level int) (model.ListKind, int) {
	kind, start := model.ListBullet, 1
	if n == nil || numID == "" {
		return kind, start
	}

	abstractID, ok := n.numMappings[numID]
	if !ok {
		return kind, start
	}
	abstractNum, ok := n.abstractNums[abstractID]
	if !ok {
		return kind, start
	}

	levelStr := strconv.Itoa(level)
	for _, lvl := range abstractNum.Levels {
		if lvl.ILvl != levelStr {
			continue
		}
		switch lvl.NumFmt.Val {
		case "decimal", "decimalZero", "lowerLetter", "upperLetter", "lowerRoman", "upperRoman", "ordinal":
			kind = model.ListNumbered
		}
		if lvl.Start.Val != "" {
			if s, err := strconv.Atoi(lvl.Start.Val); err == nil {
				start = s
			}
		}
		break
	}

	return kind, start
}

// listCounters tracks the running item number of every list instance and
// level seen so far in one document.
type listCounters map[string]*[maxListLevel]int

// next advances the counter of key at level and returns the item's number.
// Deeper levels restart when a shallower item appears.
func (c listCounters) next(key string, level, start int) int {
	counts, ok := c[key]
	if !ok {
		counts = new([maxListLevel]int)
		c[key] = counts
	}
	counts[level]++
	for deeper := level + 1; deeper < maxListLevel; deeper++ {
		counts[deeper] = 0
	}
	return start - 1 + counts[level]
}
