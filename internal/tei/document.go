// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tei parses GROBID TEI XML and segments it into deterministic,
// bounded text chunks. Chunking is a pure function of the document and
// the configured limits: identical input yields an identical chunk
// sequence.
// Implements: prd013-chunking (R1-R5);
//
//	docs/ARCHITECTURE § Chunking.
package tei

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
)

// ParseError reports malformed or structurally incomplete TEI input.
// It is fatal to the single chunking call that raised it.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tei: %s: %v", e.Msg, e.Err)
	}
	return "tei: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Section is one heading-scoped run of paragraphs. Body sections carry
// their div's xml:id and a positional XPath for anchoring; synthetic
// sections (Title, Abstract) carry neither.
type Section struct {
	Title      string
	Paragraphs []string
	TEIID      string
	XPath      string
}

// Document is the parsed, order-resolved view of one TEI file.
type Document struct {
	Title        string
	Abstract     []string
	Sections     []Section
	Bibliography map[string]string
}

// ParseDocument parses TEI XML into a Document. Sibling sections at each
// nesting level are sorted by heading text so the section order does not
// depend on upstream XML ordering quirks. The document must contain a
// text body with at least one paragraph.
func ParseDocument(teiXML string) (*Document, error) {
	var root teiRoot
	if err := xml.Unmarshal([]byte(teiXML), &root); err != nil {
		return nil, &ParseError{Msg: "invalid TEI XML", Err: err}
	}

	doc := &Document{
		Title:        flattenXML(root.Header.FileDesc.TitleStmt.Title.Inner),
		Bibliography: buildBibliography(root.collectBiblStructs()),
	}

	for _, p := range root.Header.ProfileDesc.Abstract.Paragraphs {
		if text := flattenXML(p.Inner); text != "" {
			doc.Abstract = append(doc.Abstract, text)
		}
	}

	if root.Text.Body == nil {
		return nil, &ParseError{Msg: "document is missing <text><body>"}
	}

	doc.Sections = collectSections(root.Text.Body.Divs, "/TEI/text/body")

	total := 0
	for _, s := range doc.Sections {
		total += len(s.Paragraphs)
	}
	if total == 0 {
		return nil, &ParseError{Msg: "no paragraphs found in TEI body"}
	}
	return doc, nil
}

// collectSections walks divs depth-first. Siblings are sorted by heading
// text; the XPath records each div's original document position so
// anchors stay valid against the source XML.
func collectSections(divs []teiDiv, parentPath string) []Section {
	type ordered struct {
		div   teiDiv
		xpath string
	}

	siblings := make([]ordered, len(divs))
	for i, div := range divs {
		siblings[i] = ordered{div: div, xpath: fmt.Sprintf("%s/div[%d]", parentPath, i+1)}
	}
	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].div.headText() < siblings[j].div.headText()
	})

	var sections []Section
	for _, sib := range siblings {
		title := sib.div.headText()
		if title == "" {
			title = "Untitled"
		}

		var paragraphs []string
		for _, p := range sib.div.Paragraphs {
			if text := flattenXML(p.Inner); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
		if len(paragraphs) > 0 {
			sections = append(sections, Section{
				Title:      title,
				Paragraphs: paragraphs,
				TEIID:      sib.div.ID,
				XPath:      sib.xpath,
			})
		}

		sections = append(sections, collectSections(sib.div.Divs, sib.xpath)...)
	}
	return sections
}

// tagPattern matches any XML tag for inner-text flattening.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// flattenXML reduces raw inner XML to its text content: tags removed,
// entities unescaped, whitespace runs collapsed.
func flattenXML(inner string) string {
	text := tagPattern.ReplaceAllString(inner, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// TEI XML structures. Only the elements the chunker consumes are mapped.
type teiRoot struct {
	XMLName xml.Name  `xml:"TEI"`
	Header  teiHeader `xml:"teiHeader"`
	Text    teiText   `xml:"text"`
}

type teiHeader struct {
	FileDesc    teiFileDesc    `xml:"fileDesc"`
	ProfileDesc teiProfileDesc `xml:"profileDesc"`
}

type teiFileDesc struct {
	TitleStmt teiTitleStmt `xml:"titleStmt"`
}

type teiTitleStmt struct {
	Title teiInner `xml:"title"`
}

type teiProfileDesc struct {
	Abstract teiAbstract `xml:"abstract"`
}

type teiAbstract struct {
	Paragraphs []teiInner `xml:"p"`
}

type teiText struct {
	Body *teiBody `xml:"body"`
	Back *teiBack `xml:"back"`
}

type teiBody struct {
	Divs []teiDiv `xml:"div"`
}

type teiBack struct {
	Divs []teiBackDiv `xml:"div"`
}

type teiBackDiv struct {
	ListBibls []teiListBibl `xml:"listBibl"`
}

type teiListBibl struct {
	Entries []biblStruct `xml:"biblStruct"`
}

type teiDiv struct {
	ID         string     `xml:"http://www.w3.org/XML/1998/namespace id,attr"`
	Head       *teiInner  `xml:"head"`
	Paragraphs []teiInner `xml:"p"`
	Divs       []teiDiv   `xml:"div"`
}

func (d teiDiv) headText() string {
	if d.Head == nil {
		return ""
	}
	return flattenXML(d.Head.Inner)
}

type teiInner struct {
	Inner string `xml:",innerxml"`
}

// collectBiblStructs gathers bibliography entries wherever GROBID put
// them (normally text/back/div/listBibl).
func (r teiRoot) collectBiblStructs() []biblStruct {
	var entries []biblStruct
	if r.Text.Back != nil {
		for _, div := range r.Text.Back.Divs {
			for _, lb := range div.ListBibls {
				entries = append(entries, lb.Entries...)
			}
		}
	}
	return entries
}
