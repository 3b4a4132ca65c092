// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tei

import (
	"regexp"
	"strings"
)

// buildBibliography maps each biblStruct's xml:id to a rendered citation
// string of the form "Author (Year). Title. Venue.". Entries without an
// id or without any renderable content are skipped.
func buildBibliography(entries []biblStruct) map[string]string {
	bibMap := make(map[string]string)
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		if formatted := formatEntry(entry); formatted != "" {
			bibMap[entry.ID] = formatted
		}
	}
	return bibMap
}

func formatEntry(entry biblStruct) string {
	authors := formatAuthors(entry)
	title := entryTitle(entry)
	year := entryYear(entry)
	venue := entryVenue(entry)

	var parts []string
	switch {
	case authors != "" && year != "":
		parts = append(parts, authors+" ("+year+").")
	case authors != "":
		parts = append(parts, authors+".")
	case year != "":
		parts = append(parts, "("+year+").")
	}
	if title != "" {
		parts = append(parts, title+".")
	}
	if venue != "" {
		parts = append(parts, venue+".")
	}
	return strings.Join(parts, " ")
}

// formatAuthors renders the author list: one author verbatim, two joined
// with "and", three or more as "First et al.".
func formatAuthors(entry biblStruct) string {
	var names []string
	seen := make(map[string]bool)
	for _, part := range []*biblPart{entry.Analytic, entry.Monogr} {
		if part == nil {
			continue
		}
		for _, author := range part.Authors {
			name := author.displayName()
			if name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return names[0] + " et al."
	}
}

// entryTitle prefers the analytic (article) title over the monograph
// (book/journal) title.
func entryTitle(entry biblStruct) string {
	if entry.Analytic != nil {
		for _, t := range entry.Analytic.Titles {
			if text := flattenXML(t.Inner); text != "" {
				return text
			}
		}
	}
	if entry.Monogr != nil {
		for _, t := range entry.Monogr.Titles {
			if text := flattenXML(t.Inner); text != "" {
				return text
			}
		}
	}
	return ""
}

var yearPattern = regexp.MustCompile(`^(\d{4})`)

// entryYear extracts the publication year from the imprint date,
// preferring the machine-readable when attribute.
func entryYear(entry biblStruct) string {
	if entry.Monogr == nil || entry.Monogr.Imprint == nil || entry.Monogr.Imprint.Date == nil {
		return ""
	}
	date := entry.Monogr.Imprint.Date
	if m := yearPattern.FindStringSubmatch(date.When); m != nil {
		return m[1]
	}
	return flattenXML(date.Inner)
}

// entryVenue extracts the journal, meeting, or series name.
func entryVenue(entry biblStruct) string {
	if entry.Monogr == nil {
		return ""
	}
	for _, t := range entry.Monogr.Titles {
		if t.Level == "j" {
			if text := flattenXML(t.Inner); text != "" {
				return text
			}
		}
	}
	if entry.Monogr.Meeting != nil {
		if text := flattenXML(entry.Monogr.Meeting.Inner); text != "" {
			return text
		}
	}
	for _, t := range entry.Monogr.Titles {
		if t.Level == "m" {
			if text := flattenXML(t.Inner); text != "" {
				return text
			}
		}
	}
	return ""
}

// Bibliography XML structures.
type biblStruct struct {
	ID       string    `xml:"http://www.w3.org/XML/1998/namespace id,attr"`
	Analytic *biblPart `xml:"analytic"`
	Monogr   *biblPart `xml:"monogr"`
}

type biblPart struct {
	Titles  []biblTitle  `xml:"title"`
	Authors []biblAuthor `xml:"author"`
	Imprint *biblImprint `xml:"imprint"`
	Meeting *teiInner    `xml:"meeting"`
}

type biblTitle struct {
	Level string `xml:"level,attr"`
	Inner string `xml:",innerxml"`
}

type biblAuthor struct {
	PersName *biblPersName `xml:"persName"`
	Inner    string        `xml:",innerxml"`
}

// displayName renders "Forename Surname", falling back to the element's
// raw text when no persName is present.
func (a biblAuthor) displayName() string {
	if a.PersName == nil {
		return flattenXML(a.Inner)
	}

	var parts []string
	for _, forename := range a.PersName.Forenames {
		if text := flattenXML(forename.Inner); text != "" {
			parts = append(parts, text)
		}
	}
	if a.PersName.Surname != nil {
		if text := flattenXML(a.PersName.Surname.Inner); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return flattenXML(a.PersName.Inner)
	}
	return strings.Join(parts, " ")
}

type biblPersName struct {
	Forenames []teiInner `xml:"forename"`
	Surname   *teiInner  `xml:"surname"`
	Inner     string     `xml:",innerxml"`
}

type biblImprint struct {
	Date *biblDate `xml:"date"`
}

type biblDate struct {
	When  string `xml:"when,attr"`
	Inner string `xml:",innerxml"`
}
